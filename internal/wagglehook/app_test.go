package wagglehook

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/bridge"
	"github.com/ravenhall/waggle/pkg/utils/json"
)

func testOptions(t *testing.T) *Options {
	t.Helper()
	dir := t.TempDir()
	opts := NewOptions()
	opts.StoreType = "inmemory"
	opts.LearningDBPath = ""
	opts.PolicyFile = filepath.Join(dir, "policy.json")
	return opts
}

func runBridge(t *testing.T, opts *Options, payload string) (int, *bridge.HostDecision, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(opts, strings.NewReader(payload), &stdout, &stderr)
	var decision *bridge.HostDecision
	if stdout.Len() > 0 {
		decision = &bridge.HostDecision{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), decision))
	}
	return code, decision, stderr.String()
}

func TestBenignCommandContinues(t *testing.T) {
	payload := `{
		"session_id": "s1",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "ls -la"}
	}`
	code, decision, _ := runBridge(t, testOptions(t), payload)

	require.Equal(t, bridge.ExitContinue, code)
	require.NotNil(t, decision)
	require.True(t, decision.Continue)
}

func TestDangerousCommandBlocks(t *testing.T) {
	payload := `{
		"session_id": "s1",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "rm -rf / "}
	}`
	code, decision, stderr := runBridge(t, testOptions(t), payload)

	require.Equal(t, bridge.ExitBlock, code)
	require.NotNil(t, decision)
	require.False(t, decision.Continue)
	require.NotEmpty(t, decision.Reason)
	require.Contains(t, stderr, decision.Reason)
}

func TestPolicyDisablesGuard(t *testing.T) {
	opts := testOptions(t)
	policy := []byte(`{"handlers": {"dangerous-command-guard": false}}`)
	require.NoError(t, os.WriteFile(opts.PolicyFile, policy, 0o644))

	payload := `{
		"session_id": "s1",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "rm -rf / "}
	}`
	code, decision, _ := runBridge(t, opts, payload)

	require.Equal(t, bridge.ExitContinue, code)
	require.True(t, decision.Continue)
}

func TestMalformedPayload(t *testing.T) {
	code, decision, stderr := runBridge(t, testOptions(t), `{not json`)

	require.Equal(t, bridge.ExitError, code)
	require.Nil(t, decision, "stdout must stay clean on protocol errors")
	require.Contains(t, stderr, "failed to decode")
}

func TestMissingEventName(t *testing.T) {
	code, decision, _ := runBridge(t, testOptions(t), `{"session_id": "s1"}`)

	require.Equal(t, bridge.ExitError, code)
	require.Nil(t, decision)
}
