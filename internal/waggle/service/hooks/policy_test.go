package hooks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
)

func TestLoadPolicyMissingFileIsEmpty(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Empty(t, p.Handlers)
}

func TestLoadPolicyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadPolicy(path)
	require.Error(t, err)
}

func TestPolicyApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"handlers": {"guard": false}}`), 0o644))

	r := NewRegistry()
	_, err := r.Register(entity.EventPreCommand, noopHandler, 0, &RegisterOptions{Name: "guard"})
	require.NoError(t, err)

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	p.Apply(r)

	require.Empty(t, r.ForEvent(entity.EventPreCommand, true))
}

func TestPolicyPriorityOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"priorities": {"guard": 90}}`), 0o644))

	r := NewRegistry()
	_, err := r.Register(entity.EventPreCommand, noopHandler, 10, &RegisterOptions{Name: "guard"})
	require.NoError(t, err)
	_, err = r.Register(entity.EventPreCommand, noopHandler, 50, &RegisterOptions{Name: "other"})
	require.NoError(t, err)

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	p.Apply(r)

	entries := r.ForEvent(entity.EventPreCommand, true)
	require.Equal(t, "guard", entries[0].Name)
	require.Equal(t, 90, entries[0].Priority)
}
