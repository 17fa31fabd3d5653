package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.Empty(t, NewOptions().Validate())
}

func TestValidateCatchesBadValues(t *testing.T) {
	o := NewOptions()
	o.StoreType = "postgres"
	o.Admission = "drop"
	o.QuorumRule = "unanimous"
	o.BindPort = 0

	require.Len(t, o.Validate(), 4)
}

func TestFlagsBind(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--agent-id=backend-dev",
		"--store-type=inmemory",
		"--max-workers=4",
		"--metrics-interval=30s",
	}))
	require.Equal(t, "backend-dev", o.AgentID)
	require.Equal(t, "inmemory", o.StoreType)
	require.Equal(t, 4, o.MaxWorkers)
	require.Equal(t, "30s", o.MetricsInterval.String())
	require.Empty(t, o.Validate())
}
