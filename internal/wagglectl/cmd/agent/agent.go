// Package agent holds the membership and stats subcommands.
package agent

import (
	"context"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

var registerExample = templates.Examples(`
		# Register this invocation's identity in the swarm
		wagglectl register-agent --agent-id backend-dev --agent-name "Backend Developer"`)

// Register is the options struct for the 'register-agent' subcommand.
type Register struct {
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdRegister returns the 'register-agent' subcommand.
func NewCmdRegister(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Register{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "register-agent",
		DisableFlagsInUseLine: true,
		Short:                 "Register or refresh this agent's swarm membership",
		Long:                  "Register or refresh this agent's swarm membership. Registration also happens implicitly on first bus activity; this command makes it explicit and updates the display name.",
		Example:               registerExample,
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the register-agent subcommand. Opening the swarm module
// already registers --agent-id, so this only reads the record back.
func (o *Register) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	a, err := m.Bus.GetAgent(ctx, o.Factory.AgentID())
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(a, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("NAME"), util.Header("STATUS"), util.Header("REGISTERED"))
		t.AddRow(a.ID, a.Name, string(a.Status), a.RegisteredAt.Format(time.RFC3339))
	})
}

// List is the options struct for the 'list-agents' subcommand.
type List struct {
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdList returns the 'list-agents' subcommand.
func NewCmdList(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &List{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "list-agents",
		DisableFlagsInUseLine: true,
		Short:                 "List every agent known to the swarm",
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the list-agents subcommand.
func (o *List) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	agents, err := m.Bus.GetAgents(ctx)
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(agents, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("NAME"), util.Header("STATUS"),
			util.Header("PATTERNS"), util.Header("HANDOFFS"), util.Header("LAST SEEN"))
		for _, a := range agents {
			t.AddRow(a.ID, a.Name, string(a.Status),
				a.PatternsShared, a.HandoffsCompleted, a.LastSeen.Format(time.RFC3339))
		}
	})
}

// Stats is the options struct for the 'stats' subcommand.
type Stats struct {
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdStats returns the 'stats' subcommand.
func NewCmdStats(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Stats{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "stats",
		DisableFlagsInUseLine: true,
		Short:                 "Print a snapshot of swarm activity",
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the stats subcommand.
func (o *Stats) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	stats, err := m.Stats.Collect(ctx)
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(stats, func(t *uitable.Table) {
		t.AddRow(util.Header("AGENTS"), stats.Agents)
		t.AddRow(util.Header("ACTIVE AGENTS"), stats.ActiveAgents)
		t.AddRow(util.Header("MESSAGES"), stats.Messages)
		t.AddRow(util.Header("UNREAD MESSAGES"), stats.UnreadMessages)
		t.AddRow(util.Header("PATTERN BROADCASTS"), stats.Broadcasts)
		t.AddRow(util.Header("PENDING CONSENSUS"), stats.PendingConsensus)
		t.AddRow(util.Header("PENDING HANDOFFS"), stats.PendingHandoffs)
	})
}
