// Package pattern holds the pattern propagation subcommands.
package pattern

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

var broadcastExample = templates.Examples(`
		# Share a learned pattern with the swarm
		wagglectl broadcast-pattern "run table tests with t.Parallel for store suites" \
			--domain testing --quality 0.8`)

// Broadcast is the options struct for the 'broadcast-pattern' subcommand.
type Broadcast struct {
	Strategy string
	Domain   string
	Quality  float64
	Factory  util.Factory
	genericclioptions.IOStreams
}

// NewCmdBroadcast returns the 'broadcast-pattern' subcommand.
func NewCmdBroadcast(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Broadcast{Quality: 0.5, Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "broadcast-pattern STRATEGY",
		Short:   "Share a learned pattern with every agent",
		Long:    "Share a learned pattern with every agent. The broadcast tracks which agents imported it.",
		Example: broadcastExample,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.Strategy = args[0]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&o.Domain, "domain", o.Domain, "Domain the pattern applies to (e.g. testing, build)")
	cmd.Flags().Float64Var(&o.Quality, "quality", o.Quality, "Confidence score in [0,1]; out-of-range values are clamped")

	return cmd
}

// Run executes the broadcast-pattern subcommand.
func (o *Broadcast) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	bc, err := m.Patterns.BroadcastPattern(ctx, o.Factory.AgentID(), entity.Pattern{
		Strategy: o.Strategy,
		Domain:   o.Domain,
		Quality:  o.Quality,
	})
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(bc, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("DOMAIN"), util.Header("QUALITY"), util.Header("SENT"))
		t.AddRow(bc.ID, bc.Pattern.Domain, fmt.Sprintf("%.2f", bc.Pattern.Quality), bc.CreatedAt.Format(time.RFC3339))
	})
}

var listExample = templates.Examples(`
		# List recent pattern broadcasts
		wagglectl list-pattern-broadcasts --limit 10

		# List high-quality testing patterns
		wagglectl list-pattern-broadcasts --domain testing --min-quality 0.7`)

// List is the options struct for the 'list-pattern-broadcasts' subcommand.
type List struct {
	Domain     string
	MinQuality float64
	Limit      int
	Factory    util.Factory
	genericclioptions.IOStreams
}

// NewCmdList returns the 'list-pattern-broadcasts' subcommand.
func NewCmdList(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &List{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "list-pattern-broadcasts",
		Short:   "List pattern broadcasts, newest first",
		Example: listExample,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&o.Domain, "domain", o.Domain, "Only patterns in this domain")
	cmd.Flags().Float64Var(&o.MinQuality, "min-quality", o.MinQuality, "Drop broadcasts below this quality")
	cmd.Flags().IntVar(&o.Limit, "limit", o.Limit, "Maximum number of broadcasts; 0 means all")

	return cmd
}

// Run executes the list-pattern-broadcasts subcommand.
func (o *List) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	bcs, err := m.Patterns.GetPatternBroadcasts(ctx, entity.BroadcastFilter{
		Domain:     o.Domain,
		MinQuality: o.MinQuality,
		Limit:      o.Limit,
	})
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(bcs, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("FROM"), util.Header("DOMAIN"),
			util.Header("QUALITY"), util.Header("ACKS"), util.Header("STRATEGY"))
		for _, bc := range bcs {
			t.AddRow(bc.ID, bc.From, bc.Pattern.Domain,
				fmt.Sprintf("%.2f", bc.Pattern.Quality), len(bc.AckedBy), util.Wrap(bc.Pattern.Strategy, 60))
		}
	})
}

var importExample = templates.Examples(`
		# Import a broadcast pattern into the local learning store
		wagglectl import-pattern 9f1c2a8e-77e1-4f0c-a2d1-3b5a1c9e0d42`)

// Import is the options struct for the 'import-pattern' subcommand.
type Import struct {
	ID      string
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdImport returns the 'import-pattern' subcommand.
func NewCmdImport(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Import{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "import-pattern BROADCAST_ID",
		DisableFlagsInUseLine: true,
		Short:                 "Import a broadcast pattern and acknowledge it",
		Long:                  "Import a broadcast pattern into the local learning store and acknowledge it. Importing the same broadcast twice is a no-op.",
		Example:               importExample,
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.ID = args[0]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the import-pattern subcommand.
func (o *Import) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	imported, err := m.Patterns.ImportBroadcastPattern(ctx, o.ID, o.Factory.AgentID())
	if err != nil {
		return err
	}
	result := map[string]interface{}{"id": o.ID, "imported": imported}
	if !imported {
		result["note"] = "already imported by this agent"
	}
	return o.Factory.Printer().Print(result, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("IMPORTED"))
		t.AddRow(o.ID, imported)
	})
}
