// Package consensus holds the swarm voting subcommands.
package consensus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gslice"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

var initiateExample = templates.Examples(`
		# Ask the swarm to pick a storage backend, voting open for ten minutes
		wagglectl initiate-consensus "which store for the cache layer?" redis boltdb --timeout 10m`)

// Initiate is the options struct for the 'initiate-consensus' subcommand.
type Initiate struct {
	Question string
	Options  []string
	Timeout  time.Duration
	Factory  util.Factory
	genericclioptions.IOStreams
}

// NewCmdInitiate returns the 'initiate-consensus' subcommand.
func NewCmdInitiate(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Initiate{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "initiate-consensus QUESTION OPTION OPTION...",
		Short:   "Open a timed vote among swarm agents",
		Long:    "Open a timed vote among swarm agents. Option order matters: ties resolve toward the option declared first.",
		Example: initiateExample,
		Args:    cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			o.Question = args[0]
			o.Options = gslice.Uniq(args[1:])
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().DurationVar(&o.Timeout, "timeout", o.Timeout, "Voting window; 0 uses the default")

	return cmd
}

// Run executes the initiate-consensus subcommand.
func (o *Initiate) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	req, err := m.Consensus.InitiateConsensus(ctx, o.Factory.AgentID(), o.Question, o.Options, o.Timeout)
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(req, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("QUESTION"), util.Header("OPTIONS"), util.Header("DEADLINE"))
		t.AddRow(req.ID, util.Wrap(req.Question, 50), strings.Join(req.Options, ", "), req.Deadline.Format(time.RFC3339))
	})
}

var voteExample = templates.Examples(`
		# Vote on an open consensus request
		wagglectl vote 9f1c2a8e-77e1-4f0c-a2d1-3b5a1c9e0d42 redis`)

// Vote is the options struct for the 'vote' subcommand.
type Vote struct {
	ID      string
	Choice  string
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdVote returns the 'vote' subcommand.
func NewCmdVote(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Vote{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "vote CONSENSUS_ID CHOICE",
		DisableFlagsInUseLine: true,
		Short:                 "Vote on an open consensus request",
		Long:                  "Vote on an open consensus request. Re-voting before the deadline overwrites the earlier choice; votes after the deadline are refused.",
		Example:               voteExample,
		Args:                  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			o.ID, o.Choice = args[0], args[1]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the vote subcommand.
func (o *Vote) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	accepted, err := m.Consensus.Vote(ctx, o.ID, o.Factory.AgentID(), o.Choice)
	if err != nil {
		return err
	}
	result := map[string]interface{}{"id": o.ID, "choice": o.Choice, "accepted": accepted}
	if !accepted {
		result["note"] = "voting is closed for this request"
	}
	return o.Factory.Printer().Print(result, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("CHOICE"), util.Header("ACCEPTED"))
		t.AddRow(o.ID, o.Choice, accepted)
	})
}

var statusExample = templates.Examples(`
		# Show one consensus request with its tally
		wagglectl consensus-status 9f1c2a8e-77e1-4f0c-a2d1-3b5a1c9e0d42

		# List every request still accepting votes
		wagglectl consensus-status`)

// Status is the options struct for the 'consensus-status' subcommand.
type Status struct {
	ID      string
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdStatus returns the 'consensus-status' subcommand.
func NewCmdStatus(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Status{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "consensus-status [CONSENSUS_ID]",
		DisableFlagsInUseLine: true,
		Short:                 "Show consensus requests and their tallies",
		Example:               statusExample,
		Args:                  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				o.ID = args[0]
			}
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the consensus-status subcommand.
func (o *Status) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}

	if o.ID != "" {
		req, err := m.Consensus.GetConsensus(ctx, o.ID)
		if err != nil {
			return err
		}
		return o.Factory.Printer().Print(req, func(t *uitable.Table) {
			tallyTable(t, req)
		})
	}

	pending, err := m.Consensus.GetPendingConsensus(ctx)
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(pending, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("QUESTION"), util.Header("VOTES"), util.Header("DEADLINE"))
		for _, req := range pending {
			t.AddRow(req.ID, util.Wrap(req.Question, 50), len(req.Votes), req.Deadline.Format(time.RFC3339))
		}
	})
}

func tallyTable(t *uitable.Table, req *entity.Consensus) {
	t.AddRow(util.Header("QUESTION"), util.Wrap(req.Question, 60))
	t.AddRow(util.Header("STATUS"), string(req.Status))
	if req.Winner != "" {
		t.AddRow(util.Header("WINNER"), req.Winner)
	}
	t.AddRow(util.Header("DEADLINE"), req.Deadline.Format(time.RFC3339))
	tally := req.Tally()
	rows := gslice.Map(req.Options, func(opt string) string {
		return fmt.Sprintf("%s: %d", opt, tally[opt])
	})
	t.AddRow(util.Header("TALLY"), strings.Join(rows, "  "))
}
