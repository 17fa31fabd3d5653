// Package handoff holds the task transfer subcommands.
package handoff

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

var initiateExample = templates.Examples(`
		# Hand a task to another agent with its working context
		wagglectl initiate-handoff backend-dev "finish the rate limiter" \
			--modified-file internal/limit/limiter.go \
			--decision "token bucket over sliding window" \
			--next-step "wire the middleware" --next-step "add burst tests"`)

// Initiate is the options struct for the 'initiate-handoff' subcommand.
type Initiate struct {
	To            string
	Description   string
	ModifiedFiles []string
	PatternsUsed  []string
	Decisions     []string
	Blockers      []string
	NextSteps     []string
	Factory       util.Factory
	genericclioptions.IOStreams
}

// NewCmdInitiate returns the 'initiate-handoff' subcommand.
func NewCmdInitiate(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Initiate{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "initiate-handoff TO DESCRIPTION",
		Short:   "Offer an in-flight task to another agent",
		Long:    "Offer an in-flight task to another agent, carrying the working context so the recipient can continue without rediscovery.",
		Example: initiateExample,
		Args:    cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			o.To, o.Description = args[0], args[1]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().StringArrayVar(&o.ModifiedFiles, "modified-file", o.ModifiedFiles, "File touched so far; repeatable")
	cmd.Flags().StringArrayVar(&o.PatternsUsed, "pattern-used", o.PatternsUsed, "Pattern applied so far; repeatable")
	cmd.Flags().StringArrayVar(&o.Decisions, "decision", o.Decisions, "Decision already made; repeatable")
	cmd.Flags().StringArrayVar(&o.Blockers, "blocker", o.Blockers, "Known blocker; repeatable")
	cmd.Flags().StringArrayVar(&o.NextSteps, "next-step", o.NextSteps, "Suggested continuation; repeatable")

	return cmd
}

// Run executes the initiate-handoff subcommand.
func (o *Initiate) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	h, err := m.Handoffs.InitiateHandoff(ctx, o.Factory.AgentID(), o.To, o.Description, entity.HandoffContext{
		ModifiedFiles: o.ModifiedFiles,
		PatternsUsed:  o.PatternsUsed,
		Decisions:     o.Decisions,
		Blockers:      o.Blockers,
		NextSteps:     o.NextSteps,
	})
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(h, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("TO"), util.Header("STATUS"), util.Header("CREATED"))
		t.AddRow(h.ID, h.To, string(h.Status), h.CreatedAt.Format(time.RFC3339))
	})
}

// transition is the shared options struct for accept/complete/reject.
type transition struct {
	ID      string
	Result  map[string]string
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdAccept returns the 'accept-handoff' subcommand.
func NewCmdAccept(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &transition{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "accept-handoff HANDOFF_ID",
		DisableFlagsInUseLine: true,
		Short:                 "Accept an offered handoff",
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.ID = args[0]
			util.CheckErr(f.Printer(), o.run(cmd.Context(), entity.HandoffAccepted))
		},
	}

	return cmd
}

var completeExample = templates.Examples(`
		# Complete an accepted handoff with a result payload
		wagglectl complete-handoff 9f1c2a8e-77e1-4f0c-a2d1-3b5a1c9e0d42 \
			--result commit=4f9e21a --result tests=passing`)

// NewCmdComplete returns the 'complete-handoff' subcommand.
func NewCmdComplete(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &transition{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "complete-handoff HANDOFF_ID",
		Short:   "Complete an accepted handoff",
		Example: completeExample,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.ID = args[0]
			util.CheckErr(f.Printer(), o.run(cmd.Context(), entity.HandoffCompleted))
		},
	}

	cmd.Flags().StringToStringVar(&o.Result, "result", o.Result, "Completion payload entry as key=value; repeatable")

	return cmd
}

// NewCmdReject returns the 'reject-handoff' subcommand.
func NewCmdReject(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &transition{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "reject-handoff HANDOFF_ID",
		DisableFlagsInUseLine: true,
		Short:                 "Decline an offered or accepted handoff",
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.ID = args[0]
			util.CheckErr(f.Printer(), o.run(cmd.Context(), entity.HandoffRejected))
		},
	}

	return cmd
}

func (o *transition) run(ctx context.Context, to entity.HandoffStatus) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}

	agent := o.Factory.AgentID()
	var ok bool
	switch to {
	case entity.HandoffAccepted:
		ok, err = m.Handoffs.AcceptHandoff(ctx, o.ID, agent)
	case entity.HandoffCompleted:
		var result map[string]interface{}
		if len(o.Result) > 0 {
			result = make(map[string]interface{}, len(o.Result))
			for k, v := range o.Result {
				result[k] = v
			}
		}
		ok, err = m.Handoffs.CompleteHandoff(ctx, o.ID, agent, result)
	case entity.HandoffRejected:
		ok, err = m.Handoffs.RejectHandoff(ctx, o.ID, agent)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: handoff %s already moved on", errno.ErrInvalidTransition, o.ID)
	}

	return o.Factory.Printer().Print(map[string]interface{}{"id": o.ID, "status": string(to)}, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("STATUS"))
		t.AddRow(o.ID, string(to))
	})
}

var listExample = templates.Examples(`
		# List every handoff, newest first
		wagglectl list-handoffs

		# List handoffs waiting on me
		wagglectl list-handoffs --pending`)

// List is the options struct for the 'list-handoffs' subcommand.
type List struct {
	Pending bool
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdList returns the 'list-handoffs' subcommand.
func NewCmdList(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &List{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "list-handoffs",
		Short:   "List task handoffs, newest first",
		Example: listExample,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&o.Pending, "pending", o.Pending, "Only handoffs awaiting action by --agent-id")

	return cmd
}

// Run executes the list-handoffs subcommand.
func (o *List) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}

	var hs []*entity.Handoff
	if o.Pending {
		hs, err = m.Handoffs.GetPendingHandoffs(ctx, o.Factory.AgentID())
	} else {
		hs, err = m.Handoffs.ListHandoffs(ctx)
	}
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(hs, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("FROM"), util.Header("TO"),
			util.Header("STATUS"), util.Header("DESCRIPTION"))
		for _, h := range hs {
			t.AddRow(h.ID, h.From, h.To, string(h.Status), util.Wrap(h.Description, 60))
		}
	})
}
