// Package message holds the swarm mail subcommands: send, broadcast,
// list-messages and mark-read.
package message

import (
	"context"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

var sendExample = templates.Examples(`
		# Send a context note to another agent
		wagglectl send backend-dev "API schema finalized, see docs/api.md" --type context

		# Send high-priority mail with a coordination reference
		wagglectl send reviewer "ready for review" --priority 5 --ref handoff-1234`)

// Send is the options struct for the 'send' subcommand.
type Send struct {
	To       string
	Content  string
	Type     string
	Priority int
	Ref      string
	Factory  util.Factory
	genericclioptions.IOStreams
}

// NewCmdSend returns the 'send' subcommand.
func NewCmdSend(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Send{
		Type:      string(entity.MessageGeneric),
		Factory:   f,
		IOStreams: ioStreams,
	}

	cmd := &cobra.Command{
		Use:     "send TO CONTENT",
		Short:   "Send a message to another agent",
		Long:    "Send a message to another agent. Recipients poll for mail; nothing is pushed.",
		Example: sendExample,
		Args:    cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			o.To, o.Content = args[0], args[1]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&o.Type, "type", o.Type, "Message type: context, pattern, consensus_vote, handoff or generic")
	cmd.Flags().IntVar(&o.Priority, "priority", o.Priority, "Message priority; higher sorts first for the recipient")
	cmd.Flags().StringVar(&o.Ref, "ref", o.Ref, "Coordination entity reference to attach")

	return cmd
}

// Run executes the send subcommand.
func (o *Send) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	msg, err := m.Bus.SendRef(ctx, o.Factory.AgentID(), o.To, o.Content, entity.MessageType(o.Type), o.Priority, o.Ref)
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(msg, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("TO"), util.Header("TYPE"), util.Header("SENT"))
		t.AddRow(msg.ID, msg.To, string(msg.Type), msg.CreatedAt.Format(time.RFC3339))
	})
}

var broadcastExample = templates.Examples(`
		# Tell every agent about a repository-wide change
		wagglectl broadcast "main branch is frozen until the release cut"`)

// Broadcast is the options struct for the 'broadcast' subcommand.
type Broadcast struct {
	Content string
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdBroadcast returns the 'broadcast' subcommand.
func NewCmdBroadcast(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Broadcast{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "broadcast CONTENT",
		DisableFlagsInUseLine: true,
		Short:                 "Send a message to every agent in the swarm",
		Example:               broadcastExample,
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.Content = args[0]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the broadcast subcommand.
func (o *Broadcast) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	msg, err := m.Bus.Broadcast(ctx, o.Factory.AgentID(), o.Content)
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(msg, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("TO"), util.Header("SENT"))
		t.AddRow(msg.ID, msg.To, msg.CreatedAt.Format(time.RFC3339))
	})
}

var listExample = templates.Examples(`
		# List my unread mail
		wagglectl list-messages --unread

		# List the last five pattern announcements addressed to me
		wagglectl list-messages --type pattern --limit 5

		# Inspect another agent's view of the bus
		wagglectl list-messages --for backend-dev`)

// List is the options struct for the 'list-messages' subcommand.
type List struct {
	For     string
	From    string
	Type    string
	Unread  bool
	Limit   int
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdList returns the 'list-messages' subcommand.
func NewCmdList(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &List{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:     "list-messages",
		Short:   "List swarm messages, newest first",
		Example: listExample,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&o.For, "for", o.For, "Recipient view to list; defaults to --agent-id")
	cmd.Flags().StringVar(&o.From, "from", o.From, "Only messages from this sender")
	cmd.Flags().StringVar(&o.Type, "type", o.Type, "Only messages of this type")
	cmd.Flags().BoolVar(&o.Unread, "unread", o.Unread, "Only unread messages")
	cmd.Flags().IntVar(&o.Limit, "limit", o.Limit, "Maximum number of messages; 0 means all")

	return cmd
}

// Run executes the list-messages subcommand.
func (o *List) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	agent := o.For
	if agent == "" {
		agent = o.Factory.AgentID()
	}
	msgs, err := m.Bus.GetMessages(ctx, repo.MessageFilter{
		Agent:      agent,
		From:       o.From,
		Type:       entity.MessageType(o.Type),
		UnreadOnly: o.Unread,
		Limit:      o.Limit,
	})
	if err != nil {
		return err
	}
	return o.Factory.Printer().Print(msgs, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("FROM"), util.Header("TO"),
			util.Header("TYPE"), util.Header("READ"), util.Header("CONTENT"))
		for _, msg := range msgs {
			t.AddRow(msg.ID, msg.From, msg.To, string(msg.Type), msg.Read, util.Wrap(msg.Content, 60))
		}
	})
}

// MarkRead is the options struct for the 'mark-read' subcommand.
type MarkRead struct {
	ID      string
	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdMarkRead returns the 'mark-read' subcommand.
func NewCmdMarkRead(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &MarkRead{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "mark-read MESSAGE_ID",
		DisableFlagsInUseLine: true,
		Short:                 "Mark a message as read",
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			o.ID = args[0]
			util.CheckErr(f.Printer(), o.Run(cmd.Context()))
		},
	}

	return cmd
}

// Run executes the mark-read subcommand.
func (o *MarkRead) Run(ctx context.Context) error {
	m, err := o.Factory.Swarm(ctx)
	if err != nil {
		return err
	}
	if err := m.Bus.MarkRead(ctx, o.ID); err != nil {
		return err
	}
	return o.Factory.Printer().Print(map[string]interface{}{"id": o.ID, "read": true}, func(t *uitable.Table) {
		t.AddRow(util.Header("ID"), util.Header("READ"))
		t.AddRow(o.ID, true)
	})
}
