// Package cmd assembles the wagglectl command tree.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdagent "github.com/ravenhall/waggle/internal/wagglectl/cmd/agent"
	cmdconsensus "github.com/ravenhall/waggle/internal/wagglectl/cmd/consensus"
	cmdhandoff "github.com/ravenhall/waggle/internal/wagglectl/cmd/handoff"
	cmdinfo "github.com/ravenhall/waggle/internal/wagglectl/cmd/info"
	cmdmessage "github.com/ravenhall/waggle/internal/wagglectl/cmd/message"
	cmdpattern "github.com/ravenhall/waggle/internal/wagglectl/cmd/pattern"
	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/logger"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

// NewDefaultWaggleCtlCommand creates the `wagglectl` command with default arguments.
func NewDefaultWaggleCtlCommand() *cobra.Command {
	return NewWaggleCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewWaggleCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "wagglectl",
		Short: "wagglectl coordinates autonomous agents in the waggle swarm",
		Long: templates.LongDesc(fmt.Sprintf(`%s
		wagglectl is the CLI tool for coordinating autonomous agents over the
		shared waggle stores.

		It sends and reads swarm mail, shares learned patterns with acknowledgment
		tracking, runs timed consensus votes, and transfers in-flight tasks between
		agents. Output is JSON by default so other agents can parse it; pass
		--output table for a human view.`, Banner())),
		Run:          runHelp,
		SilenceUsage: true,
	}

	flags := cmds.PersistentFlags()
	addGlobalFlags(flags)
	_ = viper.BindPFlags(flags)

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}
	f := util.NewFactory(globalOpts, ioStreams)

	cmds.PersistentPreRun = func(*cobra.Command, []string) {
		logger.SetOutput(ioStreams.ErrOut)
		logger.SetLevel(globalOpts.LogLevel)
	}
	cmds.PersistentPostRunE = func(*cobra.Command, []string) error {
		return f.Close()
	}

	groups := []struct {
		id       string
		title    string
		commands []*cobra.Command
	}{
		{
			id:    "messaging",
			title: "Messaging Commands:",
			commands: []*cobra.Command{
				cmdmessage.NewCmdSend(f, ioStreams),
				cmdmessage.NewCmdBroadcast(f, ioStreams),
				cmdmessage.NewCmdList(f, ioStreams),
				cmdmessage.NewCmdMarkRead(f, ioStreams),
			},
		},
		{
			id:    "patterns",
			title: "Pattern Commands:",
			commands: []*cobra.Command{
				cmdpattern.NewCmdBroadcast(f, ioStreams),
				cmdpattern.NewCmdList(f, ioStreams),
				cmdpattern.NewCmdImport(f, ioStreams),
			},
		},
		{
			id:    "consensus",
			title: "Consensus Commands:",
			commands: []*cobra.Command{
				cmdconsensus.NewCmdInitiate(f, ioStreams),
				cmdconsensus.NewCmdVote(f, ioStreams),
				cmdconsensus.NewCmdStatus(f, ioStreams),
			},
		},
		{
			id:    "handoffs",
			title: "Handoff Commands:",
			commands: []*cobra.Command{
				cmdhandoff.NewCmdInitiate(f, ioStreams),
				cmdhandoff.NewCmdAccept(f, ioStreams),
				cmdhandoff.NewCmdComplete(f, ioStreams),
				cmdhandoff.NewCmdReject(f, ioStreams),
				cmdhandoff.NewCmdList(f, ioStreams),
			},
		},
		{
			id:    "swarm",
			title: "Swarm Commands:",
			commands: []*cobra.Command{
				cmdagent.NewCmdRegister(f, ioStreams),
				cmdagent.NewCmdList(f, ioStreams),
				cmdagent.NewCmdStats(f, ioStreams),
			},
		},
		{
			id:    "diagnostics",
			title: "Diagnostic Commands:",
			commands: []*cobra.Command{
				cmdinfo.NewCmdInfo(f, ioStreams),
			},
		},
	}
	for _, g := range groups {
		cmds.AddGroup(&cobra.Group{ID: g.id, Title: g.title})
		for _, c := range g.commands {
			c.GroupID = g.id
			cmds.AddCommand(c)
		}
	}

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
