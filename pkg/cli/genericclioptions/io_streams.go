// Package genericclioptions holds the shared option types passed to every
// CLI subcommand.
package genericclioptions

import (
	"bytes"
	"io"
)

// IOStreams carries the standard streams for a command invocation so tests
// can substitute buffers.
type IOStreams struct {
	// In is the command's standard input.
	In io.Reader
	// Out is the command's standard output.
	Out io.Writer
	// ErrOut is the command's standard error.
	ErrOut io.Writer
}

// NewTestIOStreams returns IOStreams backed by buffers, plus the buffers for
// inspection.
func NewTestIOStreams() (IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return IOStreams{In: in, Out: out, ErrOut: errOut}, in, out, errOut
}
