package util

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-wordwrap"

	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/json"
)

// Output formats accepted by --output.
const (
	OutputJSON  = "json"
	OutputTable = "table"
)

// Printer renders command results. The default format is JSON so other
// agents can parse wagglectl output; stdout stays valid JSON even when a
// command fails.
type Printer struct {
	Format string
	Out    io.Writer
	ErrOut io.Writer
}

// NewPrinter builds a printer for the given format and streams.
func NewPrinter(format string, streams genericclioptions.IOStreams) *Printer {
	return &Printer{
		Format: format,
		Out:    streams.Out,
		ErrOut: streams.ErrOut,
	}
}

// Print renders v. In table mode buildTable fills the table; commands that
// have no table shape pass nil and fall back to JSON.
func (p *Printer) Print(v interface{}, buildTable func(t *uitable.Table)) error {
	if p.Format == OutputTable && buildTable != nil {
		t := uitable.New()
		t.MaxColWidth = 80
		t.Wrap = true
		buildTable(t)
		_, err := fmt.Fprintln(p.Out, t.String())
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

// Fail emits the error in the selected format. JSON mode writes an error
// envelope to stdout to keep the stream parseable.
func (p *Printer) Fail(err error) {
	if p.Format == OutputTable {
		fmt.Fprintln(p.ErrOut, color.RedString("Error: %v", err))
		return
	}
	data, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		data = []byte(`{"error": "unprintable error"}`)
	}
	fmt.Fprintln(p.Out, string(data))
}

// Header styles a table header cell.
func Header(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Wrap breaks long free text for table cells.
func Wrap(s string, width uint) string {
	return wordwrap.WrapString(s, width)
}

// CheckErr reports err through the printer and exits non-zero. No-op on nil.
func CheckErr(p *Printer, err error) {
	if err == nil {
		return
	}
	p.Fail(err)
	os.Exit(1)
}
