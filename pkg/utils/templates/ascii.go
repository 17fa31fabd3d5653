package templates

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const wrapWidth = 80

// asciiRenderer flattens markdown to plain wrapped terminal text. It
// implements the blackfriday v1 Renderer interface; only the node types that
// occur in command help get non-trivial treatment.
type asciiRenderer struct{}

func (r *asciiRenderer) NormalText(out *bytes.Buffer, text []byte) {
	out.WriteString(strings.Join(strings.Fields(string(text)), " "))
}

func (r *asciiRenderer) Paragraph(out *bytes.Buffer, text func() bool) {
	marker := out.Len()
	if !text() {
		out.Truncate(marker)
		return
	}
	body := out.String()[marker:]
	out.Truncate(marker)
	out.WriteString(wordwrap.WrapString(body, wrapWidth))
	out.WriteString("\n\n")
}

func (r *asciiRenderer) List(out *bytes.Buffer, text func() bool, flags int) {
	marker := out.Len()
	if !text() {
		out.Truncate(marker)
	}
}

func (r *asciiRenderer) ListItem(out *bytes.Buffer, text []byte, flags int) {
	fmt.Fprintf(out, " * %s\n", bytes.TrimSpace(text))
}

func (r *asciiRenderer) Header(out *bytes.Buffer, text func() bool, level int, id string) {
	marker := out.Len()
	if !text() {
		out.Truncate(marker)
		return
	}
	out.WriteString("\n\n")
}

func (r *asciiRenderer) BlockCode(out *bytes.Buffer, text []byte, lang string) {
	for _, line := range bytes.Split(bytes.TrimRight(text, "\n"), []byte("\n")) {
		out.WriteString(indent)
		out.Write(line)
		out.WriteString("\n")
	}
	out.WriteString("\n")
}

func (r *asciiRenderer) CodeSpan(out *bytes.Buffer, text []byte) {
	out.WriteString("'")
	out.Write(text)
	out.WriteString("'")
}

func (r *asciiRenderer) Emphasis(out *bytes.Buffer, text []byte)       { out.Write(text) }
func (r *asciiRenderer) DoubleEmphasis(out *bytes.Buffer, text []byte) { out.Write(text) }
func (r *asciiRenderer) TripleEmphasis(out *bytes.Buffer, text []byte) { out.Write(text) }
func (r *asciiRenderer) StrikeThrough(out *bytes.Buffer, text []byte)  { out.Write(text) }

func (r *asciiRenderer) Link(out *bytes.Buffer, link, title, content []byte) {
	out.Write(content)
	out.WriteString(" <")
	out.Write(link)
	out.WriteString(">")
}

func (r *asciiRenderer) AutoLink(out *bytes.Buffer, link []byte, kind int) { out.Write(link) }

func (r *asciiRenderer) BlockQuote(out *bytes.Buffer, text []byte) {
	out.Write(text)
	out.WriteString("\n")
}

func (r *asciiRenderer) BlockHtml(out *bytes.Buffer, text []byte)  { out.Write(text) }
func (r *asciiRenderer) RawHtmlTag(out *bytes.Buffer, tag []byte)  {}
func (r *asciiRenderer) HRule(out *bytes.Buffer)                   { out.WriteString("----------\n") }
func (r *asciiRenderer) LineBreak(out *bytes.Buffer)               { out.WriteString("\n") }
func (r *asciiRenderer) TitleBlock(out *bytes.Buffer, text []byte) { out.Write(text) }
func (r *asciiRenderer) Entity(out *bytes.Buffer, entity []byte)   { out.Write(entity) }

func (r *asciiRenderer) Table(out *bytes.Buffer, header, body []byte, columnData []int) {
	out.Write(header)
	out.Write(body)
}
func (r *asciiRenderer) TableRow(out *bytes.Buffer, text []byte) {
	out.Write(text)
	out.WriteString("\n")
}
func (r *asciiRenderer) TableHeaderCell(out *bytes.Buffer, text []byte, align int) {
	out.Write(text)
	out.WriteString("\t")
}
func (r *asciiRenderer) TableCell(out *bytes.Buffer, text []byte, align int) {
	out.Write(text)
	out.WriteString("\t")
}

func (r *asciiRenderer) Footnotes(out *bytes.Buffer, text func() bool) { text() }
func (r *asciiRenderer) FootnoteItem(out *bytes.Buffer, name, text []byte, flags int) {
	out.Write(text)
}
func (r *asciiRenderer) FootnoteRef(out *bytes.Buffer, ref []byte, id int) {}

func (r *asciiRenderer) Image(out *bytes.Buffer, link, title, alt []byte) {}

func (r *asciiRenderer) DocumentHeader(out *bytes.Buffer) {}
func (r *asciiRenderer) DocumentFooter(out *bytes.Buffer) {}

func (r *asciiRenderer) GetFlags() int { return 0 }
