// Package templates normalizes long command descriptions and examples for
// the CLI in the kubectl style: heredoc-trimmed, markdown flattened to
// terminal text, and wrapped to a fixed width.
package templates

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/russross/blackfriday"
)

const indent = "  "

// LongDesc normalizes a command's long description.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}
	return normalizer{s}.heredoc().markdown().trim().string
}

// Examples normalizes a command's examples block.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	return normalizer{s}.heredoc().trim().indent().string
}

type normalizer struct {
	string
}

func (n normalizer) heredoc() normalizer {
	n.string = heredoc.Doc(n.string)
	return n
}

func (n normalizer) markdown() normalizer {
	rendered := blackfriday.Markdown([]byte(n.string), &asciiRenderer{}, 0)
	n.string = string(rendered)
	return n
}

func (n normalizer) trim() normalizer {
	n.string = strings.TrimSpace(n.string)
	return n
}

func (n normalizer) indent() normalizer {
	lines := strings.Split(n.string, "\n")
	for i, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines[i] = indent + trimmed
		} else {
			lines[i] = ""
		}
	}
	n.string = strings.Join(lines, "\n")
	return n
}
