package rtf

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	rtfLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Hex", Pattern: `\\'[0-9a-fA-F]{2}`},
		{Name: "ControlWord", Pattern: `\\[a-zA-Z]+(?:-?\d+)? ?`},
		{Name: "ControlSymbol", Pattern: `\\(?:\r\n|[^a-zA-Z])`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
		{Name: "Newline", Pattern: `[\r\n]+`},
		{Name: "Text", Pattern: `[^\\{}\r\n]+`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(rtfLexer),
		participle.Elide("Newline"),
	)
)

// File is the root of an RTF token tree: normally a single {\rtf1 ...} group.
type File struct {
	Pos   lexer.Position `parser:""`
	Items []*Item        `parser:"@@*"`
}

// Group is a brace-delimited group; formatting changes inside it are scoped to it.
type Group struct {
	Items []*Item `parser:"LBrace @@* RBrace"`
}

// Item is one element of a group.
type Item struct {
	Group   *Group   `parser:"  @@"`
	Control *Control `parser:"| @(ControlWord | ControlSymbol)"`
	Hex     *Hex     `parser:"| @Hex"`
	Text    *string  `parser:"| @Text"`
}

// Control is a control word such as \b0 or a control symbol such as \~.
type Control struct {
	Name     string
	Param    int
	HasParam bool
	Symbol   bool
}

// Capture implements participle.Capture.
func (c *Control) Capture(values []string) error {
	raw := strings.TrimPrefix(values[0], `\`)
	if raw == "" {
		return nil
	}
	if !isLetter(raw[0]) {
		*c = Control{Name: raw, Symbol: true}
		return nil
	}
	raw = strings.TrimSuffix(raw, " ")
	i := 0
	for i < len(raw) && isLetter(raw[i]) {
		i++
	}
	c.Name = raw[:i]
	if i < len(raw) {
		n, err := strconv.Atoi(raw[i:])
		if err != nil {
			return err
		}
		c.Param, c.HasParam = n, true
	}
	return nil
}

// Hex is an \'hh escape holding one byte in the document code page.
type Hex byte

// Capture implements participle.Capture.
func (h *Hex) Capture(values []string) error {
	n, err := strconv.ParseUint(strings.TrimPrefix(values[0], `\'`), 16, 8)
	if err != nil {
		return err
	}
	*h = Hex(n)
	return nil
}

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// ParseTokens parses RTF content into its group tree.
func ParseTokens(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}
