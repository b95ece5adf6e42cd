package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/asm65/asm"
)

// LineEncoder writes one tab-separated line per token and an indented
// dump per tree.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) EncodeTokens(l *asm.Lexer) error {
	text, err := e.MarshalTokens(l)
	return write(e.w, text, err)
}

func (e *LineEncoder) EncodeTrees(p *asm.Parser) error {
	text, err := e.MarshalTrees(p)
	return write(e.w, text, err)
}

func (e *LineEncoder) MarshalTokens(l *asm.Lexer) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range tokens(l) {
		p := tok.Payload()
		sub := asm.SubtypeName(p.Type, p.Subtype)
		if sub == "" {
			sub = "-"
		}
		fmt.Fprintf(&sb, "%d:%d\t%s\t%s\t%s\n", p.Row, p.Column, p.Type, sub, TokenText(p))
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) MarshalTrees(p *asm.Parser) ([]byte, error) {
	var sb strings.Builder
	for _, tree := range trees(p) {
		sb.WriteString(tree.String())
	}
	return []byte(sb.String()), nil
}
