// Package format renders lexer tokens and parser trees as text, JSON or
// reformatted source.
package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dhamidi/asm65/asm"
)

// Encoder writes the tokens or trees a lexer or parser has enumerated.
// Sentinels are never written.
type Encoder interface {
	EncodeTokens(l *asm.Lexer) error
	EncodeTrees(p *asm.Parser) error
}

// Names lists the encoders New accepts.
var Names = []string{"text", "json", "source"}

func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "text":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "source":
		return NewSourceEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q, want one of %v", name, Names)
}

func tokens(l *asm.Lexer) []asm.Token {
	var out []asm.Token
	for i, tok := range l.Tokens() {
		if i == 0 || i == l.Size()+1 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func trees(p *asm.Parser) []*asm.Tree {
	var out []*asm.Tree
	for i, tree := range p.Trees() {
		if i == 0 || i == p.Size()+1 {
			continue
		}
		out = append(out, tree)
	}
	return out
}

// TokenText returns source text that lexes back to an equal token.
func TokenText(p asm.TokenPayload) string {
	switch p.Type {
	case asm.TokenIdentifier:
		return p.Key
	case asm.TokenLabel:
		return p.Key + ":"
	case asm.TokenLiteral:
		return `"` + asm.EscapeKey(p.Key) + `"`
	case asm.TokenScalar:
		return strconv.FormatInt(int64(p.Value), 10)
	}
	return asm.Spelling(p.Type, p.Subtype)
}

func write(w io.Writer, text []byte, err error) error {
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
