package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/handle"
)

// SourceEncoder writes tokens and trees back as asm65 source. Trees are
// printed one statement per line with conditional bodies indented.
type SourceEncoder struct {
	w      io.Writer
	indent string
}

func NewSourceEncoder(w io.Writer) *SourceEncoder {
	return &SourceEncoder{w: w, indent: "  "}
}

// WithIndent sets the string used for one level of indentation.
func (e *SourceEncoder) WithIndent(indent string) *SourceEncoder {
	e.indent = indent
	return e
}

func (e *SourceEncoder) EncodeTokens(l *asm.Lexer) error {
	text, err := e.MarshalTokens(l)
	return write(e.w, text, err)
}

func (e *SourceEncoder) EncodeTrees(p *asm.Parser) error {
	text, err := e.MarshalTrees(p)
	return write(e.w, text, err)
}

// MarshalTokens keeps the row of every token and separates tokens on a
// row by single spaces.
func (e *SourceEncoder) MarshalTokens(l *asm.Lexer) ([]byte, error) {
	var sb strings.Builder
	var prev asm.TokenPayload
	for i, tok := range tokens(l) {
		p := tok.Payload()
		switch {
		case i == 0:
			sb.WriteString(strings.Repeat("\n", max(p.Row-1, 0)))
		case p.Row != prev.Row:
			sb.WriteString(strings.Repeat("\n", max(p.Row-prev.Row, 1)))
		case spaced(prev, p):
			sb.WriteByte(' ')
		}
		sb.WriteString(TokenText(p))
		prev = p
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

// spaced reports whether a space goes between two tokens on one row.
func spaced(prev, next asm.TokenPayload) bool {
	switch {
	case next.Type == asm.TokenSymbolSeparator,
		next.Type == asm.TokenSymbolBracket,
		next.Type == asm.TokenSymbolBrace:
		return false
	case prev.Type == asm.TokenOperatorUnary,
		prev.Type == asm.TokenSymbolImmediate,
		prev.Type == asm.TokenSymbolBracket && prev.Subtype == asm.BracketOpen,
		prev.Type == asm.TokenSymbolBrace && prev.Subtype == asm.BraceOpen:
		return false
	}
	return true
}

func (e *SourceEncoder) MarshalTrees(p *asm.Parser) ([]byte, error) {
	pr := &printer{indent: e.indent}
	for _, tree := range trees(p) {
		if tree.Empty() {
			continue
		}
		pr.tree = tree
		pr.statement(tree.Root(), 0)
		if pr.err != nil {
			return nil, pr.err
		}
	}
	return []byte(pr.sb.String()), nil
}

// printer renders statement trees. The first malformed node it meets is
// kept in err and later output is discarded by the caller.
type printer struct {
	sb     strings.Builder
	tree   *asm.Tree
	indent string
	err    error
}

func (pr *printer) node(h handle.Handle) (asm.Node, asm.TokenPayload) {
	n, err := pr.tree.Node(h)
	if err != nil {
		pr.fail(err)
		return asm.Node{}, asm.TokenPayload{}
	}
	return n, n.Token().Payload()
}

func (pr *printer) fail(err error) {
	if pr.err == nil {
		pr.err = err
	}
}

func (pr *printer) unexpected(p asm.TokenPayload) string {
	pr.fail(fmt.Errorf("unexpected %s at %d:%d", p.Type, p.Row, p.Column))
	return ""
}

func (pr *printer) line(depth int, text string) {
	pr.sb.WriteString(strings.Repeat(pr.indent, depth))
	pr.sb.WriteString(text)
	pr.sb.WriteByte('\n')
}

func (pr *printer) statement(h handle.Handle, depth int) {
	n, p := pr.node(h)
	if pr.err != nil {
		return
	}
	children := n.Children()

	switch p.Type {
	case asm.TokenLabel:
		pr.line(depth, TokenText(p))
	case asm.TokenKeywordInclude:
		pr.line(depth, TokenText(p)+" "+pr.expressions(children, ", "))
	case asm.TokenKeywordDefine:
		sep := ", "
		if p.Subtype == asm.DefineByte {
			sep = " "
		}
		pr.line(depth, TokenText(p)+" "+pr.expressions(children, sep))
	case asm.TokenKeywordCondition:
		pr.conditional(p, children, depth)
	default:
		pr.unexpected(p)
	}
}

// conditional prints an if or ifdef statement with its branches.
func (pr *printer) conditional(p asm.TokenPayload, children []handle.Handle, depth int) {
	head, body := pr.head(p, children)
	pr.line(depth, head)
	for _, h := range body {
		n, bp := pr.node(h)
		if pr.err != nil {
			return
		}
		if bp.Type != asm.TokenKeywordCondition || bp.Subtype == asm.ConditionIf || bp.Subtype == asm.ConditionIfDefine {
			pr.statement(h, depth+1)
			continue
		}
		branch, stmts := pr.head(bp, n.Children())
		pr.line(depth, branch)
		for _, s := range stmts {
			pr.statement(s, depth+1)
		}
	}
	pr.line(depth, "endif")
}

// head renders a condition keyword with its expression or identifier and
// returns the children that follow it.
func (pr *printer) head(p asm.TokenPayload, children []handle.Handle) (string, []handle.Handle) {
	text := TokenText(p)
	switch p.Subtype {
	case asm.ConditionElse:
		return text, children
	case asm.ConditionIfDefine, asm.ConditionElseIfDefine:
		if len(children) == 0 {
			return pr.unexpected(p), nil
		}
		return text + " " + pr.expression(children[0]), children[1:]
	}

	if len(children) == 0 {
		return pr.unexpected(p), nil
	}
	text += " " + pr.expression(children[0])
	rest := children[1:]
	if len(rest) > 0 {
		if _, op := pr.node(rest[0]); op.Type == asm.TokenOperatorBinary {
			text += " " + pr.comparison(rest[0])
			rest = rest[1:]
		}
	}
	return text, rest
}

// comparison renders an operator node: its first child is the right hand
// operand and an optional second child continues the chain.
func (pr *printer) comparison(h handle.Handle) string {
	n, p := pr.node(h)
	children := n.Children()
	if len(children) == 0 {
		return pr.unexpected(p)
	}
	text := TokenText(p) + " " + pr.expression(children[0])
	if len(children) > 1 {
		text += " " + pr.comparison(children[1])
	}
	return text
}

func (pr *printer) expressions(hs []handle.Handle, sep string) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = pr.expression(h)
	}
	return strings.Join(parts, sep)
}

func (pr *printer) expression(h handle.Handle) string {
	n, p := pr.node(h)
	if pr.err != nil {
		return ""
	}
	children := n.Children()

	switch p.Type {
	case asm.TokenIdentifier, asm.TokenLiteral:
		if len(children) == 1 {
			return TokenText(p) + "{" + pr.expression(children[0]) + "}"
		}
		return TokenText(p)
	case asm.TokenScalar, asm.TokenSymbolPosition:
		return TokenText(p)
	case asm.TokenOperatorUnary:
		if len(children) != 1 {
			return pr.unexpected(p)
		}
		return TokenText(p) + pr.expression(children[0])
	case asm.TokenKeywordMacro:
		return TokenText(p) + "(" + pr.expressions(children, ", ") + ")"
	}
	return pr.unexpected(p)
}
