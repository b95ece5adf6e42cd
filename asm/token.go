package asm

import (
	"fmt"
	"strings"

	"github.com/dhamidi/asm65/asm/stream"
	"github.com/dhamidi/asm65/handle"
)

// Base is the radix of a scalar literal.
type Base int

const (
	BaseBinary Base = iota
	BaseDecimal
	BaseHexadecimal
	BaseOctal
)

var baseRadix = map[Base]uint32{
	BaseBinary:      2,
	BaseDecimal:     10,
	BaseHexadecimal: 16,
	BaseOctal:       8,
}

var baseNames = map[Base]string{
	BaseBinary:      "Binary",
	BaseDecimal:     "Decimal",
	BaseHexadecimal: "Hexadecimal",
	BaseOctal:       "Octal",
}

func (b Base) String() string {
	if name, ok := baseNames[b]; ok {
		return name
	}
	return "Unknown"
}

func (b Base) Radix() uint32 {
	return baseRadix[b]
}

// AsScalar sums the positional weights of an already validated digit
// string. Arithmetic wraps at 32 bits.
func AsScalar(digits string, base Base) int32 {
	radix := base.Radix()
	var result uint32
	for _, ch := range []byte(strings.ToLower(digits)) {
		var value uint32
		if stream.IsAlpha(ch) {
			value = uint32(ch-'a') + 10
		} else {
			value = uint32(ch - '0')
		}
		result = result*radix + value
	}
	return int32(result)
}

// Token is a handle to an interned token payload. Copies share the
// payload; each copy obtained through Copy must be released.
type Token struct {
	ctx *Context
	h   handle.Handle
}

func newToken(ctx *Context, payload TokenPayload) Token {
	h := ctx.handles.Generate()
	ctx.store.GenerateToken(h, payload)
	return Token{ctx: ctx, h: h}
}

// NewToken creates a sentinel, keyword, operator or symbol token.
func NewToken(ctx *Context, typ TokenType, sub Subtype, row, col int) Token {
	return newToken(ctx, TokenPayload{
		Type:    typ,
		Subtype: sub,
		Row:     row,
		Column:  col,
	})
}

// NewKeyToken creates an identifier, label or literal token.
func NewKeyToken(ctx *Context, typ TokenType, key string, row, col int) Token {
	switch typ {
	case TokenIdentifier, TokenLabel, TokenLiteral:
	default:
		panic(fmt.Errorf("%s with key %q: %w", typ, key, ErrInvalidType))
	}
	return newToken(ctx, TokenPayload{
		Type:    typ,
		Subtype: SubtypeUndefined,
		Key:     key,
		Row:     row,
		Column:  col,
	})
}

func NewScalarToken(ctx *Context, value int32, row, col int) Token {
	return newToken(ctx, TokenPayload{
		Type:    TokenScalar,
		Subtype: SubtypeUndefined,
		Value:   value,
		Row:     row,
		Column:  col,
	})
}

// AdoptToken takes a new reference to an existing payload.
func AdoptToken(ctx *Context, h handle.Handle) Token {
	ctx.store.IncrementToken(h)
	return Token{ctx: ctx, h: h}
}

func (t Token) Handle() handle.Handle { return t.h }

// Valid reports whether the payload is still interned.
func (t Token) Valid() bool {
	return t.ctx != nil && t.h != handle.Invalid &&
		t.ctx.store.IsInitialized() && t.ctx.store.ContainsToken(t.h)
}

func (t Token) Copy() Token {
	if t.Valid() {
		t.ctx.store.IncrementToken(t.h)
	}
	return t
}

func (t Token) Release() {
	if t.Valid() {
		t.ctx.store.DecrementToken(t.h)
	}
}

func (t Token) Payload() TokenPayload {
	return t.ctx.store.TokenMetadata(t.h)
}

func (t Token) Type() TokenType  { return t.Payload().Type }
func (t Token) Subtype() Subtype { return t.Payload().Subtype }
func (t Token) Key() string      { return t.Payload().Key }
func (t Token) Value() int32     { return t.Payload().Value }
func (t Token) Row() int         { return t.Payload().Row }
func (t Token) Column() int      { return t.Payload().Column }

// Match compares the type, and the subtype unless sub is undefined.
func (t Token) Match(typ TokenType, sub Subtype) bool {
	p := t.Payload()
	if p.Type != typ {
		return false
	}
	return sub == SubtypeUndefined || p.Subtype == sub
}

func (t Token) MatchKey(typ TokenType, key string) bool {
	p := t.Payload()
	return p.Type == typ && p.Key == key
}

func (t Token) MatchValue(value int32) bool {
	p := t.Payload()
	return p.Type == TokenScalar && p.Value == value
}

func (t Token) setPosition(row, col int) {
	t.ctx.store.updateToken(t.h, func(p *TokenPayload) {
		p.Row = row
		p.Column = col
	})
}

func (t Token) String() string {
	if !t.Valid() {
		return fmt.Sprintf("{%d invalid}", t.h)
	}
	return FormatPayload(t.Payload())
}

// FormatPayload renders a payload the way Token.String does.
func FormatPayload(p TokenPayload) string {
	var b strings.Builder
	b.WriteString(p.Type.String())
	if name := SubtypeName(p.Type, p.Subtype); name != "" {
		fmt.Fprintf(&b, " %s", name)
	}
	switch p.Type {
	case TokenIdentifier, TokenLabel, TokenLiteral:
		fmt.Fprintf(&b, " \"%s\"", EscapeKey(p.Key))
	case TokenScalar:
		fmt.Fprintf(&b, " %d", p.Value)
	}
	fmt.Fprintf(&b, " @%d:%d", p.Row, p.Column)
	return b.String()
}

// EscapeKey renders non-printable bytes with the literal escape syntax.
func EscapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if letter, ok := escapeLetter(ch); ok {
			b.WriteByte('\\')
			b.WriteByte(letter)
			continue
		}
		if !stream.IsPrint(ch) {
			fmt.Fprintf(&b, "\\x%02x", ch)
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}
