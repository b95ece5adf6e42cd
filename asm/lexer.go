package asm

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/dhamidi/asm65/asm/stream"
	"github.com/tliron/commonlog"
)

type config struct {
	path string
	log  commonlog.Logger
}

// Option configures a Lexer or Parser.
type Option func(*config)

// WithPath names the source in diagnostics.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

func newConfig(name string, opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.log == nil {
		c.log = commonlog.GetLogger(name)
	}
	return c
}

// Lexer produces tokens on demand. The sequence always starts with a Begin
// sentinel and ends with an End sentinel; tokens are scanned the first time
// the cursor reaches them and replayed from the cache afterwards.
type Lexer struct {
	ctx    *Context
	src    *stream.Stream
	path   string
	log    commonlog.Logger
	tokens []Token
	pos    int
}

func NewLexer(ctx *Context, text string, opts ...Option) *Lexer {
	cfg := newConfig("asm65.lexer", opts)
	l := &Lexer{
		ctx:  ctx,
		src:  stream.New(text, stream.WithPath(cfg.path)),
		path: cfg.path,
		log:  cfg.log,
	}
	l.Clear()
	return l
}

// OpenLexer reads the whole file at path.
func OpenLexer(ctx *Context, path string, opts ...Option) (*Lexer, error) {
	cfg := newConfig("asm65.lexer", append([]Option{WithPath(path)}, opts...))
	src, err := stream.Open(path, stream.WithPath(cfg.path))
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		ctx:  ctx,
		src:  src,
		path: cfg.path,
		log:  cfg.log,
	}
	l.Clear()
	return l, nil
}

// Clear drops every cached token and rewinds the stream.
func (l *Lexer) Clear() {
	l.release()
	l.src.Reset()

	row, col := l.src.Row()+1, l.src.Column()+1
	l.tokens = []Token{
		NewToken(l.ctx, TokenBegin, SubtypeUndefined, row, col),
		NewToken(l.ctx, TokenEnd, SubtypeUndefined, row, col),
	}
	l.pos = 0
}

// Close releases every cached token. The lexer must not be used afterwards.
func (l *Lexer) Close() {
	l.release()
	l.tokens = nil
	l.pos = 0
}

func (l *Lexer) release() {
	for _, tok := range l.tokens {
		tok.Release()
	}
}

func (l *Lexer) Context() *Context { return l.ctx }
func (l *Lexer) Path() string      { return l.path }

// Reset moves the cursor back to Begin without discarding cached tokens.
func (l *Lexer) Reset() {
	l.pos = 0
}

// Size returns the number of tokens produced so far, excluding sentinels.
func (l *Lexer) Size() int {
	return len(l.tokens) - 2
}

func (l *Lexer) Position() int { return l.pos }

// Token returns the token under the cursor. The caller does not own it.
func (l *Lexer) Token() Token {
	return l.tokens[l.pos]
}

func (l *Lexer) TokenAt(i int) (Token, error) {
	if i < 0 || i >= len(l.tokens) {
		return Token{}, fmt.Errorf("token %d of %d: %w", i, len(l.tokens), ErrNotFound)
	}
	return l.tokens[i], nil
}

// Tokens yields every cached token, sentinels included.
func (l *Lexer) Tokens() iter.Seq2[int, Token] {
	return func(yield func(int, Token) bool) {
		for i, tok := range l.tokens {
			if !yield(i, tok) {
				return
			}
		}
	}
}

func (l *Lexer) Match(typ TokenType, sub Subtype) bool {
	return l.Token().Match(typ, sub)
}

func (l *Lexer) HasNext() bool {
	return !l.Match(TokenEnd, SubtypeUndefined)
}

func (l *Lexer) HasPrevious() bool {
	return l.pos > 0
}

// MoveNext advances to the next token, scanning it if the cursor is at the
// end of the cache.
func (l *Lexer) MoveNext() error {
	if !l.HasNext() {
		return l.errorAtToken(CodeNoNextToken, nil)
	}

	if l.pos == len(l.tokens)-2 {
		if err := l.skipWhitespace(); err != nil {
			return err
		}
		if l.src.HasNext() {
			tok, err := l.enumerateToken()
			if err != nil {
				return err
			}
			l.tokens = slices.Insert(l.tokens, l.pos+1, tok)
			l.log.Debugf("token %d: %s", l.pos+1, tok)
		}
		row, col := l.src.Row()+1, l.src.Column()+1
		l.tokens[0].setPosition(row, col)
		l.tokens[len(l.tokens)-1].setPosition(row, col)
	}

	l.pos++
	return nil
}

func (l *Lexer) MovePrevious() error {
	if !l.HasPrevious() {
		return l.errorAtToken(CodeNoPreviousToken, nil)
	}
	l.pos--
	return nil
}

// Enumerate scans the remaining input, rewinds the cursor and returns the
// number of tokens.
func (l *Lexer) Enumerate() (int, error) {
	for l.HasNext() {
		if err := l.MoveNext(); err != nil {
			return l.Size(), err
		}
	}
	l.Reset()
	l.log.Infof("%s: enumerated %d token(s)", l.displayPath(), l.Size())
	return l.Size(), nil
}

// Diagnostic renders the source line of the current token.
func (l *Lexer) Diagnostic(verbose bool, tabs int) string {
	tok := l.Token()
	return l.src.Diagnostic(tok.Row()-1, tok.Column()-1, verbose, tabs)
}

func (l *Lexer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lexer{path=%q, pos=%d, size=%d}", l.path, l.pos, l.Size())
	for i, tok := range l.tokens {
		marker := " "
		if i == l.pos {
			marker = ">"
		}
		fmt.Fprintf(&b, "\n%s[%d] %s", marker, i, tok)
	}
	return b.String()
}

func (l *Lexer) displayPath() string {
	if l.path == "" {
		return "<input>"
	}
	return l.path
}

// errorAt builds an error at a 0-based stream position.
func (l *Lexer) errorAt(code ErrorCode, row, col int, cause error) *Error {
	return &Error{
		Code:   code,
		Path:   l.path,
		Row:    row + 1,
		Column: col + 1,
		Detail: l.src.Diagnostic(row, col, true, 1),
		Err:    cause,
	}
}

// errorAtToken builds an error at the current token.
func (l *Lexer) errorAtToken(code ErrorCode, cause error) *Error {
	tok := l.Token()
	return l.errorAt(code, tok.Row()-1, tok.Column()-1, cause)
}

func (l *Lexer) errorHere(code ErrorCode, cause error) *Error {
	return l.errorAt(code, l.src.Row(), l.src.Column(), cause)
}

func unexpected(ch byte) error {
	if ch == stream.Terminator {
		return errors.New("unexpected end of input")
	}
	return fmt.Errorf("unexpected %q", ch)
}
