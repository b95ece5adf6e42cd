package asm

import (
	"errors"
	"testing"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx := NewContext()
	t.Cleanup(ctx.Close)
	return ctx
}

func mustPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

// assertEmpty fails if any token or node is still interned.
func assertEmpty(t *testing.T, ctx *Context) {
	t.Helper()
	tokens, nodes := ctx.Store().Size()
	if tokens != 0 || nodes != 0 {
		t.Errorf("store holds %d token(s) and %d node(s), want none", tokens, nodes)
	}
	if n := ctx.Handles().Size(); n != 0 {
		t.Errorf("allocator holds %d handle(s), want none", n)
	}
}

// lex returns the payloads of every token in text, sentinels excluded.
func lex(t *testing.T, ctx *Context, text string) ([]TokenPayload, error) {
	t.Helper()
	l := NewLexer(ctx, text)
	defer l.Close()

	if _, err := l.Enumerate(); err != nil {
		return nil, err
	}
	var out []TokenPayload
	for i, tok := range l.Tokens() {
		if i == 0 || i == l.Size()+1 {
			continue
		}
		out = append(out, tok.Payload())
	}
	return out, nil
}
