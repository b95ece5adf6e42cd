package main

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dhamidi/asm65/asm"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"db 1", false},
		{"if flag", true},
		{"if flag\n  db 1", true},
		{"ifdef PAL", true},
		{"if flag\nendif", false},
		{"if 0b2", false},
		{"lda #1", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestCompleteKeyword(t *testing.T) {
	got := completeKeyword("  ld")
	want := []string{"  lda", "  ldx", "  ldy"}
	if len(got) != len(want) {
		t.Fatalf("completeKeyword() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("completeKeyword()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if got := completeKeyword("db "); got != nil {
		t.Errorf("completeKeyword(%q) = %v, want nil", "db ", got)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		mode string
		src  string
		want string
	}{
		{"tokens", "db 1", "1:1\tKeywordDefine\tdata_byte\tdb\n1:4\tScalar\t-\t1\n"},
		{"trees", "db 1", "Statement\n  KeywordDefine data_byte @1:1\n    Scalar 1 @1:4\n"},
		{"source", "db   1,2", "db 1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			var out strings.Builder
			if err := evaluate(&out, tt.src, tt.mode); err != nil {
				t.Fatal(err)
			}
			if out.String() != tt.want {
				t.Errorf("evaluate(%q) = %q, want %q", tt.src, out.String(), tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	ctx := asm.NewContext()
	defer ctx.Close()
	l := asm.NewLexer(ctx, "db 0b12", asm.WithPath("demo.asm"))
	defer l.Close()

	_, err := l.Enumerate()
	got := describe(err)
	if !errors.Is(got, asm.CodeInvalidScalarBinary) {
		t.Fatalf("describe() = %v, want %s", got, asm.CodeInvalidScalarBinary)
	}
	if !strings.Contains(got.Error(), "\n") || !strings.HasSuffix(got.Error(), "^") {
		t.Errorf("describe().Error() = %q, want the source line and caret", got.Error())
	}

	plain := errors.New("boom")
	if describe(plain) != plain {
		t.Error("describe() changed an error without a position")
	}
}

func TestCheckRejectsInterval(t *testing.T) {
	for _, interval := range []string{"0", "-1s"} {
		cmd := newCheckCmd()
		cmd.SetArgs([]string{"--watch", "--interval=" + interval, t.TempDir()})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "--interval") {
			t.Errorf("check --interval %s error = %v, want invalid --interval", interval, err)
		}
	}
}
