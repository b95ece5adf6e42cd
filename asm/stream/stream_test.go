package stream

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ch   byte
		want Class
	}{
		{0, ClassEnd},
		{'a', ClassAlpha},
		{'Z', ClassAlpha},
		{'7', ClassDigit},
		{' ', ClassSpace},
		{'\n', ClassSpace},
		{'\t', ClassSpace},
		{'_', ClassSymbol},
		{';', ClassSymbol},
		{0x80, ClassSymbol},
	}

	for _, tt := range tests {
		if got := Classify(tt.ch); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.ch, got, tt.want)
		}
	}
}

func TestIsHex(t *testing.T) {
	for _, ch := range []byte("0123456789abcdefABCDEF") {
		if !IsHex(ch) {
			t.Errorf("IsHex(%q) = false, want true", ch)
		}
	}
	for _, ch := range []byte("gG_x ") {
		if IsHex(ch) {
			t.Errorf("IsHex(%q) = true, want false", ch)
		}
	}
}

func TestMoveNextTracksRowsAndColumns(t *testing.T) {
	s := New("ab\ncd")

	type pos struct{ row, col int }
	want := []pos{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}

	for i, w := range want {
		if s.Row() != w.row || s.Column() != w.col {
			t.Errorf("step %d: position = %d:%d, want %d:%d", i, s.Row(), s.Column(), w.row, w.col)
		}
		if i < len(want)-1 {
			if err := s.MoveNext(); err != nil {
				t.Fatalf("MoveNext() error = %v", err)
			}
		}
	}

	if s.Class() != ClassEnd {
		t.Errorf("Class() = %s, want End", s.Class())
	}
	if err := s.MoveNext(); !errors.Is(err, ErrNoNext) {
		t.Errorf("MoveNext() at end error = %v, want %v", err, ErrNoNext)
	}
}

func TestMovePreviousRestoresColumn(t *testing.T) {
	s := New("abc\nd")
	for s.HasNext() {
		if err := s.MoveNext(); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := s.MovePrevious(); err != nil {
			t.Fatal(err)
		}
	}
	if s.Row() != 0 || s.Column() != 3 {
		t.Errorf("position = %d:%d, want 0:3", s.Row(), s.Column())
	}
	if s.Character() != '\n' {
		t.Errorf("Character() = %q, want newline", s.Character())
	}

	for s.HasPrevious() {
		if err := s.MovePrevious(); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.MovePrevious(); !errors.Is(err, ErrNoPrevious) {
		t.Errorf("MovePrevious() at start error = %v, want %v", err, ErrNoPrevious)
	}
}

func TestRowsAreCachedLazily(t *testing.T) {
	s := New("first\nsecond\nthird")
	if s.Line(0) != "first" {
		t.Errorf("Line(0) = %q, want %q", s.Line(0), "first")
	}
	if s.Line(1) != "" {
		t.Errorf("Line(1) before entering = %q, want empty", s.Line(1))
	}

	for s.Row() < 1 {
		s.MoveNext()
	}
	if s.Line(1) != "second" {
		t.Errorf("Line(1) = %q, want %q", s.Line(1), "second")
	}
}

func TestDiagnostic(t *testing.T) {
	s := New("lda #$ff\n", WithPath("main.asm"))

	tests := []struct {
		name    string
		col     int
		verbose bool
		tabs    int
		want    string
	}{
		{"plain", 4, false, 0, "lda #$ff"},
		{"verbose", 4, true, 0, "lda #$ff (main.asm@1)\n~~~~^"},
		{"tabs", 0, true, 1, "\tlda #$ff (main.asm@1)\n\t^"},
		{"past end", 20, true, 0, "lda #$ff (main.asm@1)\n~~~~~~~~^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Diagnostic(0, tt.col, tt.verbose, tt.tabs)
			if got != tt.want {
				t.Errorf("Diagnostic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagnosticReplacesNonPrintable(t *testing.T) {
	s := New("a\tb")
	if got := s.Diagnostic(0, 0, false, 0); got != "a b" {
		t.Errorf("Diagnostic() = %q, want %q", got, "a b")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.asm")
	if err := os.WriteFile(path, []byte("nop"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Size() != 3 {
		t.Errorf("Size() = %d, want 3", s.Size())
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}

	_, err = Open(filepath.Join(dir, "missing.asm"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want %v", err, ErrNotFound)
	}

	_, err = Open(dir)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Open(dir) error = %v, want %v", err, ErrMalformed)
	}
}
