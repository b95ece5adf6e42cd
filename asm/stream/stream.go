// Package stream reads assembly source one byte at a time, tracking the
// row and column of the cursor and caching the text of every row it enters
// so diagnostics can quote it.
package stream

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// Terminator is appended to every input so the final position always
// classifies as ClassEnd.
const Terminator byte = 0

var (
	ErrNoNext     = errors.New("no next character")
	ErrNoPrevious = errors.New("no previous character")
	ErrNotFound   = errors.New("file not found")
	ErrMalformed  = errors.New("file malformed")
)

type Class int

const (
	ClassAlpha Class = iota
	ClassDigit
	ClassEnd
	ClassSpace
	ClassSymbol
)

var classNames = map[Class]string{
	ClassAlpha:  "Alpha",
	ClassDigit:  "Digit",
	ClassEnd:    "End",
	ClassSpace:  "Space",
	ClassSymbol: "Symbol",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Classify maps a byte to its class using C locale rules.
func Classify(ch byte) Class {
	switch {
	case ch == Terminator:
		return ClassEnd
	case IsAlpha(ch):
		return ClassAlpha
	case IsDigit(ch):
		return ClassDigit
	case IsSpace(ch):
		return ClassSpace
	default:
		return ClassSymbol
	}
}

func IsAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func IsDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func IsHex(ch byte) bool {
	return IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func IsSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func IsPrint(ch byte) bool {
	return ch >= 0x20 && ch < 0x7f
}

type Option func(*Stream)

// WithPath names the source in verbose diagnostics.
func WithPath(path string) Option {
	return func(s *Stream) {
		s.path = path
	}
}

type Stream struct {
	path   string
	data   []byte
	pos    int
	row    int
	column int
	lines  map[int]string
}

func New(text string, opts ...Option) *Stream {
	s := &Stream{
		data: append([]byte(text), Terminator),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Open reads the whole file at path.
func Open(path string, opts ...Option) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	return New(string(data), append([]Option{WithPath(path)}, opts...)...), nil
}

// Reset rewinds to the first byte and drops the row cache.
func (s *Stream) Reset() {
	s.pos = 0
	s.row = 0
	s.column = 0
	s.lines = make(map[int]string)
	s.enumerateRow()
}

func (s *Stream) Path() string { return s.path }

// Size is the input length, not counting the terminator.
func (s *Stream) Size() int { return len(s.data) - 1 }

func (s *Stream) Position() int { return s.pos }
func (s *Stream) Row() int      { return s.row }
func (s *Stream) Column() int   { return s.column }

func (s *Stream) Character() byte {
	return s.data[s.pos]
}

func (s *Stream) Class() Class {
	return Classify(s.data[s.pos])
}

// Peek returns the byte after the cursor, or the terminator.
func (s *Stream) Peek() byte {
	if s.pos+1 >= len(s.data) {
		return Terminator
	}
	return s.data[s.pos+1]
}

func (s *Stream) HasNext() bool {
	return s.data[s.pos] != Terminator
}

func (s *Stream) HasPrevious() bool {
	return s.pos > 0
}

func (s *Stream) MoveNext() error {
	if !s.HasNext() {
		return ErrNoNext
	}

	if s.data[s.pos] == '\n' {
		s.pos++
		s.row++
		s.column = 0
		s.enumerateRow()
	} else {
		s.pos++
		s.column++
	}
	return nil
}

func (s *Stream) MovePrevious() error {
	if !s.HasPrevious() {
		return ErrNoPrevious
	}

	s.pos--
	if s.data[s.pos] == '\n' {
		s.row--
		s.column = len(s.lines[s.row])
	} else {
		s.column--
	}
	return nil
}

// Slice returns the input between two offsets.
func (s *Stream) Slice(start, end int) string {
	return string(s.data[start:end])
}

// Line returns the cached text of row, or "" if the row was never entered.
func (s *Stream) Line(row int) string {
	return s.lines[row]
}

// Diagnostic renders the cached text of row. In verbose mode a second line
// places a caret under column. Both lines are prefixed with tabs tab
// characters. Row and column are 0-based.
func (s *Stream) Diagnostic(row, column int, verbose bool, tabs int) string {
	indent := strings.Repeat("\t", tabs)
	line := s.lines[row]

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(line)
	if !verbose {
		return b.String()
	}

	b.WriteString(" (")
	if s.path != "" {
		b.WriteString(s.path)
		b.WriteByte('@')
	}
	b.WriteString(strconv.Itoa(row + 1))
	b.WriteString(")\n")
	b.WriteString(indent)
	b.WriteString(strings.Repeat("~", min(max(column, 0), len(line))))
	b.WriteByte('^')
	return b.String()
}

func (s *Stream) String() string {
	return fmt.Sprintf("Stream{path=%q, size=%d, pos=%d, row=%d, col=%d, class=%s}",
		s.path, s.Size(), s.pos, s.row, s.column, s.Class())
}

// enumerateRow caches the text of the current row, from the cursor up to
// the next newline, the first time the row is entered.
func (s *Stream) enumerateRow() {
	if _, ok := s.lines[s.row]; ok {
		return
	}

	end := s.pos
	for end < len(s.data) && s.data[end] != '\n' && s.data[end] != Terminator {
		end++
	}

	line := []byte(string(s.data[s.pos:end]))
	for i, ch := range line {
		if !IsPrint(ch) {
			line[i] = ' '
		}
	}
	s.lines[s.row] = string(line)
}
