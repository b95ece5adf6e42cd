// Package grammar holds the EBNF description of the asm65 dialect and a
// matcher for its lexical productions.
package grammar

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Start is the production a source file must derive from.
const Start = "Program"

// Filename is the name reported for positions in the embedded grammar.
const Filename = "asm65.ebnf"

//go:embed asm65.ebnf
var source string

// Source returns the embedded grammar text.
func Source() string { return source }

// Load parses and verifies the embedded grammar.
func Load() (ebnf.Grammar, error) {
	g, err := Parse(Filename, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	if err := Verify(g, Start); err != nil {
		return nil, err
	}
	return g, nil
}

// Verify checks that every production referenced from start is defined
// and that every production is reachable from it.
func Verify(g ebnf.Grammar, start string) error {
	if err := ebnf.Verify(g, start); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}

// Open parses the grammar in filename.
func Open(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Parse(filename, f)
}

func Parse(filename string, r io.Reader) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// Errors flattens the error list ebnf reports into its elements.
func Errors(err error) []error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() != reflect.Slice {
			continue
		}
		out := make([]error, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if item, ok := v.Index(i).Interface().(error); ok {
				out = append(out, item)
			}
		}
		return out
	}
	if err == nil {
		return nil
	}
	return []error{err}
}

// IsLexical reports whether name is a lexical production. ebnf treats
// every production whose name does not start with an upper case letter
// as lexical.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

// Lexical returns the sorted names of the lexical productions in g.
func Lexical(g ebnf.Grammar) []string {
	var names []string
	for name, prod := range g {
		if prod.Expr != nil && IsLexical(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type memoKey struct {
	name   string
	offset int
}

// Matcher matches text against the lexical productions of a grammar.
// Alternatives and repetitions are greedy: the longest alternative wins
// and a repetition never backtracks.
type Matcher struct {
	grammar  ebnf.Grammar
	input    string
	memo     map[memoKey]int
	visiting map[memoKey]bool
}

func NewMatcher(g ebnf.Grammar) *Matcher {
	return &Matcher{grammar: g}
}

// Match reports whether production name derives all of text.
func (m *Matcher) Match(name, text string) bool {
	n, ok := m.Prefix(name, text)
	return ok && n == len(text)
}

// Prefix returns the length of the longest prefix of text that name
// derives.
func (m *Matcher) Prefix(name, text string) (int, bool) {
	m.input = text
	m.memo = make(map[memoKey]int)
	m.visiting = make(map[memoKey]bool)
	return m.matchName(name, 0)
}

// Classify returns the lexical productions that derive all of text.
func (m *Matcher) Classify(text string) []string {
	var names []string
	for _, name := range Lexical(m.grammar) {
		if m.Match(name, text) {
			names = append(names, name)
		}
	}
	return names
}

func (m *Matcher) match(expr ebnf.Expression, offset int) (int, bool) {
	switch e := expr.(type) {
	case *ebnf.Token:
		if strings.HasPrefix(m.input[offset:], e.String) {
			return len(e.String), true
		}
		return 0, false

	case *ebnf.Range:
		if offset >= len(m.input) || len(e.Begin.String) != 1 || len(e.End.String) != 1 {
			return 0, false
		}
		ch := m.input[offset]
		return 1, ch >= e.Begin.String[0] && ch <= e.End.String[0]

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n, ok := m.match(item, offset+total)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true

	case ebnf.Alternative:
		best, found := 0, false
		for _, alt := range e {
			if n, ok := m.match(alt, offset); ok && (!found || n > best) {
				best, found = n, true
			}
		}
		return best, found

	case *ebnf.Repetition:
		total := 0
		for {
			n, ok := m.match(e.Body, offset+total)
			if !ok || n == 0 {
				return total, true
			}
			total += n
		}

	case *ebnf.Option:
		if n, ok := m.match(e.Body, offset); ok {
			return n, true
		}
		return 0, true

	case *ebnf.Group:
		return m.match(e.Body, offset)

	case *ebnf.Name:
		return m.matchName(e.String, offset)
	}
	return 0, false
}

// matchName matches a production with memoization. A production entered
// again at the same offset fails, which cuts left recursion.
func (m *Matcher) matchName(name string, offset int) (int, bool) {
	key := memoKey{name: name, offset: offset}
	if n, ok := m.memo[key]; ok {
		return n, n >= 0
	}
	if m.visiting[key] {
		return 0, false
	}

	prod, ok := m.grammar[name]
	if !ok || prod.Expr == nil {
		m.memo[key] = -1
		return 0, false
	}

	m.visiting[key] = true
	n, ok := m.match(prod.Expr, offset)
	delete(m.visiting, key)

	if !ok {
		n = -1
	}
	m.memo[key] = n
	return n, ok
}
