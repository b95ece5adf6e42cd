// Package workspace keeps the parse state of every assembly source file
// below a root directory.
package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/asm65/asm"
)

var log = commonlog.GetLogger("asm65.workspace")

// Extensions lists the file extensions treated as assembly sources.
var Extensions = []string{".asm", ".s", ".inc"}

func IsSource(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

type SymbolKind int

const (
	SymbolLabel SymbolKind = iota
	SymbolDefine
)

var symbolKindNames = map[SymbolKind]string{
	SymbolLabel:  "label",
	SymbolDefine: "define",
}

func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Symbol is a name a file declares with a label or a def statement.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Path   string
	Row    int
	Column int
}

type File struct {
	Path    string
	Content []byte
	Tokens  int
	Trees   int
	Symbols []Symbol
	// Err is the first lexical or grammar error, nil for a clean file.
	Err error
	// Hints holds "did you mean" candidates for Err.
	Hints []string
}

type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*File
}

func New(rootDir string) *Workspace {
	return &Workspace{
		rootDir: rootDir,
		files:   make(map[string]*File),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// ScanAll parses every source file below the root. Hidden directories are
// skipped.
func (w *Workspace) ScanAll() error {
	return filepath.Walk(w.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSource(path) {
			if err := w.ScanFile(path); err != nil {
				log.Warningf("%s: %s", path, err)
			}
		}
		return nil
	})
}

func (w *Workspace) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.UpdateFile(path, content)
	return nil
}

// UpdateFile parses content as the new text of path and returns the
// resulting record.
func (w *Workspace) UpdateFile(path string, content []byte) *File {
	f := Analyze(path, content)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = f
	return f
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Files returns every record sorted by path.
func (w *Workspace) Files() []*File {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]*File, 0, len(w.files))
	for _, f := range w.files {
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b *File) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files
}

// Failed returns the records that hold an error.
func (w *Workspace) Failed() []*File {
	var failed []*File
	for _, f := range w.Files() {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Symbols returns the symbols of every file, ordered by path and position.
func (w *Workspace) Symbols() []Symbol {
	var out []Symbol
	for _, f := range w.Files() {
		out = append(out, f.Symbols...)
	}
	return out
}

// FindSymbol returns the first declaration of name.
func (w *Workspace) FindSymbol(name string) (Symbol, bool) {
	for _, s := range w.Symbols() {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// Analyze parses content in a context of its own.
func Analyze(path string, content []byte) *File {
	ctx := asm.NewContext()
	defer ctx.Close()

	p := asm.NewParser(ctx, string(content), asm.WithPath(path))
	defer p.Close()

	f := &File{Path: path, Content: content}
	_, err := p.Enumerate()
	f.Tokens = p.Lexer().Size()
	f.Trees = p.Size()

	for _, tree := range p.Trees() {
		f.Symbols = append(f.Symbols, symbols(path, tree)...)
	}

	if err != nil {
		f.Err = err
		f.Hints = hints(p, err)
		log.Debugf("%s: %s", path, err)
	}
	return f
}

func symbols(path string, tree *asm.Tree) []Symbol {
	var out []Symbol
	tree.Walk(func(n asm.Node, depth int) bool {
		tok := n.Token().Payload()
		switch {
		case tok.Type == asm.TokenLabel:
			out = append(out, Symbol{Name: tok.Key, Kind: SymbolLabel, Path: path, Row: tok.Row, Column: tok.Column})
		case tok.Type == asm.TokenKeywordDefine && tok.Subtype == asm.DefineByte:
			first, err := n.At(0)
			if err != nil {
				return true
			}
			child, err := tree.Node(first)
			if err != nil {
				return true
			}
			name := child.Token().Payload()
			out = append(out, Symbol{Name: name.Key, Kind: SymbolDefine, Path: path, Row: name.Row, Column: name.Column})
		}
		return true
	})
	return out
}

// hints suggests statement keywords when a statement starts with an
// unknown word.
func hints(p *asm.Parser, err error) []string {
	if !errors.Is(err, asm.CodeExpectingStatement) {
		return nil
	}
	tok := p.Lexer().Token()
	if tok.Type() != asm.TokenIdentifier {
		return nil
	}
	return Suggest(tok.Key(), StatementKeywords())
}

// StatementKeywords returns the spellings that may start a statement.
func StatementKeywords() []string {
	var out []string
	for _, kw := range asm.Keywords() {
		typ, sub, _ := asm.DetermineType(kw)
		switch typ {
		case asm.TokenKeywordCommand, asm.TokenKeywordDefine, asm.TokenKeywordInclude:
			out = append(out, kw)
		case asm.TokenKeywordCondition:
			if sub == asm.ConditionIf || sub == asm.ConditionIfDefine {
				out = append(out, kw)
			}
		}
	}
	return out
}
