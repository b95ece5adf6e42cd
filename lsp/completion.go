package lsp

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/asm/stream"
	"github.com/dhamidi/asm65/workspace"
)

type candidate struct {
	kind   protocol.CompletionItemKind
	detail string
}

// Complete offers keywords and workspace symbols matching the word that
// ends at the zero-based line and character.
func Complete(ws *workspace.Workspace, content []byte, line, character int) []protocol.CompletionItem {
	prefix := wordBefore(content, line, character)
	if prefix == "" {
		return nil
	}

	candidates := make(map[string]candidate)
	for _, kw := range asm.Keywords() {
		typ, sub, _ := asm.DetermineType(kw)
		candidates[kw] = candidate{
			kind:   protocol.CompletionItemKindKeyword,
			detail: fmt.Sprintf("%s %s", typ, asm.SubtypeName(typ, sub)),
		}
	}
	for _, sym := range ws.Symbols() {
		if _, ok := candidates[sym.Name]; ok {
			continue
		}
		kind := protocol.CompletionItemKindFunction
		if sym.Kind == workspace.SymbolDefine {
			kind = protocol.CompletionItemKindConstant
		}
		candidates[sym.Name] = candidate{
			kind:   kind,
			detail: fmt.Sprintf("%s %s:%d", sym.Kind, filepath.Base(sym.Path), sym.Row),
		}
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	// Prefix matches first, then by edit distance.
	ranks := fuzzy.RankFindFold(prefix, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(ranks[i].Target), strings.ToLower(prefix))
		pj := strings.HasPrefix(strings.ToLower(ranks[j].Target), strings.ToLower(prefix))
		if pi != pj {
			return pi
		}
		return ranks[i].Distance < ranks[j].Distance
	})

	items := make([]protocol.CompletionItem, 0, len(ranks))
	for _, r := range ranks {
		c := candidates[r.Target]
		kind, detail := c.kind, c.detail
		items = append(items, protocol.CompletionItem{
			Label:  r.Target,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}

// wordBefore returns the identifier characters that end at the position.
func wordBefore(content []byte, line, character int) string {
	lines := strings.Split(string(content), "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	text := lines[line]
	if character > len(text) {
		character = len(text)
	}

	start := character
	for start > 0 {
		ch := text[start-1]
		if !stream.IsAlpha(ch) && !stream.IsDigit(ch) && ch != '_' {
			break
		}
		start--
	}
	return text[start:character]
}
