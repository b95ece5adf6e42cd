package lsp

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/workspace"
)

// Diagnostics converts the error recorded for a file. A nil file or a
// clean file yields an empty list, which clears earlier diagnostics.
func Diagnostics(f *workspace.File) ([]protocol.Diagnostic, error) {
	diagnostics := []protocol.Diagnostic{}
	if f == nil || f.Err == nil {
		return diagnostics, nil
	}

	row, column := 1, 1
	message := f.Err.Error()
	var e *asm.Error
	if errors.As(f.Err, &e) {
		row, column = e.Row, e.Column
		message = e.Code.String()
		if e.Err != nil {
			message += ": " + e.Err.Error()
		}
	}
	if len(f.Hints) > 0 {
		message += fmt.Sprintf(" (did you mean %s?)", strings.Join(f.Hints, ", "))
	}

	start, err := position(row-1, column-1)
	if err != nil {
		return nil, err
	}
	end := start
	end.Character++

	severity := protocol.DiagnosticSeverityError
	source := lsName
	return append(diagnostics, protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}), nil
}

// position converts a zero-based row and column.
func position(row, column int) (protocol.Position, error) {
	line, err := safecast.Convert[uint32](row)
	if err != nil {
		return protocol.Position{}, fmt.Errorf("line %d: %w", row, err)
	}
	character, err := safecast.Convert[uint32](column)
	if err != nil {
		return protocol.Position{}, fmt.Errorf("character %d: %w", column, err)
	}
	return protocol.Position{Line: line, Character: character}, nil
}
