package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/asm65/asm"
)

// readSource reads the file named by args, or stdin when args is empty.
func readSource(args []string) (text, path string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read file: %w", err)
	}
	return string(data), args[0], nil
}

// verboseError prints the source line and caret of an *asm.Error after
// its message.
type verboseError struct {
	err *asm.Error
}

func (e verboseError) Error() string { return e.err.Verbose() }
func (e verboseError) Unwrap() error { return e.err }

func describe(err error) error {
	var e *asm.Error
	if errors.As(err, &e) {
		return verboseError{err: e}
	}
	return err
}
