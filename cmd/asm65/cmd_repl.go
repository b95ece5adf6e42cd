package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/format"
)

const (
	historyFile = ".asm65_history"
	promptMain  = "asm65> "
	promptCont  = "...... "
)

func newReplCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read statements interactively and print their tokens or trees",
		Long: `Read statements interactively and print their tokens or trees.

An open if or ifdef block continues on the next line. Commands:
  :tokens   print tokens
  :trees    print statement trees
  :source   print reformatted source
  :quit     leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.OutOrStdout(), mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "trees", "initial output (tokens, trees, source)")

	return cmd
}

func runRepl(out io.Writer, mode string) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeKeyword)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readStatement(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		trimmed := strings.TrimSpace(src)
		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit":
				return nil
			case ":tokens", ":trees", ":source":
				mode = trimmed[1:]
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		if err := evaluate(out, src, mode); err != nil {
			fmt.Fprintln(os.Stderr, describe(err))
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readStatement reads lines until they no longer end inside an open
// conditional block.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src ends inside an if or ifdef block.
func incomplete(src string) bool {
	ctx := asm.NewContext()
	defer ctx.Close()
	p := asm.NewParser(ctx, src)
	defer p.Close()

	_, err := p.Enumerate()
	if !errors.Is(err, asm.CodeUnterminatedIf) && !errors.Is(err, asm.CodeUnterminatedIfDefine) {
		return false
	}
	return !p.Lexer().HasNext()
}

func evaluate(out io.Writer, src, mode string) error {
	ctx := asm.NewContext()
	defer ctx.Close()

	if mode == "tokens" {
		l := asm.NewLexer(ctx, src, asm.WithPath("repl"))
		defer l.Close()
		if _, err := l.Enumerate(); err != nil {
			return err
		}
		return format.NewLineEncoder(out).EncodeTokens(l)
	}

	p := asm.NewParser(ctx, src, asm.WithPath("repl"))
	defer p.Close()
	if _, err := p.Enumerate(); err != nil {
		return err
	}
	if mode == "source" {
		return format.NewSourceEncoder(out).EncodeTrees(p)
	}
	return format.NewLineEncoder(out).EncodeTrees(p)
}

func completeKeyword(line string) []string {
	start := strings.LastIndexAny(line, " \t,(") + 1
	word := line[start:]
	if word == "" {
		return nil
	}
	var out []string
	for _, kw := range asm.Keywords() {
		if strings.HasPrefix(kw, word) {
			out = append(out, line[:start]+kw)
		}
	}
	return out
}
