package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/format"
)

func newLexCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "lex [file]",
		Short: "Tokenize an assembly file and print the tokens",
		Long: `Tokenize an assembly file and print every token.

If no file is provided, reads source from stdin.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.New(outputFormat, os.Stdout)
			if err != nil {
				return err
			}
			text, path, err := readSource(args)
			if err != nil {
				return err
			}

			ctx := asm.NewContext()
			defer ctx.Close()
			l := asm.NewLexer(ctx, text, asm.WithPath(path))
			defer l.Close()

			if _, err := l.Enumerate(); err != nil {
				return describe(err)
			}
			if err := enc.EncodeTokens(l); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format ("+strings.Join(format.Names, ", ")+")")

	return cmd
}
