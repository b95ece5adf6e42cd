package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an assembly file and dump its statement trees",
		Long: `Parse an assembly file and dump one tree per statement.

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
			p := asm.NewParser(ctx, text, asm.WithPath(path))
			defer p.Close()

			if _, err := p.Enumerate(); err != nil {
				return describe(err)
			}
			if err := enc.EncodeTrees(p); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format ("+strings.Join(format.Names, ", ")+")")

	return cmd
}
