package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/format"
)

func newFmtCmd() *cobra.Command {
	var fmtOverwrite bool
	var indent string

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Reformat an assembly file",
		Long: `Print an assembly file with one statement per line and
conditional bodies indented. Comments are not preserved.

If no file is provided, reads source from stdin.
Use -w to overwrite the file in place (requires a file argument).`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fmtOverwrite && len(args) == 0 {
				return fmt.Errorf("-w requires a file argument")
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
			output, err := format.NewSourceEncoder(nil).WithIndent(indent).MarshalTrees(p)
			if err != nil {
				return fmt.Errorf("format: %w", err)
			}

			if fmtOverwrite {
				return os.WriteFile(path, output, 0644)
			}
			_, err = os.Stdout.Write(output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")
	cmd.Flags().StringVar(&indent, "indent", "  ", "indentation for conditional bodies")

	return cmd
}
