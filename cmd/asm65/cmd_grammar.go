package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/asm65/asm/grammar"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "Inspect the EBNF grammar of the assembly dialect",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarPrintCmd())
	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarMatchCmd())

	return cmd
}

func newGrammarPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the built-in grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), grammar.Source())
			return err
		},
	}
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check [file]",
		Short:         "Parse and verify an EBNF grammar file (default: the built-in grammar)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args)
			if err != nil {
				printErrors(err)
				return err
			}

			if startProduction == "" {
				return nil
			}
			if err := grammar.Verify(g, startProduction); err != nil {
				printErrors(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", grammar.Start, "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newGrammarMatchCmd() *cobra.Command {
	var grammarFile string

	cmd := &cobra.Command{
		Use:   "match <text> [production]",
		Short: "Report which lexical productions derive a piece of text",
		Long: `Report which lexical productions derive text.

With a production name, exit with an error unless that production
derives all of text.`,
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if grammarFile != "" {
				files = append(files, grammarFile)
			}
			g, err := loadGrammar(files)
			if err != nil {
				return err
			}
			m := grammar.NewMatcher(g)
			text := args[0]

			if len(args) == 2 {
				if !m.Match(args[1], text) {
					return fmt.Errorf("%s does not derive %q", args[1], text)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", args[1])
				return nil
			}

			names := m.Classify(text)
			if len(names) == 0 {
				return fmt.Errorf("no lexical production derives %q", text)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&grammarFile, "grammar", "", "EBNF grammar file (default: the built-in grammar)")

	return cmd
}

func loadGrammar(args []string) (ebnf.Grammar, error) {
	if len(args) == 0 {
		return grammar.Load()
	}
	return grammar.Open(args[0])
}

func printErrors(err error) {
	for _, e := range grammar.Errors(err) {
		fmt.Fprintln(os.Stderr, e)
	}
}
