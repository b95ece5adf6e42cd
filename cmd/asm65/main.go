package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	var verbosity int
	var logPath string

	rootCmd := &cobra.Command{
		Use:     "asm65",
		Short:   "A 6502 assembler front end",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logPath != "" {
				commonlog.Configure(verbosity, &logPath)
			} else {
				commonlog.Configure(verbosity, nil)
			}
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newLexCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGrammarCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newReplCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
