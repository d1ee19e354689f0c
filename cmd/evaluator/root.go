package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/latticelang/evaluator/internal/cliconfig"
)

var (
	flagSeedConvenience bool
	flagVerbose         bool
)

// run builds and executes the Cobra command tree, returning a process exit
// code (the teacher's pattern of a small testable run helper, kept even
// though the dispatcher itself is now Cobra-structured).
func run(args []string) int {
	cfg, err := cliconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "load cli config"))
		return 1
	}

	rootCmd := &cobra.Command{
		Use:   "evaluator [file]",
		Short: "Run or interactively evaluate scripts against the sandboxed tree-walking interpreter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if flagVerbose || cfg.Verbose {
				log.SetLevel(log.DebugLevel)
			}
			seed := flagSeedConvenience || cfg.SeedConvenience

			if len(cmdArgs) == 1 {
				return runFile(cmdArgs[0], seed)
			}
			return runREPL(cfg, seed)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flagSeedConvenience, "seed-convenience-globals", "s", false,
		"seed NaN/Infinity/undefined convenience globals before evaluating")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.SilenceErrors = true
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if flagVerbose || cfg.Verbose {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
