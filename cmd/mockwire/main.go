package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/mockwire/internal/cli"
	"github.com/toyz/mockwire/internal/utils"
)

type rootFlags struct {
	tag     string
	dir     string
	verbose bool
	quiet   bool
}

func (f *rootFlags) diagnostics() *utils.DiagnosticSystem {
	switch {
	case f.quiet:
		return utils.NewQuietDiagnostics()
	case f.verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "mockwire",
		Short:         "Tools for mockwire test fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.tag, "tag", "mockwire", "Struct tag key holding markers")
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", ".", "Directory package patterns are resolved from")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVar(&flags.quiet, "quiet", false, "Only show errors and final results")

	cmd.AddCommand(newLintCmd(flags))
	return cmd
}

func newLintCmd(flags *rootFlags) *cobra.Command {
	var walk bool

	cmd := &cobra.Command{
		Use:   "lint [packages...]",
		Short: "Check mockwire struct tags",
		Long: `Check every struct field tag carrying mockwire markers, test files included.

Reports malformed tags, fields with more than one of mock, spy and captor,
inject combined with anything but spy, and unknown marker kinds.`,
		Example: `  mockwire lint ./...
  mockwire lint --walk ./internal/...
  mockwire lint --tag=wire ./pkg/service`,
		RunE: func(cmd *cobra.Command, args []string) error {
			diag := flags.diagnostics()
			diag.Section("mockwire lint")

			config := cli.DefaultConfig()
			config.Dir = flags.dir
			config.TagKey = flags.tag
			config.Walk = walk
			config.Level = diag.Level()
			if len(args) > 0 {
				config.Patterns = args
			}

			linter := cli.NewLinter(config, diag)
			summary, err := linter.Run()
			if err != nil {
				diag.Error("Lint failed: %v", err)
				return err
			}
			return linter.Report(summary)
		},
	}
	cmd.Flags().BoolVar(&walk, "walk", false, "Walk directories instead of loading packages with the go tool")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
