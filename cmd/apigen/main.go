package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitalvas/apigen/manifest"
	"go.uber.org/zap"
)

var version = "dev"

// stdinIndicator reads the manifest from standard input.
const stdinIndicator = "-"

type app struct {
	verbose   bool
	logger    *zap.Logger
	newLogger func(verbose bool) (*zap.Logger, error)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "apigen",
		Short: "Generate OpenAPI 3.1 documents from handler manifests",
		Long: `Generate OpenAPI 3.1 documents from handler manifests.

A manifest lists schemas, security schemes, error sets and the handlers
using them. apigen synthesizes one Operation Object per handler and
assembles them into a document with shared components.

Pass "-" as the manifest path to read it from standard input.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := a.newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a.logger = logger
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newBuildCmd(a))
	root.AddCommand(newOperationCmd(a))

	return root
}

func loadManifest(cmd *cobra.Command, path string) (*manifest.Manifest, error) {
	if path == stdinIndicator {
		m, err := manifest.Load(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest from stdin: %w", err)
		}
		return m, nil
	}

	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return m, nil
}

// execute runs the command line and reports a failure the way main does.
func execute(a *app, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.logger != nil {
		defer a.logger.Sync() //nolint:errcheck
	}
	if err == nil {
		return 0
	}

	if a.logger != nil {
		a.logger.Error("command failed", zap.Error(err))
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func main() {
	os.Exit(execute(&app{newLogger: newLogger}, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
