package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type buildOptions struct {
	output  string
	format  string
	strict  bool
	workers int
}

func newBuildCmd(a *app) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <manifest>",
		Short: "Build an OpenAPI document from a manifest",
		Long: `Build an OpenAPI 3.1 document from a manifest.

The document is written to standard output unless --output is set. The
format defaults to YAML for .yaml and .yml outputs and to JSON otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or yaml")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "compile every component schema as JSON Schema")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.GOMAXPROCS(0), "operations synthesized in parallel")

	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, path string, opts buildOptions) error {
	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	m, err := loadManifest(cmd, path)
	if err != nil {
		return err
	}

	spec, err := m.Spec()
	if err != nil {
		return err
	}
	spec.WithLogger(a.logger).Concurrency(opts.workers)
	if opts.strict {
		spec.ValidateSchemas()
	}

	doc, err := spec.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}

	var data []byte
	switch format {
	case "yaml":
		data, err = doc.YAML()
	default:
		data, err = doc.JSON()
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Info("document written", zap.String("path", opts.output), zap.String("format", format))
	return nil
}

func outputFormat(format, output string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "":
		switch strings.ToLower(filepath.Ext(output)) {
		case ".yaml", ".yml":
			return "yaml", nil
		}
		return "json", nil
	}
	return "", fmt.Errorf("unsupported format %q, expected json or yaml", format)
}
