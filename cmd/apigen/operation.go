package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitalvas/apigen/openapi"
	"go.uber.org/zap"
)

type operationOutput struct {
	Operation  *openapi.Operation   `json:"operation"`
	Components []openapi.Components `json:"components"`
}

func newOperationCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "operation <manifest> <name>",
		Short: "Synthesize a single operation",
		Long: `Synthesize the Operation Object of one handler together with the
components it references, without assembling a document.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, args[0], args[1], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "compile every component schema as JSON Schema")

	return cmd
}

func (a *app) runOperation(cmd *cobra.Command, path, name string, strict bool) error {
	m, err := loadManifest(cmd, path)
	if err != nil {
		return err
	}

	b, err := m.Builder(name)
	if err != nil {
		return err
	}

	reg := openapi.NewRegistry()
	if strict {
		reg.ValidateSchemas()
	}
	op, err := b.Build(reg)
	if err != nil {
		return fmt.Errorf("failed to synthesize operation: %w", err)
	}
	a.logger.Debug("operation synthesized",
		zap.String("operation", name),
		zap.Int("responses", len(op.Responses)),
		zap.Int("components", reg.Len()),
	)

	data, err := json.MarshalIndent(operationOutput{Operation: op, Components: reg.Components()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode operation: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
