package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/takeoff-group/recon-cli/internal/document"
	"github.com/takeoff-group/recon-cli/internal/extraction"
	"github.com/takeoff-group/recon-cli/internal/report"
)

var (
	extractBOQ  bool
	extractJSON bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract structured items from a drawing or BOQ document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		doc, err := document.Read(args[0])
		if err != nil {
			return eris.Wrap(err, "read document")
		}

		client, err := initOracle()
		if err != nil {
			return err
		}
		orch := newOrchestrator(client)

		var result *extraction.Result
		if extractBOQ {
			result = orch.ExtractBOQ(ctx, doc)
		} else {
			cats, err := drawingCategories()
			if err != nil {
				return err
			}
			result = orch.ExtractStructured(ctx, doc, cats)
		}

		logPhaseCost(result.Usage, cfg.Anthropic.HaikuModel, "extraction")
		for _, e := range result.Errors {
			zap.L().Warn("category failed", zap.String("error", e))
		}

		if extractJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		report.WriteItems(os.Stdout, result.Items)
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractBOQ, "boq", false, "treat the document as a BOQ (single-category extraction)")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "emit raw JSON instead of a table")
	rootCmd.AddCommand(extractCmd)
}
