package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/takeoff-group/recon-cli/internal/comparison"
	"github.com/takeoff-group/recon-cli/internal/document"
	"github.com/takeoff-group/recon-cli/internal/report"
)

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare <drawing-doc> <boq-doc>",
	Short: "Extract both documents and reconcile drawing items against the BOQ",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		drawingDoc, err := document.Read(args[0])
		if err != nil {
			return eris.Wrap(err, "read drawing document")
		}
		boqDoc, err := document.Read(args[1])
		if err != nil {
			return eris.Wrap(err, "read boq document")
		}

		client, err := initOracle()
		if err != nil {
			return err
		}
		orch := newOrchestrator(client)

		cats, err := drawingCategories()
		if err != nil {
			return err
		}
		drawing := orch.ExtractStructured(ctx, drawingDoc, cats)
		boq := orch.ExtractBOQ(ctx, boqDoc)
		logPhaseCost(sumUsage(drawing.Usage, boq.Usage), cfg.Anthropic.HaikuModel, "extraction")

		engine := comparison.New(client, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
		result := engine.Compare(ctx, drawing.Items, boq.Items)
		logPhaseCost(result.Usage, cfg.Anthropic.SonnetModel, "comparison")

		if compareJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		report.WriteComparison(os.Stdout, result.Rows)
		return nil
	},
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "emit raw JSON instead of a table")
	rootCmd.AddCommand(compareCmd)
}
