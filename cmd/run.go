package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/takeoff-group/recon-cli/internal/comparison"
	"github.com/takeoff-group/recon-cli/internal/document"
	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/internal/pricing"
	"github.com/takeoff-group/recon-cli/internal/report"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

var (
	runProject   string
	runPriceList string
	runJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run <drawing-doc> <boq-doc>",
	Short: "Run the full extract, compare, price pipeline and persist the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client, err := initOracle()
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, runProject)
		if err != nil {
			return err
		}
		zap.L().Info("run created", zap.String("run_id", run.ID), zap.String("project", runProject))

		result, runErr := executePipeline(ctx, client, args[0], args[1], runPriceList, func(status model.RunStatus) {
			if err := st.UpdateRunStatus(ctx, run.ID, status); err != nil {
				zap.L().Warn("update run status failed", zap.String("run_id", run.ID), zap.Error(err))
			}
		})

		finalStatus := model.RunStatusComplete
		if runErr != nil {
			finalStatus = model.RunStatusFailed
			result.Errors = append(result.Errors, eris.ToString(runErr, false))
		}
		if err := st.SaveRunResult(ctx, run.ID, finalStatus, result); err != nil {
			zap.L().Error("save run result failed", zap.String("run_id", run.ID), zap.Error(err))
		}
		if runErr != nil {
			return runErr
		}

		zap.L().Info("run complete",
			zap.String("run_id", run.ID),
			zap.Int("rows", len(result.Rows)),
			zap.Int("mappings", len(result.Mappings)),
			zap.Int("total_input_tokens", result.TokenUsage.InputTokens),
			zap.Int("total_output_tokens", result.TokenUsage.OutputTokens),
		)

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		report.WriteComparison(os.Stdout, result.Rows)
		if len(result.Mappings) > 0 {
			report.WriteMappings(os.Stdout, result.BOQItems, result.Mappings)
		}
		return nil
	},
}

// executePipeline runs extract, compare and (when a price list is configured)
// price. A partially-failed extraction degrades; only document reads, the
// price list loader and store errors abort the run. The returned RunResult is
// always non-nil so a failed run can still be persisted.
func executePipeline(ctx context.Context, client llm.Client, drawingPath, boqPath, priceListPath string, setStatus func(model.RunStatus)) (*model.RunResult, error) {
	result := &model.RunResult{}

	drawingDoc, err := document.Read(drawingPath)
	if err != nil {
		return result, eris.Wrap(err, "read drawing document")
	}
	boqDoc, err := document.Read(boqPath)
	if err != nil {
		return result, eris.Wrap(err, "read boq document")
	}

	// Extraction phase.
	setStatus(model.RunStatusExtracting)
	orch := newOrchestrator(client)
	cats, err := drawingCategories()
	if err != nil {
		return result, err
	}

	start := time.Now()
	drawing := orch.ExtractStructured(ctx, drawingDoc, cats)
	boq := orch.ExtractBOQ(ctx, boqDoc)
	extractUsage := sumUsage(drawing.Usage, boq.Usage)

	result.DrawingItems = drawing.Items
	result.BOQItems = boq.Items
	result.Errors = append(result.Errors, drawing.Errors...)
	result.Errors = append(result.Errors, boq.Errors...)
	result.TokenUsage.Add(extractUsage)
	result.Phases = append(result.Phases, model.PhaseResult{
		Name:       "extraction",
		Status:     "complete",
		DurationMS: time.Since(start).Milliseconds(),
		TokenUsage: extractUsage,
		ItemCount:  len(drawing.Items) + len(boq.Items),
	})
	logPhaseCost(extractUsage, cfg.Anthropic.HaikuModel, "extraction")

	// Comparison phase.
	setStatus(model.RunStatusComparing)
	start = time.Now()
	cmp := comparison.New(client, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
	cmpResult := cmp.Compare(ctx, drawing.Items, boq.Items)

	result.Rows = cmpResult.Rows
	result.Summary = model.Summarize(cmpResult.Rows)
	result.TokenUsage.Add(cmpResult.Usage)
	result.Phases = append(result.Phases, model.PhaseResult{
		Name:       "comparison",
		Status:     "complete",
		DurationMS: time.Since(start).Milliseconds(),
		TokenUsage: cmpResult.Usage,
		ItemCount:  len(cmpResult.Rows),
	})
	logPhaseCost(cmpResult.Usage, cfg.Anthropic.SonnetModel, "comparison")

	// Pricing phase, only when a price list is configured.
	listPath := priceListPath
	if listPath == "" {
		listPath = cfg.PriceList.Path
	}
	if listPath == "" {
		return result, nil
	}

	setStatus(model.RunStatusPricing)
	loader, err := priceListLoader(listPath)
	if err != nil {
		return result, err
	}
	start = time.Now()
	pr := pricing.New(client, loader, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
	priceResult, err := pr.MapToPriceList(ctx, boq.Items)
	if err != nil {
		result.Phases = append(result.Phases, model.PhaseResult{
			Name:       "pricing",
			Status:     "failed",
			DurationMS: time.Since(start).Milliseconds(),
			Error:      eris.ToString(err, false),
		})
		return result, eris.Wrap(err, "pricing")
	}

	result.Mappings = priceResult.Mappings
	result.TokenUsage.Add(priceResult.Usage)
	result.Phases = append(result.Phases, model.PhaseResult{
		Name:       "pricing",
		Status:     "complete",
		DurationMS: time.Since(start).Milliseconds(),
		TokenUsage: priceResult.Usage,
		ItemCount:  len(priceResult.Mappings),
	})
	logPhaseCost(priceResult.Usage, cfg.Anthropic.SonnetModel, "pricing")

	return result, nil
}

func init() {
	runCmd.Flags().StringVar(&runProject, "project", "", "project name recorded on the run")
	runCmd.Flags().StringVar(&runPriceList, "price-list", "", "price list file; skips the pricing phase when absent")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "emit the full run result as JSON")
	rootCmd.AddCommand(runCmd)
}
