package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/takeoff-group/recon-cli/internal/document"
	"github.com/takeoff-group/recon-cli/internal/extraction"
	"github.com/takeoff-group/recon-cli/internal/pricing"
	"github.com/takeoff-group/recon-cli/internal/report"
)

var (
	pricePriceList string
	priceBOQ       bool
	priceJSON      bool
	priceApply     bool
)

var priceCmd = &cobra.Command{
	Use:   "price <document>",
	Short: "Extract items from a document and map them to a price list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		doc, err := document.Read(args[0])
		if err != nil {
			return eris.Wrap(err, "read document")
		}

		listPath := pricePriceList
		if listPath == "" {
			listPath = cfg.PriceList.Path
		}
		if listPath == "" {
			return eris.New("price list path is required (--price-list or RECON_PRICE_LIST_PATH)")
		}
		loader, err := priceListLoader(listPath)
		if err != nil {
			return err
		}

		client, err := initOracle()
		if err != nil {
			return err
		}
		orch := newOrchestrator(client)

		var extracted *extraction.Result
		if priceBOQ {
			extracted = orch.ExtractBOQ(ctx, doc)
		} else {
			cats, err := drawingCategories()
			if err != nil {
				return err
			}
			extracted = orch.ExtractStructured(ctx, doc, cats)
		}
		logPhaseCost(extracted.Usage, cfg.Anthropic.HaikuModel, "extraction")

		engine := pricing.New(client, loader, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
		result, err := engine.MapToPriceList(ctx, extracted.Items)
		if err != nil {
			return eris.Wrap(err, "map to price list")
		}
		logPhaseCost(result.Usage, cfg.Anthropic.SonnetModel, "pricing")

		if priceApply {
			priced := pricing.ApplyMappings(extracted.Items, result.Mappings)
			if priceJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(priced)
			}
			report.WriteItems(os.Stdout, priced)
			return nil
		}

		if priceJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		report.WriteMappings(os.Stdout, extracted.Items, result.Mappings)
		return nil
	},
}

func init() {
	priceCmd.Flags().StringVar(&pricePriceList, "price-list", "", "price list file (.xlsx or .csv, default from config)")
	priceCmd.Flags().BoolVar(&priceBOQ, "boq", true, "treat the document as a BOQ (single-category extraction)")
	priceCmd.Flags().BoolVar(&priceJSON, "json", false, "emit raw JSON instead of a table")
	priceCmd.Flags().BoolVar(&priceApply, "apply", false, "copy each item's best candidate price onto the item and print items")
	rootCmd.AddCommand(priceCmd)
}
