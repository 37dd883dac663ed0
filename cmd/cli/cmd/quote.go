// Package cmd - quote command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paint-quote/adapters/ratecard"
	"paint-quote/core/engine"
	"paint-quote/core/normalize"
	"paint-quote/core/output"
	"paint-quote/core/types"
	"paint-quote/internal/app"
	"paint-quote/internal/config"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

var (
	rateCardFile   string
	schemeID       string
	outputFormat   string
	showDetails    bool
	showTrace      bool
	tierFlag       string
	taxModeFlag    string
	roundingFlag   string
	materialFlag   string
	noMaterialFlag bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Work with quotes",
}

// quoteCalculateCmd prices a request offline against a rate card
var quoteCalculateCmd = &cobra.Command{
	Use:   "calculate [request.json]",
	Short: "Price a quote request against a rate card",
	Long: `Price a quote request offline. Tenant data comes from an HCL rate
card instead of the database. Use "-" or omit the path to read the request
from stdin.

Examples:
  paint-quote quote calculate --ratecard acme.hcl request.json
  paint-quote quote calculate -r acme.hcl --scheme whole-home --tier best request.json
  cat request.json | paint-quote quote calculate -r acme.hcl --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuoteCalculate,
}

func init() {
	f := quoteCalculateCmd.Flags()
	f.StringVarP(&rateCardFile, "ratecard", "r", "", "HCL rate card file (required)")
	f.StringVarP(&schemeID, "scheme", "s", "", "pricing scheme id (default is the card's default scheme)")
	f.StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	f.BoolVarP(&showDetails, "details", "d", true, "show per-item lines")
	f.BoolVar(&showTrace, "trace", false, "attach the calculation trace")
	f.StringVar(&tierFlag, "tier", "", "tier to price (good, better, best, single)")
	f.StringVar(&taxModeFlag, "tax-mode", "", "tax base (materials_only, full_subtotal)")
	f.StringVar(&roundingFlag, "rounding", "", "gallon rounding (whole, quarter)")
	f.StringVar(&materialFlag, "material-mode", "", "material mode (per_item, per_surface)")
	f.BoolVar(&noMaterialFlag, "labor-only", false, "exclude materials")
	_ = quoteCalculateCmd.MarkFlagRequired("ratecard")

	quoteCmd.AddCommand(quoteCalculateCmd)
}

func runQuoteCalculate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()
	cfg := config.Get()
	logger := logging.Named("cli")

	req, err := readRequest(cmd, args)
	if err != nil {
		return err
	}
	applyQuoteFlags(req)

	rc, err := ratecard.ParseFile(rateCardFile)
	if err != nil {
		return err
	}
	if req.TenantID == "" {
		req.TenantID = rc.Tenant
	}

	collab, err := rc.Collaborators(schemeID, normalize.Normalize(req.ProductSets))
	if err != nil {
		return err
	}

	res, err := app.NewEngine(cfg, logging.Logger).Calculate(ctx, req, collab)
	if err != nil {
		return err
	}
	logger.Debug("quote priced", logging.Tenant(req.TenantID), zap.String("total", res.Total.String()))

	formatter, err := pickFormatter(cfg)
	if err != nil {
		return err
	}
	return formatter.Render(cmd.OutOrStdout(), &output.Quote{
		Result: res,
		Metadata: output.Metadata{
			TenantID:  req.TenantID,
			Timestamp: start.UTC().Format(time.RFC3339),
			Duration:  time.Since(start).String(),
			Version:   Version,
		},
	})
}

func readRequest(cmd *cobra.Command, args []string) (*engine.Request, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, errors.Input("failed to read request", err)
	}

	var req engine.Request
	if err := json.Unmarshal(data, &req); err != nil {
		if errors.IsType(err, errors.TypeValidation) {
			return nil, err
		}
		return nil, errors.Input("invalid request JSON", err)
	}
	return &req, nil
}

func applyQuoteFlags(req *engine.Request) {
	if tierFlag != "" {
		req.SelectedTier = types.Tier(tierFlag)
	}
	if taxModeFlag != "" {
		req.TaxMode = types.TaxMode(taxModeFlag)
	}
	if roundingFlag != "" {
		req.GallonRounding = types.GallonRounding(roundingFlag)
	}
	if materialFlag != "" {
		req.MaterialMode = types.MaterialMode(materialFlag)
	}
	if noMaterialFlag {
		off := false
		req.IncludeMaterials = &off
	}
	if showTrace {
		req.Debug = true
	}
}

func pickFormatter(cfg *config.Config) (output.Formatter, error) {
	format := output.Format(outputFormat)
	if format == "" {
		format = output.Format(cfg.Output.DefaultFormat)
	}
	switch format {
	case output.FormatCLI, "":
		return output.NewCLIFormatter(showDetails), nil
	case output.FormatJSON:
		return output.NewJSONFormatter(true), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
