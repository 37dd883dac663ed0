// Package cmd - rate card commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"paint-quote/adapters/ratecard"
	"paint-quote/internal/app"
	"paint-quote/internal/config"
	"paint-quote/internal/logging"
)

var ratecardCmd = &cobra.Command{
	Use:   "ratecard",
	Short: "Manage contractor rate cards",
}

var ratecardImportCmd = &cobra.Command{
	Use:   "import <card.hcl>",
	Short: "Import a rate card into the database",
	Long: `Import a contractor's settings, labor rates, pricing schemes and
products from an HCL rate card. Records are upserted, so importing the same
card twice is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rc, err := ratecard.ParseFile(args[0])
		if err != nil {
			return err
		}

		store, err := app.OpenStore(ctx, config.Get(), logging.Logger)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := ratecard.Import(ctx, store, rc, logging.Named("ratecard"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported rate card for %s: %d labor rates, %d schemes, %d products\n",
			rc.Tenant, stats.LaborRates, stats.Schemes, stats.Products)
		return nil
	},
}

var ratecardValidateCmd = &cobra.Command{
	Use:   "validate <card.hcl>",
	Short: "Check a rate card without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := ratecard.ParseFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Rate card for %s is valid\n", rc.Tenant)
		for _, s := range rc.Schemes {
			marker := ""
			if s.Default {
				marker = " (default)"
			}
			fmt.Fprintf(out, "  scheme %s: %s%s\n", s.ID, s.Type, marker)
		}
		fmt.Fprintf(out, "  %d labor rates, %d products\n", len(rc.LaborRates), len(rc.Products))
		return nil
	},
}

func init() {
	ratecardCmd.AddCommand(ratecardImportCmd)
	ratecardCmd.AddCommand(ratecardValidateCmd)
}
