package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voocel/meetingagent/transcribe"
)

func newCostCmd() *cobra.Command {
	var estimateHours float64

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show transcription spend for the current month",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pricePerHour, ok := transcribe.Pricing[cfg.Transcribe.PricingTier]
			if !ok {
				pricePerHour = transcribe.DefaultPricePerHour
			}
			calc := transcribe.NewCostCalculator(pricePerHour, cfg.Transcribe.HistoryFile)

			summary := calc.CurrentMonthSummary()
			fmt.Printf("This month: %d transcriptions, %.1f h audio, $%.2f\n",
				summary.TranscriptionCount, summary.TotalDurationHours(), summary.TotalCostUSD)

			if estimateHours > 0 {
				rec := calc.RecommendPlan(estimateHours)
				fmt.Printf("For %.1f h/month: %s (est. $%.2f", estimateHours, rec.Plan, rec.TotalEstimatedUSD)
				if rec.OverageCostUSD > 0 {
					fmt.Printf(", incl. $%.2f overage", rec.OverageCostUSD)
				}
				fmt.Println(")")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&estimateHours, "hours", 0, "estimate monthly cost for this many hours of audio")
	return cmd
}
