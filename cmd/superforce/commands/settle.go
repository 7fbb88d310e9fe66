package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var settleFlags struct {
	date string
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle the realized outcomes for a trade date",
	Long: `Settle the realized outcomes for a trade date: fetch the close quotes,
compare the morning heat ranking's top decile against the market limit-up
rate, and store the period statistics used by the regime classifier and
alpha calibrator.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettle()
	},
}

func init() {
	settleCmd.Flags().StringVar(&settleFlags.date, "date", "", "trade date YYYY-MM-DD (default today)")
	rootCmd.AddCommand(settleCmd)
}

func runSettle() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tradeDate, err := tradeDateArg(settleFlags.date)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stat, err := a.settler.Settle(ctx, tradeDate)
	if err != nil {
		return fmt.Errorf("settlement failed: %w", err)
	}

	fmt.Printf("Settled %s\n", tradeDate.Format("2006-01-02"))
	fmt.Printf("top decile limit-up rate %.3f | market rate %.3f | lift %+.3f\n",
		stat.TopDecileLimitUpRate, stat.MarketLimitUpRate, stat.Lift())
	fmt.Printf("breadth %.3f | avg gap %+.2f | heat dispersion %.2f\n",
		stat.AdvancerRatio, stat.AvgGapPercent, stat.HeatStdDev)
	return nil
}
