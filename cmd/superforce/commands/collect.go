package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var collectFlags struct {
	date  string
	force bool
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the call-auction snapshot for a trade date",
	Long: `Collect the call-auction snapshot and theme profile from the quote
provider and store them. Already collected dates are skipped unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollect()
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectFlags.date, "date", "", "trade date YYYY-MM-DD (default today)")
	collectCmd.Flags().BoolVar(&collectFlags.force, "force", false, "re-collect even if the date is already collected")
	rootCmd.AddCommand(collectCmd)
}

func runCollect() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tradeDate, err := tradeDateArg(collectFlags.date)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := a.collector.Collect(ctx, tradeDate, collectFlags.force)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	if result.Skipped {
		fmt.Printf("%s already collected, skipped (use --force to re-collect)\n",
			tradeDate.Format("2006-01-02"))
		return nil
	}

	fmt.Printf("Collected %s: %d snapshots, %d themes, %d tagged\n",
		tradeDate.Format("2006-01-02"), result.Snapshots, result.Themes, result.Tagged)
	return nil
}
