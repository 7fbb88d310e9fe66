package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/engine"
)

var rankFlags struct {
	date           string
	limit          int
	sort           string
	themeAlpha     float64
	dynamicAlpha   bool
	window         int
	peFilter       bool
	excludeLimitUp bool
	lowGapOnly     bool
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the call-auction candidates for a trade date",
	Long: `Rank the call-auction candidates for a trade date and print the result.

The date must already be collected (see the collect command). With no
--date the ranking runs for today in exchange time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRank()
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankFlags.date, "date", "", "trade date YYYY-MM-DD (default today)")
	rankCmd.Flags().IntVar(&rankFlags.limit, "limit", 30, "number of candidates to print (0 = all)")
	rankCmd.Flags().StringVar(&rankFlags.sort, "sort", string(contracts.SortCandidateFirst), "sort mode: candidate_first or heat_desc")
	rankCmd.Flags().Float64Var(&rankFlags.themeAlpha, "theme-alpha", 0.25, "theme boost strength [0, 0.5]")
	rankCmd.Flags().BoolVar(&rankFlags.dynamicAlpha, "dynamic-alpha", true, "calibrate alpha from the rolling outcome window")
	rankCmd.Flags().IntVar(&rankFlags.window, "window", 20, "rolling outcome window in trading days")
	rankCmd.Flags().BoolVar(&rankFlags.peFilter, "pe-filter", false, "exclude loss-makers and PE > 150")
	rankCmd.Flags().BoolVar(&rankFlags.excludeLimitUp, "exclude-limit-up", false, "exclude stocks already sealed at the auction")
	rankCmd.Flags().BoolVar(&rankFlags.lowGapOnly, "low-gap", false, "keep only gaps below 5%")
	rootCmd.AddCommand(rankCmd)
}

func runRank() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tradeDate, err := tradeDateArg(rankFlags.date)
	if err != nil {
		return err
	}

	params := contracts.DefaultScoringParameters()
	params.ThemeAlpha = rankFlags.themeAlpha
	params.SortMode = contracts.SortMode(rankFlags.sort)
	params.DynamicAlpha = rankFlags.dynamicAlpha
	params.RollingWindowDays = rankFlags.window
	params.PEFilterEnabled = rankFlags.peFilter
	params.ExcludeAuctionLimitUp = rankFlags.excludeLimitUp
	params.LowGapOnly = rankFlags.lowGapOnly

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := a.engine.Rank(ctx, engine.RankRequest{
		TradeDate: tradeDate,
		Limit:     rankFlags.limit,
		Params:    params,
	})
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	if result.DataSource == contracts.DataSourceNone {
		fmt.Printf("No auction snapshot collected for %s\n", tradeDate.Format("2006-01-02"))
		return nil
	}

	printRanking(result)
	return nil
}

func printRanking(result *contracts.RankedResultSet) {
	fmt.Printf("Auction ranking for %s (%d candidates, regime %s)\n\n",
		result.TradeDate.Format("2006-01-02"),
		result.Summary.Count,
		result.Summary.MarketRegime,
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCODE\tNAME\tHEAT\tPROB\tGAP%\tVOL.R\tTHEME\tLIMIT-UP")
	for _, c := range result.Candidates {
		marker := ""
		if c.LikelyLimitUp {
			marker = "likely"
		}
		if c.AuctionLimitUp {
			marker = "sealed"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%.2f\t%+.2f\t%.2f\t%s\t%s\n",
			c.Rank, c.Code, c.Name,
			c.HeatScore, c.LikelyLimitUpProb, c.GapPercent, c.VolumeRatio,
			c.Theme, marker,
		)
	}
	w.Flush()

	s := result.Summary
	fmt.Printf("\navg heat %.1f | likely limit-ups %d | total amount %.0f\n",
		s.AvgHeat, s.LimitUpCandidates, s.TotalAmount)
	fmt.Printf("alpha %.3f -> %.3f effective | window %d days | skipped rows %d\n",
		s.ThemeAlphaInput, s.ThemeAlphaEffective, s.CoveredDays, s.SkippedRows)
}
