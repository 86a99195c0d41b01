package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oficina/internal/finance"
	"oficina/internal/logger"
)

var loyaltyCmd = &cobra.Command{
	Use:   "loyalty",
	Short: "Rank clients by spend, visits or recency",
	Long: `Rank clients by the invoices issued to them inside a time window.
Total spent is the gross amount invoiced, not what was collected. Clients
without an invoice in the window are left out.`,
	Example: `  # Top 10 by spend in the last six months
  oficina loyalty --window last-6-months --limit 10

  # Most frequent clients named "silva" (accents ignored)
  oficina loyalty --sort visitCount --search silva`,
	RunE: runLoyalty,
}

func init() {
	rootCmd.AddCommand(loyaltyCmd)

	addLoyaltyFlags(loyaltyCmd)
}

func addLoyaltyFlags(c *cobra.Command) {
	c.Flags().String("window", string(finance.WindowAll), "Time window: all, last-6-months, last-30-days")
	c.Flags().String("sort", string(finance.SortByTotalSpent), "Sort key: totalSpent, visitCount, lastVisitDate")
	c.Flags().String("search", "", "Only clients whose name, phone or email contains this text")
	c.Flags().Int("limit", 0, "Show at most this many clients (0 = all)")
}

func loyaltyQuery(cmd *cobra.Command) (finance.LoyaltyQuery, error) {
	// Get flags
	windowStr, _ := cmd.Flags().GetString("window")
	sortStr, _ := cmd.Flags().GetString("sort")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")

	window, err := finance.ParseWindow(windowStr)
	if err != nil {
		return finance.LoyaltyQuery{}, err
	}
	sortBy, err := finance.ParseSortKey(sortStr)
	if err != nil {
		return finance.LoyaltyQuery{}, err
	}
	if limit < 0 {
		return finance.LoyaltyQuery{}, fmt.Errorf("limit must not be negative")
	}
	return finance.LoyaltyQuery{Window: window, SortBy: sortBy, Search: search, Limit: limit}, nil
}

func runLoyalty(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("loyalty")

	q, err := loyaltyQuery(cmd)
	if err != nil {
		return err
	}

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := svc.Loyalty(commandContext(cmd), q)
	if err != nil {
		return err
	}

	log.Info().
		Str("window", string(q.Window)).
		Str("sort", string(q.SortBy)).
		Int("clients", len(stats)).
		Msg("Loyalty ranking computed")

	if jsonOutput(cmd) {
		return printJSON(stats)
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, s.Record())
	}
	printTable(finance.LoyaltyHeader, rows)
	return nil
}
