package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/internal/money"
	"oficina/internal/report"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Activity report for a date range, newest first",
	Long: `Merge invoice payments, extra receipts, expenses, purchases, salary advances
and occurrences dated within --from and --to (the whole --to day included)
into one list ordered newest first.`,
	Example: `  # March 2025
  oficina ledger --from 2025-03-01 --to 2025-03-31

  # Today only
  oficina ledger`,
	RunE: runLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)

	addRangeFlags(ledgerCmd)
}

func addRangeFlags(c *cobra.Command) {
	c.Flags().String("from", "", "First day of the range (format: YYYY-MM-DD, default: today)")
	c.Flags().String("to", "", "Last day of the range, inclusive (format: YYYY-MM-DD, default: today)")
}

// rangeFlags reads --from/--to in the service's timezone, defaulting to today.
func rangeFlags(cmd *cobra.Command, svc *report.Service) (time.Time, time.Time, error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	y, m, d := svc.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, svc.Location())

	from, to := today, today
	var err error
	if fromStr != "" {
		if from, err = time.ParseInLocation(dayLayout, fromStr, svc.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date format. Use YYYY-MM-DD: %w", err)
		}
	}
	if toStr != "" {
		if to, err = time.ParseInLocation(dayLayout, toStr, svc.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date format. Use YYYY-MM-DD: %w", err)
		}
	}
	return from, to, nil
}

func runLedger(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ledger")

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	from, to, err := rangeFlags(cmd, svc)
	if err != nil {
		return err
	}

	l, err := svc.Ledger(commandContext(cmd), from, to)
	if err != nil {
		return err
	}

	log.Info().
		Str("from", from.Format(dayLayout)).
		Str("to", to.Format(dayLayout)).
		Int("entries", l.Totals.Count).
		Msg("Ledger built")

	if jsonOutput(cmd) {
		return printJSON(l)
	}

	rows := make([][]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		rows = append(rows, e.Record())
	}
	printTable(finance.LedgerHeader, rows)

	fmt.Println()
	fmt.Printf("Entradas: %s  Saídas: %s  Saldo: %s  (%d lançamentos)\n",
		money.Format(l.Totals.Credits), money.Format(l.Totals.Debits), money.Format(l.Totals.Net), l.Totals.Count)
	return nil
}
