package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/internal/money"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly income, expenses and profit",
	Long: `Bucket income and expenses by calendar month in the configured timezone.
Invoice payments count in the month they were received; extra receipts add to
income and expenses to despesas. Months without activity are left out.`,
	RunE: runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("monthly")

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := svc.Monthly(commandContext(cmd))
	if err != nil {
		return err
	}

	log.Info().Int("months", m.Totals.Months).Msg("Monthly report computed")

	if jsonOutput(cmd) {
		return printJSON(m)
	}

	rows := make([][]string, 0, len(m.Buckets)+1)
	for _, b := range m.Buckets {
		rows = append(rows, b.Record())
	}
	rows = append(rows, []string{
		"Total",
		money.FormatPlain(m.Totals.Receitas),
		money.FormatPlain(m.Totals.Despesas),
		money.FormatPlain(m.Totals.Lucro),
	})
	printTable(finance.MonthlyHeader, rows)

	if m.Totals.Months == 0 {
		fmt.Println("Nenhum movimento registrado.")
	}
	return nil
}
