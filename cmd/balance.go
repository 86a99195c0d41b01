package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/internal/money"
	"oficina/internal/report"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [invoice...]",
	Short: "Show invoice status and outstanding balance",
	Long: `Derive status (Pendente, Pago Parcialmente, Pago, Atrasado, Anulada), amount
paid and outstanding balance for the given invoices, or for every invoice when
none is given. Invoices are matched by id or printed number.`,
	Example: `  # All overdue or partially paid invoices
  oficina balance --status Atrasado --status "Pago Parcialmente"

  # One invoice, evaluated as of a past date
  oficina balance 1001 --now 2025-03-20`,
	RunE: runBalance,
}

var historyCmd = &cobra.Command{
	Use:   "history <invoice>",
	Short: "List the payments of an invoice with running totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(historyCmd)

	balanceCmd.Flags().StringArray("status", nil, "Only show invoices with this status (repeatable)")
}

var invoiceHeader = []string{"Fatura", "Cliente", "Emissão", "Vencimento", "Total", "Pago", "Saldo", "Status"}

func invoiceRecord(v report.InvoiceView) []string {
	number := v.Number
	if number == "" {
		number = v.ID
	}
	return []string{
		number,
		v.ClientID,
		v.IssueDate.Format("02/01/2006"),
		v.DueDate.Format("02/01/2006"),
		money.FormatPlain(v.Total),
		money.FormatPlain(v.Balance.TotalPaid),
		money.FormatPlain(v.Balance.Balance),
		string(v.Balance.Status),
	}
}

func runBalance(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("balance")

	// Get flags
	statusFlags, _ := cmd.Flags().GetStringArray("status")
	var statuses []finance.Status
	for _, s := range statusFlags {
		statuses = append(statuses, finance.Status(strings.TrimSpace(s)))
	}

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := commandContext(cmd)

	var views []report.InvoiceView
	if len(args) == 0 {
		if views, err = svc.Invoices(ctx, statuses...); err != nil {
			return err
		}
	} else {
		for _, id := range args {
			v, err := svc.InvoiceBalance(ctx, id)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
	}

	log.Info().Int("invoices", len(views)).Msg("Balances computed")

	if jsonOutput(cmd) {
		return printJSON(views)
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, invoiceRecord(v))
	}
	printTable(invoiceHeader, rows)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	h, err := svc.InvoiceHistory(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(h)
	}
	printTable(invoiceHeader, [][]string{invoiceRecord(h.Invoice)})
	if len(h.Rows) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(h.Rows))
	for _, r := range h.Rows {
		rows = append(rows, r.Record())
	}
	fmt.Println()
	printTable(finance.HistoryHeader, rows)
	return nil
}
