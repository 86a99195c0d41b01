package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/internal/money"
)

var payCmd = &cobra.Command{
	Use:   "pay <invoice>",
	Short: "Validate a batch of payments against an invoice balance",
	Long: `Check payment rows against the outstanding balance of an invoice and print
the payment records that would be registered. Nothing is written.

Each --row is METHOD=AMOUNT or just AMOUNT; rows without a method use the
first configured payment method. Rows with a zero, negative or unreadable
amount are dropped. The batch is rejected when nothing is left or when it pays
more than the balance (a tolerance of 0,01 applies).`,
	Example: `  # Split payment
  oficina pay 1002 --row "Pix=500" --row "Dinheiro=250,00" --receipt R-77

  # Amount only
  oficina pay inv-1002 --row 1.000,00`,
	Args: cobra.ExactArgs(1),
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringArray("row", nil, "Payment row as METHOD=AMOUNT or AMOUNT (repeatable)")
	payCmd.Flags().String("receipt", "", "Receipt number shared by the batch (default: none)")
}

// parseRow splits "Pix=250,00" into method and amount.
func parseRow(s string) finance.PaymentRow {
	method, amount, ok := strings.Cut(s, "=")
	if !ok {
		return finance.PaymentRow{Amount: strings.TrimSpace(s)}
	}
	return finance.PaymentRow{Method: strings.TrimSpace(method), Amount: strings.TrimSpace(amount)}
}

func runPay(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("pay")

	// Get flags
	rowFlags, _ := cmd.Flags().GetStringArray("row")
	receipt, _ := cmd.Flags().GetString("receipt")

	if len(rowFlags) == 0 {
		return fmt.Errorf("at least one --row is required")
	}
	rows := make([]finance.PaymentRow, 0, len(rowFlags))
	for _, r := range rowFlags {
		rows = append(rows, parseRow(r))
	}

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.ValidatePayments(commandContext(cmd), args[0], receipt, rows)
	if jsonOutput(cmd) && (err == nil || res.Reason != "") {
		if perr := printJSON(res); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("invoice", args[0]).
		Int("payments", len(res.Payments)).
		Bool("settled", res.Settled).
		Msg("Payment batch validated")

	if jsonOutput(cmd) {
		return nil
	}

	out := make([][]string, 0, len(res.Payments))
	for _, p := range res.Payments {
		out = append(out, []string{p.ID, p.Method, money.FormatPlain(p.Amount), p.ReceiptNumber, p.Date.Format("02/01/2006 15:04")})
	}
	printTable([]string{"ID", "Forma", "Valor", "Recibo", "Data"}, out)

	fmt.Println()
	fmt.Printf("Total pago: %s\n", money.Format(res.TotalPaid))
	fmt.Printf("Saldo restante: %s\n", money.Format(res.Remaining))
	if res.Dropped > 0 {
		fmt.Printf("Linhas ignoradas: %d\n", res.Dropped)
	}
	if res.Settled {
		fmt.Println("Fatura quitada.")
	}
	return nil
}
