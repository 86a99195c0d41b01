package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oficina/internal/logger"
	"oficina/internal/sheets"
)

var exportCmd = &cobra.Command{
	Use:   "export <ledger|monthly|loyalty|history> [invoice]",
	Short: "Append a report to a Google Sheet",
	Long: `Append a report's rows to a worksheet of the Google Sheet in GOOGLE_SHEET_URL.
The worksheet is created with a bold header row when it does not exist yet.

Required environment variables:
  GOOGLE_SHEET_URL - Google Sheets URL to export into
  GOOGLE_SERVICE_ACCOUNT_KEY - Service account key file or JSON, OR
  GOOGLE_APPLICATION_CREDENTIALS / GOOGLE_CREDENTIALS`,
	Example: `  # March activity into the "Livro Caixa" worksheet
  oficina export ledger --from 2025-03-01 --to 2025-03-31 --sheet "Livro Caixa"

  # Monthly statement
  oficina export monthly

  # Payments of one invoice
  oficina export history 1001`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

var defaultSheetNames = map[string]string{
	"ledger":  "Livro Caixa",
	"monthly": "Resumo Mensal",
	"loyalty": "Fidelidade",
	"history": "Pagamentos",
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("sheet", "", "Worksheet name (default depends on the report)")
	exportCmd.Flags().Bool("dry-run", false, "Print the rows instead of writing them")
	addRangeFlags(exportCmd)
	addLoyaltyFlags(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")
	kind := args[0]

	// Get flags
	sheetName, _ := cmd.Flags().GetString("sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if _, ok := defaultSheetNames[kind]; !ok {
		return fmt.Errorf("unknown report %q: use ledger, monthly, loyalty or history", kind)
	}
	if sheetName == "" {
		sheetName = defaultSheetNames[kind]
	}

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := commandContext(cmd)

	// Build the table
	var table sheets.Table
	switch kind {
	case "ledger":
		from, to, err := rangeFlags(cmd, svc)
		if err != nil {
			return err
		}
		l, err := svc.Ledger(ctx, from, to)
		if err != nil {
			return err
		}
		table = sheets.LedgerTable(sheetName, l)
	case "monthly":
		m, err := svc.Monthly(ctx)
		if err != nil {
			return err
		}
		table = sheets.MonthlyTable(sheetName, m)
	case "loyalty":
		q, err := loyaltyQuery(cmd)
		if err != nil {
			return err
		}
		stats, err := svc.Loyalty(ctx, q)
		if err != nil {
			return err
		}
		table = sheets.LoyaltyTable(sheetName, stats)
	case "history":
		if len(args) < 2 {
			return fmt.Errorf("history export needs an invoice id or number")
		}
		h, err := svc.InvoiceHistory(ctx, args[1])
		if err != nil {
			return err
		}
		table = sheets.HistoryTable(sheetName, h)
	}

	if dryRun {
		log.Info().Str("sheet", table.Name).Int("rows", len(table.Rows)).Msg("Dry run mode: nothing written")
		printTable(table.Header, table.Rows)
		return nil
	}

	if appConfig.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required")
	}

	sheetsService, err := sheets.NewSheetsService(ctx, appConfig.GoogleSheetURL, appConfig.GoogleServiceAccountKey)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}
	log.Info().Msg("Google Sheets service initialized successfully")

	if err := sheetsService.Export(ctx, table); err != nil {
		return err
	}

	fmt.Printf("%d linhas exportadas para \"%s\".\n", len(table.Rows), table.Name)
	return nil
}
