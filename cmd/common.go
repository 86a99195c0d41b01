package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"oficina/internal/dataset"
	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/internal/money"
	"oficina/internal/report"
	"oficina/internal/store"
	"oficina/pkg/services"
)

const dayLayout = "2006-01-02"

// newReportService builds the report service from the configuration and the
// persistent flags. The returned cleanup must be called when done.
func newReportService(cmd *cobra.Command) (*report.Service, func(), error) {
	const op = "newReportService"
	log := logger.WithComponent("cmd")

	if appConfig == nil {
		if configErr == nil {
			configErr = errors.New("configuration not loaded")
		}
		return nil, nil, fmt.Errorf("%s: %w", op, configErr)
	}
	cfg := appConfig
	loc := cfg.Location()

	// Get flags
	dataFile, _ := cmd.Flags().GetString("data")
	nowStr, _ := cmd.Flags().GetString("now")

	clock := time.Now
	if nowStr != "" {
		fixed, err := parseInstant(nowStr, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --now: %w", err)
		}
		clock = func() time.Time { return fixed }
	}

	// Pick the record source
	var (
		source  services.RecordSource
		cleanup = func() {}
	)
	switch {
	case dataFile != "":
		source = dataset.NewFileSource(dataFile, loc)
	case cfg.UsesDatabase():
		pool, err := store.Connect(commandContext(cmd), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		source = store.NewPostgresSource(pool)
		cleanup = pool.Close
	default:
		source = dataset.NewFileSource(cfg.DataFile, loc)
	}

	log.Debug().
		Str("source", source.Describe()).
		Str("timezone", loc.String()).
		Int("due_terms_days", cfg.DueTermsDays).
		Msg("Report service configured")

	svc := report.New(source, report.Options{
		DueTermsDays:   cfg.DueTermsDays,
		Location:       loc,
		PaymentMethods: cfg.PaymentMethods,
		Clock:          clock,
	})
	return svc, cleanup, nil
}

// parseInstant accepts YYYY-MM-DD (start of that day in loc) or RFC3339.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dayLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("use YYYY-MM-DD or RFC3339, got %q", s)
	}
	return t, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printTable writes header and rows as aligned columns on stdout.
func printTable(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// userMessage turns known errors into a short explanation for the terminal.
func userMessage(err error) string {
	var (
		verr    *finance.ValidationError
		loadErr *services.LoadError
	)
	switch {
	case errors.As(err, &verr):
		if errors.Is(verr, finance.ErrExceedsBalance) {
			return fmt.Sprintf("payment rejected (%s): %s exceeds the balance of %s by %s",
				verr.Reason(), money.Format(verr.TotalPaid), money.Format(verr.Balance), money.Format(verr.Excess()))
		}
		return fmt.Sprintf("payment rejected (%s): no row has a positive amount", verr.Reason())
	case errors.As(err, &loadErr):
		return fmt.Sprintf("could not read records from %s: %v", loadErr.Source, loadErr.Err)
	case errors.Is(err, report.ErrInvoiceNotFound):
		return "invoice not found; pass an invoice id or number"
	default:
		return err.Error()
	}
}
