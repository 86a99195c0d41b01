// Package report runs the finance computations over a record source with the
// shop's configured rules.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/pkg/models"
	"oficina/pkg/services"
)

var (
	// ErrInvoiceNotFound is returned when no invoice matches the given id or number.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvoiceCancelled is returned when payments are validated against a voided invoice.
	ErrInvoiceCancelled = errors.New("invoice is cancelled")
)

// Options holds the shop rules the reports depend on.
type Options struct {
	DueTermsDays   int
	Location       *time.Location
	PaymentMethods []string

	// Clock returns the current instant. Defaults to time.Now.
	Clock func() time.Time

	// NewID overrides payment id generation, for tests.
	NewID func() string
}

// Service loads a fresh dataset for every call and derives the requested
// report from it. It keeps no state between calls.
type Service struct {
	source services.RecordSource
	opts   Options
	log    zerolog.Logger
}

// New creates a report service over source.
func New(source services.RecordSource, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		source: source,
		opts:   opts,
		log:    logger.WithComponent("report"),
	}
}

// Location returns the zone used for day and month boundaries.
func (s *Service) Location() *time.Location {
	return s.opts.Location
}

// Now returns the service clock's current instant in the configured zone.
func (s *Service) Now() time.Time {
	return s.opts.Clock().In(s.opts.Location)
}

func (s *Service) load(ctx context.Context) (*models.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("source", s.source.Describe()).Msg("Failed to load records")
		return nil, err
	}
	return ds, nil
}

func (s *Service) calculator() finance.Calculator {
	return finance.NewCalculator(s.Now(), s.opts.DueTermsDays)
}

// InvoiceView is one invoice with its derived balance.
type InvoiceView struct {
	ID           string                 `json:"id"`
	Number       string                 `json:"number"`
	ClientID     string                 `json:"clientId"`
	VehiclePlate string                 `json:"vehiclePlate,omitempty"`
	IssueDate    time.Time              `json:"issueDate"`
	DueDate      time.Time              `json:"dueDate"`
	Total        float64                `json:"total"`
	Balance      finance.InvoiceBalance `json:"balance"`
}

func (s *Service) view(calc finance.Calculator, inv models.Invoice) InvoiceView {
	return InvoiceView{
		ID:           inv.ID,
		Number:       inv.Number,
		ClientID:     inv.ClientID,
		VehiclePlate: inv.VehiclePlate,
		IssueDate:    inv.IssueDate,
		DueDate:      calc.DueDate(inv),
		Total:        inv.Total,
		Balance:      calc.Compute(inv),
	}
}

func findInvoice(ds *models.Dataset, id string) (models.Invoice, error) {
	inv, ok := ds.FindInvoice(id)
	if !ok {
		return models.Invoice{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}
	return *inv, nil
}

// InvoiceBalance derives the status and balance of one invoice.
func (s *Service) InvoiceBalance(ctx context.Context, id string) (InvoiceView, error) {
	const op = "InvoiceBalance"

	ds, err := s.load(ctx)
	if err != nil {
		return InvoiceView{}, fmt.Errorf("%s: %w", op, err)
	}
	inv, err := findInvoice(ds, id)
	if err != nil {
		return InvoiceView{}, fmt.Errorf("%s: %w", op, err)
	}

	v := s.view(s.calculator(), inv)
	s.log.Debug().
		Str("invoice", inv.ID).
		Str("status", string(v.Balance.Status)).
		Float64("balance", v.Balance.Balance).
		Msg("Invoice balance computed")
	return v, nil
}

// Invoices derives the balance of every invoice, optionally keeping only the
// given statuses.
func (s *Service) Invoices(ctx context.Context, statuses ...finance.Status) ([]InvoiceView, error) {
	const op = "Invoices"

	ds, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	keep := make(map[finance.Status]bool, len(statuses))
	for _, st := range statuses {
		keep[st] = true
	}

	calc := s.calculator()
	views := make([]InvoiceView, 0, len(ds.Invoices))
	for _, inv := range ds.Invoices {
		v := s.view(calc, inv)
		if len(keep) > 0 && !keep[v.Balance.Status] {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// History is an invoice with its payments and running totals.
type History struct {
	Invoice InvoiceView          `json:"invoice"`
	Rows    []finance.HistoryRow `json:"rows"`
}

// InvoiceHistory lists the payments of one invoice.
func (s *Service) InvoiceHistory(ctx context.Context, id string) (History, error) {
	const op = "InvoiceHistory"

	ds, err := s.load(ctx)
	if err != nil {
		return History{}, fmt.Errorf("%s: %w", op, err)
	}
	inv, err := findInvoice(ds, id)
	if err != nil {
		return History{}, fmt.Errorf("%s: %w", op, err)
	}

	return History{
		Invoice: s.view(s.calculator(), inv),
		Rows:    finance.PaymentHistory(inv),
	}, nil
}

// PaymentMethods returns the methods offered for new payments: the record
// source's list when it has one, the configured list otherwise.
func (s *Service) PaymentMethods(ds *models.Dataset) []string {
	if ds != nil && len(ds.PaymentMethods) > 0 {
		return ds.PaymentMethods
	}
	return s.opts.PaymentMethods
}

// ValidatePayments checks a batch of payment rows against the current balance
// of an invoice. A rejected batch returns the result together with a
// *finance.ValidationError. Nothing is persisted.
func (s *Service) ValidatePayments(ctx context.Context, id, receipt string, rows []finance.PaymentRow) (finance.BatchResult, error) {
	const op = "ValidatePayments"

	ds, err := s.load(ctx)
	if err != nil {
		return finance.BatchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	inv, err := findInvoice(ds, id)
	if err != nil {
		return finance.BatchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if inv.Cancelled {
		return finance.BatchResult{}, fmt.Errorf("%s: %w: %s", op, ErrInvoiceCancelled, inv.ID)
	}

	bal := s.calculator().Compute(inv)
	result, err := finance.ValidateBatch(bal.Balance, rows, finance.BatchOptions{
		Now:           s.Now(),
		ReceiptNumber: receipt,
		Methods:       s.PaymentMethods(ds),
		NewID:         s.opts.NewID,
	})

	log := s.log.With().
		Str("invoice", inv.ID).
		Int("rows", len(rows)).
		Int("dropped", result.Dropped).
		Float64("total_paid", result.TotalPaid).
		Float64("balance", bal.Balance).
		Logger()
	if err != nil {
		log.Info().Str("reason", result.Reason).Msg("Payment batch rejected")
		return result, err
	}
	log.Info().Bool("settled", result.Settled).Msg("Payment batch accepted")
	return result, nil
}

// Monthly is the month-by-month income statement.
type Monthly struct {
	Buckets []finance.MonthlyBucket `json:"buckets"`
	Totals  finance.MonthlyTotals   `json:"totals"`
}

// Monthly aggregates income and expenses per calendar month.
func (s *Service) Monthly(ctx context.Context) (Monthly, error) {
	const op = "Monthly"

	ds, err := s.load(ctx)
	if err != nil {
		return Monthly{}, fmt.Errorf("%s: %w", op, err)
	}

	buckets := finance.AggregateMonthly(ds.Invoices, ds.Expenses, ds.ExtraReceipts, s.opts.Location)
	if buckets == nil {
		buckets = []finance.MonthlyBucket{}
	}
	totals := finance.SummarizeMonths(buckets)

	s.log.Debug().
		Int("months", totals.Months).
		Float64("lucro", totals.Lucro).
		Msg("Monthly report computed")
	return Monthly{Buckets: buckets, Totals: totals}, nil
}

// Ledger is the activity report for a date range.
type Ledger struct {
	From    time.Time             `json:"from"`
	To      time.Time             `json:"to"`
	Entries []finance.LedgerEntry `json:"entries"`
	Totals  finance.LedgerTotals  `json:"totals"`
}

// Ledger merges all records dated within [from, to], to's whole day included.
// Only the calendar dates of from and to are used; they are read in the
// service's location whatever location the caller built them in.
func (s *Service) Ledger(ctx context.Context, from, to time.Time) (Ledger, error) {
	const op = "Ledger"

	q := finance.LedgerQuery{Start: s.day(from), End: s.day(to)}
	if err := q.Validate(); err != nil {
		return Ledger{}, fmt.Errorf("%s: %w", op, err)
	}

	ds, err := s.load(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("%s: %w", op, err)
	}

	entries := finance.BuildLedger(q, finance.SourcesFromDataset(ds))
	if entries == nil {
		entries = []finance.LedgerEntry{}
	}
	totals := finance.SummarizeLedger(entries)

	s.log.Debug().
		Time("from", q.Start).
		Time("to", q.EndInclusive()).
		Int("entries", totals.Count).
		Msg("Ledger built")
	return Ledger{From: q.Start, To: q.EndInclusive(), Entries: entries, Totals: totals}, nil
}

// day is the start of t's calendar date in the service's location.
func (s *Service) day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.opts.Location)
}

// Loyalty ranks clients. A zero q.Now is replaced with the service clock.
func (s *Service) Loyalty(ctx context.Context, q finance.LoyaltyQuery) ([]finance.ClientStat, error) {
	const op = "Loyalty"

	if q.Now.IsZero() {
		q.Now = s.Now()
	}

	ds, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := finance.RankClients(ds.Clients, ds.Invoices, q)
	if stats == nil {
		stats = []finance.ClientStat{}
	}

	s.log.Debug().
		Str("window", string(q.Window)).
		Str("sort", string(q.SortBy)).
		Int("clients", len(stats)).
		Msg("Loyalty ranking computed")
	return stats, nil
}
