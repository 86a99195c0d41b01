// Package dataset loads shop records from a YAML or JSON snapshot file.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"oficina/internal/finance"
	"oficina/internal/logger"
	"oficina/pkg/models"
	"oficina/pkg/services"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// FileSource reads records from a snapshot file on every Load.
type FileSource struct {
	path string
	loc  *time.Location
	log  zerolog.Logger
}

var _ services.RecordSource = (*FileSource)(nil)

// NewFileSource creates a source for path. Dates without a zone are read in loc.
func NewFileSource(path string, loc *time.Location) *FileSource {
	if loc == nil {
		loc = time.Local
	}
	return &FileSource{
		path: path,
		loc:  loc,
		log:  logger.WithComponent("dataset-reader"),
	}
}

// Describe implements services.RecordSource.
func (s *FileSource) Describe() string {
	return "file " + s.path
}

// Load reads and parses the snapshot. Rows that fail to parse are logged and
// skipped; only an unreadable or undecodable file is an error.
func (s *FileSource) Load(ctx context.Context) (*models.Dataset, error) {
	const op = "FileSource.Load"

	if err := ctx.Err(); err != nil {
		return nil, &services.LoadError{Op: op, Source: s.path, Err: err}
	}

	s.log.Info().Str("file", s.path).Msg("Reading snapshot")

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &services.LoadError{Op: op, Source: s.path, Err: err}
	}

	ds, err := s.Decode(data, filepath.Ext(s.path))
	if err != nil {
		return nil, &services.LoadError{Op: op, Source: s.path, Err: err}
	}
	return ds, nil
}

// Decode parses snapshot bytes. ext selects the format (".yaml", ".yml" or
// ".json"); yaml.v2 reads both since JSON documents are valid YAML flow syntax.
func (s *FileSource) Decode(data []byte, ext string) (*models.Dataset, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	b := &builder{loc: s.loc, log: s.log}
	ds := b.build(snap)

	s.log.Info().
		Int("invoices", len(ds.Invoices)).
		Int("expenses", len(ds.Expenses)).
		Int("purchases", len(ds.Purchases)).
		Int("salary_advances", len(ds.SalaryAdvances)).
		Int("extra_receipts", len(ds.ExtraReceipts)).
		Int("occurrences", len(ds.Occurrences)).
		Int("clients", len(ds.Clients)).
		Int("skipped_rows", b.skipped).
		Msg("Snapshot read successfully")

	return ds, nil
}

// builder converts snapshot rows into models, counting the rows it drops.
type builder struct {
	loc     *time.Location
	log     zerolog.Logger
	skipped int
}

func (b *builder) skip(kind, id string, row int, err error) {
	b.skipped++
	b.log.Warn().
		Err(err).
		Str("kind", kind).
		Str("id", id).
		Int("row", row).
		Msg("Failed to parse row, skipping")
}

func (b *builder) build(snap snapshot) *models.Dataset {
	ds := &models.Dataset{
		PaymentMethods: snap.PaymentMethods,
	}

	for _, c := range snap.Clients {
		ds.Clients = append(ds.Clients, models.Client{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email})
	}
	for _, e := range snap.Employees {
		ds.Employees = append(ds.Employees, models.Employee{ID: e.ID, Name: e.Name, Role: e.Role})
	}
	for _, s := range snap.Suppliers {
		ds.Suppliers = append(ds.Suppliers, models.Supplier{ID: s.ID, Name: s.Name})
	}

	for i, raw := range snap.Invoices {
		inv, err := b.invoice(raw)
		if err != nil {
			b.skip("invoice", raw.ID, i+1, err)
			continue
		}
		ds.Invoices = append(ds.Invoices, inv)
	}

	for i, raw := range snap.Expenses {
		amount, date, err := b.amountAndDate(raw.Amount, raw.Date)
		if err != nil {
			b.skip("expense", raw.ID, i+1, err)
			continue
		}
		ds.Expenses = append(ds.Expenses, models.Expense{
			ID:          raw.ID,
			Description: raw.Description,
			Category:    raw.Category,
			Amount:      amount,
			Date:        date,
			SupplierID:  raw.SupplierID,
		})
	}

	for i, raw := range snap.Purchases {
		amount, date, err := b.amountAndDate(raw.Amount, raw.Date)
		if err != nil {
			b.skip("purchase", raw.ID, i+1, err)
			continue
		}
		ds.Purchases = append(ds.Purchases, models.Purchase{
			ID:          raw.ID,
			SupplierID:  raw.SupplierID,
			Description: raw.Description,
			Amount:      amount,
			Date:        date,
		})
	}

	for i, raw := range snap.SalaryAdvances {
		amount, date, err := b.amountAndDate(raw.Amount, raw.Date)
		if err != nil {
			b.skip("salary_advance", raw.ID, i+1, err)
			continue
		}
		ds.SalaryAdvances = append(ds.SalaryAdvances, models.SalaryAdvance{
			ID:         raw.ID,
			EmployeeID: raw.EmployeeID,
			Amount:     amount,
			Date:       date,
			Note:       raw.Note,
		})
	}

	for i, raw := range snap.ExtraReceipts {
		amount, date, err := b.amountAndDate(raw.Amount, raw.Date)
		if err != nil {
			b.skip("extra_receipt", raw.ID, i+1, err)
			continue
		}
		ds.ExtraReceipts = append(ds.ExtraReceipts, models.ExtraReceipt{
			ID:          raw.ID,
			Description: raw.Description,
			Amount:      amount,
			Date:        date,
			Method:      raw.Method,
		})
	}

	for i, raw := range snap.Occurrences {
		created, err := parseDate(raw.CreatedAt, b.loc)
		if err != nil {
			b.skip("occurrence", raw.ID, i+1, fmt.Errorf("created_at: %w", err))
			continue
		}
		ds.Occurrences = append(ds.Occurrences, models.Occurrence{
			ID:           raw.ID,
			Title:        raw.Title,
			Description:  raw.Description,
			VehiclePlate: raw.VehiclePlate,
			CreatedAt:    created,
		})
	}

	return ds
}

func (b *builder) amountAndDate(rawAmount interface{}, rawDate string) (float64, time.Time, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("amount: %w", err)
	}
	date, err := parseDate(rawDate, b.loc)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("date: %w", err)
	}
	return amount, date, nil
}

// invoice converts one invoice row. A bad payment is dropped on its own; a
// bad issue date or total drops the whole invoice.
func (b *builder) invoice(raw rawInvoice) (models.Invoice, error) {
	const op = "invoice"

	issued, err := parseDate(raw.IssueDate, b.loc)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("%s: issue_date: %w", op, err)
	}

	inv := models.Invoice{
		ID:           raw.ID,
		Number:       raw.Number,
		ClientID:     raw.ClientID,
		VehiclePlate: raw.VehiclePlate,
		IssueDate:    issued,
		Cancelled:    raw.Cancelled || strings.EqualFold(strings.TrimSpace(raw.Status), string(finance.StatusCancelled)),
		Notes:        raw.Notes,
	}

	if raw.DueDate != "" {
		due, err := parseDate(raw.DueDate, b.loc)
		if err != nil {
			return models.Invoice{}, fmt.Errorf("%s: due_date: %w", op, err)
		}
		inv.DueDate = &due
	}
	if raw.CreatedAt != "" {
		if created, err := parseDate(raw.CreatedAt, b.loc); err == nil {
			inv.CreatedAt = created
		}
	}

	for i, line := range raw.Items {
		item, err := parseItem(line)
		if err != nil {
			return models.Invoice{}, fmt.Errorf("%s: item %d: %w", op, i+1, err)
		}
		inv.Items = append(inv.Items, item)
	}

	// Total falls back to the sum of the lines
	inv.Total, err = parseAmount(raw.Total)
	if errors.Is(err, errMissingValue) && len(raw.Items) > 0 {
		inv.Total, err = sumItems(raw.Items)
	}
	if err != nil {
		return models.Invoice{}, fmt.Errorf("%s: total: %w", op, err)
	}
	if inv.Total < 0 {
		return models.Invoice{}, fmt.Errorf("%s: negative total %.2f", op, inv.Total)
	}

	for i, rp := range raw.Payments {
		p, err := b.payment(rp)
		if err != nil {
			b.log.Warn().
				Err(err).
				Str("invoice", raw.ID).
				Int("payment", i+1).
				Msg("Failed to parse payment, skipping")
			b.skipped++
			continue
		}
		inv.Payments = append(inv.Payments, p)
	}

	return inv, nil
}

func (b *builder) payment(raw rawPayment) (models.InvoicePayment, error) {
	amount, date, err := b.amountAndDate(raw.Amount, raw.Date)
	if err != nil {
		return models.InvoicePayment{}, err
	}
	if amount <= 0 {
		return models.InvoicePayment{}, fmt.Errorf("amount must be positive, got %.2f", amount)
	}
	return models.InvoicePayment{
		ID:            raw.ID,
		Amount:        amount,
		Method:        raw.Method,
		Date:          date,
		ReceiptNumber: finance.NormalizeReceiptNumber(raw.ReceiptNumber),
	}, nil
}
