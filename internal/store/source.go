package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"oficina/internal/logger"
	"oficina/pkg/models"
	"oficina/pkg/services"
)

// PostgresSource loads a Dataset with one read-only query per table inside a
// single repeatable-read transaction, so every report sees one snapshot.
type PostgresSource struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

var _ services.RecordSource = (*PostgresSource)(nil)

// NewPostgresSource creates a source over pool. The caller owns the pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{
		pool: pool,
		log:  logger.WithComponent("store"),
	}
}

// Describe implements services.RecordSource.
func (s *PostgresSource) Describe() string {
	return "postgres"
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryAll[T any](ctx context.Context, q querier, sql string) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

type invoiceRow struct {
	ID           string     `db:"id"`
	Number       string     `db:"number"`
	ClientID     string     `db:"client_id"`
	VehiclePlate string     `db:"vehicle_plate"`
	IssueDate    time.Time  `db:"issue_date"`
	DueDate      *time.Time `db:"due_date"`
	Total        float64    `db:"total"`
	Cancelled    bool       `db:"cancelled"`
	Notes        string     `db:"notes"`
	CreatedAt    time.Time  `db:"created_at"`
}

type paymentRow struct {
	ID            string    `db:"id"`
	InvoiceID     string    `db:"invoice_id"`
	Amount        float64   `db:"amount"`
	Method        string    `db:"method"`
	PaidAt        time.Time `db:"paid_at"`
	ReceiptNumber string    `db:"receipt_number"`
}

const (
	invoicesSQL = `
		SELECT id, COALESCE(number, '') AS number, COALESCE(client_id, '') AS client_id,
		       COALESCE(vehicle_plate, '') AS vehicle_plate, issue_date, due_date,
		       total, cancelled, COALESCE(notes, '') AS notes, created_at
		FROM invoices
		ORDER BY issue_date, id`

	paymentsSQL = `
		SELECT id, invoice_id, amount, method, paid_at, receipt_number
		FROM invoice_payments
		ORDER BY invoice_id, seq`

	expensesSQL = `
		SELECT id, COALESCE(description, '') AS description, COALESCE(category, '') AS category,
		       amount, spent_at AS date, COALESCE(supplier_id, '') AS supplier_id
		FROM expenses
		ORDER BY spent_at, id`

	purchasesSQL = `
		SELECT id, COALESCE(supplier_id, '') AS supplier_id, COALESCE(description, '') AS description,
		       amount, bought_at AS date
		FROM purchases
		ORDER BY bought_at, id`

	advancesSQL = `
		SELECT id, COALESCE(employee_id, '') AS employee_id, amount, advanced_at AS date,
		       COALESCE(note, '') AS note
		FROM salary_advances
		ORDER BY advanced_at, id`

	receiptsSQL = `
		SELECT id, COALESCE(description, '') AS description, amount, received_at AS date,
		       COALESCE(method, '') AS method
		FROM extra_receipts
		ORDER BY received_at, id`

	occurrencesSQL = `
		SELECT id, title, COALESCE(description, '') AS description,
		       COALESCE(vehicle_plate, '') AS vehicle_plate, created_at
		FROM occurrences
		ORDER BY created_at, id`

	clientsSQL = `
		SELECT id, name, COALESCE(phone, '') AS phone, COALESCE(email, '') AS email
		FROM clients
		ORDER BY name, id`

	employeesSQL = `SELECT id, name, COALESCE(role, '') AS role FROM employees ORDER BY name, id`

	suppliersSQL = `SELECT id, name FROM suppliers ORDER BY name, id`

	methodsSQL = `SELECT name FROM payment_methods ORDER BY position`
)

// Load implements services.RecordSource.
func (s *PostgresSource) Load(ctx context.Context) (*models.Dataset, error) {
	const op = "PostgresSource.Load"

	if s.pool == nil {
		return nil, &services.LoadError{Op: op, Source: s.Describe(), Err: fmt.Errorf("database pool not configured")}
	}

	start := time.Now()
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, &services.LoadError{Op: op, Source: s.Describe(), Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ds, err := s.load(ctx, tx)
	if err != nil {
		return nil, &services.LoadError{Op: op, Source: s.Describe(), Err: err}
	}

	s.log.Info().
		Int("invoices", len(ds.Invoices)).
		Int("expenses", len(ds.Expenses)).
		Int("clients", len(ds.Clients)).
		Dur("took", time.Since(start)).
		Msg("Records loaded from database")

	return ds, nil
}

func (s *PostgresSource) load(ctx context.Context, q querier) (*models.Dataset, error) {
	var (
		ds  models.Dataset
		err error
	)

	invoices, err := queryAll[invoiceRow](ctx, q, invoicesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoices: %w", err)
	}
	payments, err := queryAll[paymentRow](ctx, q, paymentsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice payments: %w", err)
	}
	ds.Invoices = assembleInvoices(invoices, payments)

	if ds.Expenses, err = queryAll[models.Expense](ctx, q, expensesSQL); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	if ds.Purchases, err = queryAll[models.Purchase](ctx, q, purchasesSQL); err != nil {
		return nil, fmt.Errorf("failed to read purchases: %w", err)
	}
	if ds.SalaryAdvances, err = queryAll[models.SalaryAdvance](ctx, q, advancesSQL); err != nil {
		return nil, fmt.Errorf("failed to read salary advances: %w", err)
	}
	if ds.ExtraReceipts, err = queryAll[models.ExtraReceipt](ctx, q, receiptsSQL); err != nil {
		return nil, fmt.Errorf("failed to read extra receipts: %w", err)
	}
	if ds.Occurrences, err = queryAll[models.Occurrence](ctx, q, occurrencesSQL); err != nil {
		return nil, fmt.Errorf("failed to read occurrences: %w", err)
	}
	if ds.Clients, err = queryAll[models.Client](ctx, q, clientsSQL); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}
	if ds.Employees, err = queryAll[models.Employee](ctx, q, employeesSQL); err != nil {
		return nil, fmt.Errorf("failed to read employees: %w", err)
	}
	if ds.Suppliers, err = queryAll[models.Supplier](ctx, q, suppliersSQL); err != nil {
		return nil, fmt.Errorf("failed to read suppliers: %w", err)
	}

	rows, err := q.Query(ctx, methodsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment methods: %w", err)
	}
	if ds.PaymentMethods, err = pgx.CollectRows(rows, pgx.RowTo[string]); err != nil {
		return nil, fmt.Errorf("failed to read payment methods: %w", err)
	}

	return &ds, nil
}

// assembleInvoices attaches payments to their invoices, keeping the payment
// order of the input. Payments for unknown invoices are dropped.
func assembleInvoices(invoices []invoiceRow, payments []paymentRow) []models.Invoice {
	byInvoice := make(map[string][]models.InvoicePayment, len(invoices))
	for _, p := range payments {
		byInvoice[p.InvoiceID] = append(byInvoice[p.InvoiceID], models.InvoicePayment{
			ID:            p.ID,
			Amount:        p.Amount,
			Method:        p.Method,
			Date:          p.PaidAt,
			ReceiptNumber: p.ReceiptNumber,
		})
	}

	out := make([]models.Invoice, 0, len(invoices))
	for _, r := range invoices {
		out = append(out, models.Invoice{
			ID:           r.ID,
			Number:       r.Number,
			ClientID:     r.ClientID,
			VehiclePlate: r.VehiclePlate,
			IssueDate:    r.IssueDate,
			DueDate:      r.DueDate,
			Total:        r.Total,
			Payments:     byInvoice[r.ID],
			Cancelled:    r.Cancelled,
			Notes:        r.Notes,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}
