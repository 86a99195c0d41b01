package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oficina/internal/finance"
	"oficina/pkg/models"
)

type staticSource struct {
	ds    *models.Dataset
	err   error
	loads int
}

func (s *staticSource) Load(ctx context.Context) (*models.Dataset, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.ds, nil
}

func (s *staticSource) Describe() string { return "static" }

var testNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func at(m time.Month, d, h int) time.Time {
	return time.Date(2025, m, d, h, 0, 0, 0, time.UTC)
}

func testDataset() *models.Dataset {
	return &models.Dataset{
		Clients: []models.Client{
			{ID: "c1", Name: "João Silva"},
			{ID: "c2", Name: "Maria Souza"},
		},
		Invoices: []models.Invoice{
			{
				ID: "inv-1", Number: "1001", ClientID: "c1", Total: 1000, IssueDate: at(3, 1, 9),
				Payments: []models.InvoicePayment{{ID: "p1", Amount: 400, Method: "Pix", Date: at(3, 1, 10)}},
			},
			{ID: "inv-2", Number: "1002", ClientID: "c2", Total: 300, IssueDate: at(1, 5, 9)},
			{ID: "inv-3", Number: "1003", ClientID: "c2", Total: 80, IssueDate: at(3, 2, 9), Cancelled: true},
		},
		Expenses: []models.Expense{
			{ID: "e1", Description: "Aluguel", Amount: 2000, Date: at(3, 10, 9)},
		},
		ExtraReceipts: []models.ExtraReceipt{
			{ID: "r1", Description: "Sucata", Amount: 120, Date: at(2, 11, 10)},
		},
		PaymentMethods: []string{"Pix", "Dinheiro"},
	}
}

func newTestService(src *staticSource) *Service {
	n := 0
	return New(src, Options{
		DueTermsDays:   30,
		Location:       time.UTC,
		PaymentMethods: []string{"Dinheiro"},
		Clock:          func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		},
	})
}

func TestInvoiceBalance(t *testing.T) {
	svc := newTestService(&staticSource{ds: testDataset()})
	ctx := context.Background()

	v, err := svc.InvoiceBalance(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", v.ID)
	assert.Equal(t, finance.StatusPartial, v.Balance.Status)
	assert.Equal(t, 600.0, v.Balance.Balance)
	assert.Equal(t, at(3, 31, 9), v.DueDate)

	v, err = svc.InvoiceBalance(ctx, "inv-2")
	require.NoError(t, err)
	assert.Equal(t, finance.StatusOverdue, v.Balance.Status)

	_, err = svc.InvoiceBalance(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoicesFilter(t *testing.T) {
	svc := newTestService(&staticSource{ds: testDataset()})

	all, err := svc.Invoices(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := svc.Invoices(context.Background(), finance.StatusOverdue, finance.StatusPartial)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "inv-1", open[0].ID)
	assert.Equal(t, "inv-2", open[1].ID)
}

func TestValidatePayments(t *testing.T) {
	src := &staticSource{ds: testDataset()}
	svc := newTestService(src)
	ctx := context.Background()

	res, err := svc.ValidatePayments(ctx, "inv-1", "", []finance.PaymentRow{{Amount: "600"}})
	require.NoError(t, err)
	assert.True(t, res.Settled)
	require.Len(t, res.Payments, 1)
	assert.Equal(t, models.InvoicePayment{
		ID: "new-1", Amount: 600, Method: "Pix", Date: testNow, ReceiptNumber: "none",
	}, res.Payments[0], "method falls back to the first method of the dataset")

	res, err = svc.ValidatePayments(ctx, "inv-1", "", []finance.PaymentRow{{Amount: "700"}})
	assert.ErrorIs(t, err, finance.ErrExceedsBalance)
	assert.Equal(t, "exceeds-balance", res.Reason)

	_, err = svc.ValidatePayments(ctx, "inv-3", "", []finance.PaymentRow{{Amount: "10"}})
	assert.ErrorIs(t, err, ErrInvoiceCancelled)

	assert.Len(t, src.ds.Invoices[0].Payments, 1, "validation must not commit payments")
}

func TestPaymentMethodsFallBackToConfig(t *testing.T) {
	svc := newTestService(&staticSource{})
	assert.Equal(t, []string{"Dinheiro"}, svc.PaymentMethods(&models.Dataset{}))
	assert.Equal(t, []string{"Dinheiro"}, svc.PaymentMethods(nil))
}

func TestInvoiceHistory(t *testing.T) {
	svc := newTestService(&staticSource{ds: testDataset()})

	h, err := svc.InvoiceHistory(context.Background(), "1001")
	require.NoError(t, err)
	require.Len(t, h.Rows, 1)
	assert.Equal(t, 600.0, h.Rows[0].Remaining)
	assert.Equal(t, finance.StatusPartial, h.Invoice.Balance.Status)
}

func TestMonthly(t *testing.T) {
	svc := newTestService(&staticSource{ds: testDataset()})

	m, err := svc.Monthly(context.Background())
	require.NoError(t, err)
	require.Len(t, m.Buckets, 2)
	assert.Equal(t, "fev/2025", m.Buckets[0].Label)
	assert.Equal(t, 120.0, m.Buckets[0].Receitas)
	assert.Equal(t, "mar/2025", m.Buckets[1].Label)
	assert.Equal(t, 400.0, m.Buckets[1].Receitas)
	assert.Equal(t, 2000.0, m.Buckets[1].Despesas)
	assert.Equal(t, -1480.0, m.Totals.Lucro)
}

func TestMonthlyEmpty(t *testing.T) {
	svc := newTestService(&staticSource{ds: &models.Dataset{}})
	m, err := svc.Monthly(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m.Buckets)
	assert.Empty(t, m.Buckets)
}

func TestLedger(t *testing.T) {
	svc := newTestService(&staticSource{ds: testDataset()})
	ctx := context.Background()

	l, err := svc.Ledger(ctx, at(3, 1, 0), at(3, 10, 0))
	require.NoError(t, err)
	require.Len(t, l.Entries, 2)
	assert.Equal(t, "e1", l.Entries[0].SourceID, "end day is inclusive")
	assert.Equal(t, "p1", l.Entries[1].SourceID)
	assert.Equal(t, -1600.0, l.Totals.Net)

	_, err = svc.Ledger(ctx, at(3, 11, 0), at(3, 10, 0))
	assert.ErrorIs(t, err, finance.ErrInvalidRange)
}

func TestLedgerReadsDatesInServiceLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	ds := &models.Dataset{
		Expenses: []models.Expense{
			{ID: "e1", Description: "Aluguel", Amount: 2000, Date: time.Date(2025, 3, 10, 12, 0, 0, 0, loc)},
			{ID: "e2", Description: "Luz", Amount: 300, Date: time.Date(2025, 3, 9, 22, 0, 0, 0, loc)},
		},
	}
	svc := New(&staticSource{ds: ds}, Options{Location: loc, Clock: func() time.Time { return testNow }})

	// UTC midnight of the 10th is still the 9th in São Paulo
	l, err := svc.Ledger(context.Background(), at(3, 10, 0), at(3, 10, 0))
	require.NoError(t, err)
	require.Len(t, l.Entries, 1)
	assert.Equal(t, "e1", l.Entries[0].SourceID)
	assert.True(t, l.From.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, loc)))
}

func TestLoyaltyUsesServiceClock(t *testing.T) {
	svc := newTestService(&staticSource{ds: testDataset()})

	stats, err := svc.Loyalty(context.Background(), finance.LoyaltyQuery{Window: finance.WindowLast30Days})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "c1", stats[0].ClientID)
	assert.Equal(t, 1000.0, stats[0].TotalSpent)
	assert.Equal(t, "c2", stats[1].ClientID)
	assert.Equal(t, 80.0, stats[1].TotalSpent, "only the March invoice is inside the window")
}

func TestSourceErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	src := &staticSource{err: boom}
	svc := newTestService(src)
	ctx := context.Background()

	_, err := svc.Monthly(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Loyalty(ctx, finance.LoyaltyQuery{})
	assert.ErrorIs(t, err, boom)
	_, err = svc.InvoiceBalance(ctx, "inv-1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, src.loads)
}
