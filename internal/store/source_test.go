package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleInvoices(t *testing.T) {
	issued := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := []invoiceRow{
		{ID: "i1", Number: "1001", Total: 1000, IssueDate: issued},
		{ID: "i2", Number: "1002", Total: 50, IssueDate: issued, Cancelled: true},
	}
	payments := []paymentRow{
		{ID: "p2", InvoiceID: "i1", Amount: 600, PaidAt: issued.AddDate(0, 0, -1)},
		{ID: "p1", InvoiceID: "i1", Amount: 400, PaidAt: issued},
		{ID: "px", InvoiceID: "gone", Amount: 10, PaidAt: issued},
	}

	got := assembleInvoices(invoices, payments)
	require.Len(t, got, 2)

	require.Len(t, got[0].Payments, 2)
	assert.Equal(t, "p2", got[0].Payments[0].ID, "entry order is kept even when dates disagree")
	assert.Equal(t, "p1", got[0].Payments[1].ID)

	assert.Empty(t, got[1].Payments)
	assert.True(t, got[1].Cancelled)
}

func TestLoadWithoutPool(t *testing.T) {
	_, err := NewPostgresSource(nil).Load(context.Background())
	assert.ErrorContains(t, err, "pool not configured")
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)
}

// Runs against a live database only when OFICINA_TEST_DATABASE_URL points at
// one loaded with schema.sql.
func TestPostgresSourceLoad(t *testing.T) {
	url := os.Getenv("OFICINA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("OFICINA_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	ds, err := NewPostgresSource(pool).Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ds)
}
