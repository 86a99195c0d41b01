package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"oficina/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func payments(amounts ...float64) []models.InvoicePayment {
	out := make([]models.InvoicePayment, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, models.InvoicePayment{Amount: a, Method: "Pix", Date: day(2025, 3, 1+i)})
	}
	return out
}

func TestCalculatorCompute(t *testing.T) {
	issued := day(2025, 3, 1)
	due := day(2025, 3, 10)

	tests := []struct {
		name       string
		invoice    models.Invoice
		now        time.Time
		wantStatus Status
		wantPaid   float64
		wantBal    float64
	}{
		{
			name:       "no payments before due date",
			invoice:    models.Invoice{Total: 1000, IssueDate: issued},
			now:        day(2025, 3, 5),
			wantStatus: StatusPending,
			wantPaid:   0,
			wantBal:    1000,
		},
		{
			name:       "no payments after default terms",
			invoice:    models.Invoice{Total: 1000, IssueDate: issued},
			now:        day(2025, 4, 15),
			wantStatus: StatusOverdue,
			wantBal:    1000,
		},
		{
			name:       "explicit due date overrides terms",
			invoice:    models.Invoice{Total: 1000, IssueDate: issued, DueDate: &due},
			now:        day(2025, 3, 11),
			wantStatus: StatusOverdue,
			wantBal:    1000,
		},
		{
			name:       "partial payment is never overdue",
			invoice:    models.Invoice{Total: 1000, IssueDate: issued, Payments: payments(400)},
			now:        day(2026, 1, 1),
			wantStatus: StatusPartial,
			wantPaid:   400,
			wantBal:    600,
		},
		{
			name:       "fully paid across payments",
			invoice:    models.Invoice{Total: 1000, IssueDate: issued, Payments: payments(400, 600)},
			now:        day(2025, 3, 5),
			wantStatus: StatusPaid,
			wantPaid:   1000,
			wantBal:    0,
		},
		{
			name:       "within tolerance counts as paid",
			invoice:    models.Invoice{Total: 100, IssueDate: issued, Payments: payments(99.995)},
			now:        day(2025, 3, 5),
			wantStatus: StatusPaid,
			wantPaid:   99.995,
			wantBal:    0.005,
		},
		{
			name:       "just above tolerance is partial",
			invoice:    models.Invoice{Total: 100, IssueDate: issued, Payments: payments(99.98)},
			now:        day(2025, 3, 5),
			wantStatus: StatusPartial,
			wantPaid:   99.98,
			wantBal:    0.02,
		},
		{
			name:       "overpayment clamps balance",
			invoice:    models.Invoice{Total: 100, IssueDate: issued, Payments: payments(150)},
			now:        day(2025, 3, 5),
			wantStatus: StatusPaid,
			wantPaid:   150,
			wantBal:    0,
		},
		{
			name:       "cancelled wins over everything",
			invoice:    models.Invoice{Total: 100, IssueDate: issued, Payments: payments(100), Cancelled: true},
			now:        day(2025, 3, 5),
			wantStatus: StatusCancelled,
			wantPaid:   100,
			wantBal:    0,
		},
		{
			name:       "zero total is paid",
			invoice:    models.Invoice{Total: 0, IssueDate: issued},
			now:        day(2025, 5, 5),
			wantStatus: StatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCalculator(tt.now, DefaultDueTermsDays).Compute(tt.invoice)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.InDelta(t, tt.wantPaid, got.TotalPaid, 1e-9)
			assert.InDelta(t, tt.wantBal, got.Balance, 1e-9)
		})
	}
}

func TestCalculatorPaidPlusBalanceEqualsTotal(t *testing.T) {
	calc := NewCalculator(day(2025, 6, 1), DefaultDueTermsDays)
	histories := [][]float64{
		nil,
		{0.1, 0.2, 0.3},
		{33.33, 33.33, 33.33},
		{999.99},
		{250, 250, 250, 249.99},
	}
	for _, h := range histories {
		inv := models.Invoice{Total: 1000, IssueDate: day(2025, 5, 1), Payments: payments(h...)}
		got := calc.Compute(inv)
		assert.InDelta(t, inv.Total, got.TotalPaid+got.Balance, BalanceEpsilon, "history %v", h)

		if got.Balance <= BalanceEpsilon {
			assert.Equal(t, StatusPaid, got.Status, "history %v", h)
		} else if got.TotalPaid > 0 {
			assert.Equal(t, StatusPartial, got.Status, "history %v", h)
		}
	}
}

func TestCalculatorIsReferentiallyTransparent(t *testing.T) {
	inv := models.Invoice{Total: 500, IssueDate: day(2025, 1, 1), Payments: payments(100, 50)}
	calc := NewCalculator(day(2025, 2, 1), 15)

	first := calc.Compute(inv)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, calc.Compute(inv))
	}
	assert.Len(t, inv.Payments, 2, "input must not be mutated")
}

func TestCalculatorDueDate(t *testing.T) {
	calc := NewCalculator(time.Time{}, 0)
	inv := models.Invoice{IssueDate: day(2025, 1, 31)}

	assert.Equal(t, inv.IssueDate, calc.DueDate(inv))

	calc.DueTermsDays = 30
	assert.Equal(t, day(2025, 3, 2), calc.DueDate(inv))
}
