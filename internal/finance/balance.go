// Package finance derives balances, payment validation results, monthly
// rollups, the activity ledger and client rankings from in-memory records.
//
// Every function in this package is a pure function of its arguments: inputs
// are never mutated, results are freshly allocated, and the current time is
// always passed in explicitly. Callers may invoke them concurrently.
package finance

import (
	"time"

	"oficina/pkg/models"
)

// BalanceEpsilon is the tolerance, in currency units, under which an invoice
// counts as settled. The payment validator uses the same value so both agree
// at the boundary.
const BalanceEpsilon = 0.01

// DefaultDueTermsDays is used when no due terms are configured.
const DefaultDueTermsDays = 30

// Status is the derived payment status of an invoice.
type Status string

const (
	StatusPending   Status = "Pendente"
	StatusPartial   Status = "Pago Parcialmente"
	StatusPaid      Status = "Pago"
	StatusOverdue   Status = "Atrasado"
	StatusCancelled Status = "Anulada"
)

// InvoiceBalance is the derived state of one invoice.
type InvoiceBalance struct {
	Status    Status  `json:"status"`
	TotalPaid float64 `json:"totalPaid"`
	Balance   float64 `json:"balance"` // never negative
}

// Calculator derives InvoiceBalance values.
type Calculator struct {
	// Now is the instant the status is evaluated at.
	Now time.Time

	// DueTermsDays is added to the issue date when an invoice has no explicit due date.
	DueTermsDays int
}

// NewCalculator returns a calculator evaluating at now with the given due terms.
func NewCalculator(now time.Time, dueTermsDays int) Calculator {
	return Calculator{Now: now, DueTermsDays: dueTermsDays}
}

// Compute derives status, total paid and balance for inv.
func (c Calculator) Compute(inv models.Invoice) InvoiceBalance {
	paid := TotalPaid(inv.Payments)
	outstanding := inv.Total - paid

	result := InvoiceBalance{
		TotalPaid: paid,
		Balance:   outstanding,
	}
	if result.Balance < 0 {
		result.Balance = 0
	}

	// First match wins
	switch {
	case inv.Cancelled:
		result.Status = StatusCancelled
	case outstanding <= BalanceEpsilon:
		result.Status = StatusPaid
	case paid > 0:
		result.Status = StatusPartial
	case c.Now.After(c.DueDate(inv)):
		result.Status = StatusOverdue
	default:
		result.Status = StatusPending
	}

	return result
}

// DueDate returns the explicit due date of inv, or its issue date plus the
// configured terms.
func (c Calculator) DueDate(inv models.Invoice) time.Time {
	if inv.DueDate != nil && !inv.DueDate.IsZero() {
		return *inv.DueDate
	}
	return inv.IssueDate.AddDate(0, 0, c.DueTermsDays)
}

// TotalPaid sums payment amounts in entry order.
func TotalPaid(payments []models.InvoicePayment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}
