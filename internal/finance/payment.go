package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oficina/internal/money"
	"oficina/pkg/models"
)

// DefaultPaymentMethod is used for rows without a method when no methods are configured.
const DefaultPaymentMethod = "Dinheiro"

// NoReceipt is stored as the receipt number when none was given.
const NoReceipt = "none"

// PaymentRow is one payment line as typed by the user, before it becomes an
// InvoicePayment.
type PaymentRow struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

// BatchOptions carries everything ValidateBatch needs besides the rows.
type BatchOptions struct {
	// Now stamps the created payments.
	Now time.Time

	// ReceiptNumber is shared by every payment in the batch.
	ReceiptNumber string

	// Methods is the configured payment method list; the first entry is the
	// fallback for rows without a method.
	Methods []string

	// NewID generates payment ids. Defaults to random UUIDs.
	NewID func() string
}

// BatchResult is the outcome of validating a payment batch.
type BatchResult struct {
	OK        bool    `json:"ok"`
	Reason    string  `json:"reason,omitempty"`
	TotalPaid float64 `json:"totalPaid"`
	Remaining float64 `json:"remaining"`

	// Settled reports whether committing the batch pays the invoice off.
	Settled bool `json:"settled"`

	// Payments holds the records to commit. Empty unless OK.
	Payments []models.InvoicePayment `json:"payments,omitempty"`

	// Dropped counts rows excluded for a non-positive or unreadable amount.
	Dropped int `json:"dropped"`
}

// ValidateBatch checks a set of user-entered payment rows against the
// outstanding balance of an invoice.
//
// Rows whose amount does not parse to a positive number are dropped without
// error. The batch fails with a *ValidationError when the surviving rows sum
// to zero or less, or exceed balance by more than BalanceEpsilon. Committing
// the returned payments is the caller's job.
func ValidateBatch(balance float64, rows []PaymentRow, opts BatchOptions) (BatchResult, error) {
	type parsedRow struct {
		method string
		amount decimal.Decimal
	}

	// Parse amounts, dropping non-positive rows
	var kept []parsedRow
	sum := decimal.Zero
	for _, row := range rows {
		amount, err := money.Parse(row.Amount)
		if err != nil || !amount.IsPositive() {
			continue
		}
		kept = append(kept, parsedRow{method: row.Method, amount: amount})
		sum = sum.Add(amount)
	}

	// Compare in cents so float drift in balance cannot move the boundary
	owed := decimal.NewFromFloat(balance).Round(2)
	result := BatchResult{
		TotalPaid: sum.InexactFloat64(),
		Remaining: remaining(owed, sum),
		Dropped:   len(rows) - len(kept),
	}

	if !sum.IsPositive() {
		return reject(result, ErrZeroOrNegativeTotal, owed)
	}
	if sum.GreaterThan(owed.Add(decimal.NewFromFloat(BalanceEpsilon))) {
		return reject(result, ErrExceedsBalance, owed)
	}

	// Build the records to commit
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	receipt := NormalizeReceiptNumber(opts.ReceiptNumber)
	fallback := DefaultPaymentMethod
	if len(opts.Methods) > 0 {
		fallback = opts.Methods[0]
	}

	result.Payments = make([]models.InvoicePayment, 0, len(kept))
	for _, row := range kept {
		method := strings.TrimSpace(row.method)
		if method == "" {
			method = fallback
		}
		result.Payments = append(result.Payments, models.InvoicePayment{
			ID:            newID(),
			Amount:        row.amount.InexactFloat64(),
			Method:        method,
			Date:          opts.Now,
			ReceiptNumber: receipt,
		})
	}

	result.OK = true
	result.Settled = result.Remaining <= BalanceEpsilon
	return result, nil
}

// Validate is ValidateBatch for callers that only want the structured
// result: a rejected batch comes back with OK false and Reason set.
func Validate(balance float64, rows []PaymentRow, opts BatchOptions) BatchResult {
	result, _ := ValidateBatch(balance, rows, opts)
	return result
}

// NormalizeReceiptNumber trims the receipt number and maps empty to NoReceipt.
func NormalizeReceiptNumber(receipt string) string {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return NoReceipt
	}
	return receipt
}

func reject(result BatchResult, reason error, owed decimal.Decimal) (BatchResult, error) {
	result.OK = false
	result.Reason = reason.Error()
	return result, &ValidationError{Err: reason, TotalPaid: result.TotalPaid, Balance: owed.InexactFloat64()}
}

func remaining(owed, paid decimal.Decimal) float64 {
	if r := owed.Sub(paid); r.IsPositive() {
		return r.InexactFloat64()
	}
	return 0
}
