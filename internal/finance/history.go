package finance

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"oficina/internal/money"
	"oficina/pkg/models"
)

// HistoryRow is one payment of an invoice with the running totals after it.
type HistoryRow struct {
	Seq           int       `json:"seq"`
	Date          time.Time `json:"date"`
	Method        string    `json:"method"`
	ReceiptNumber string    `json:"receiptNumber"`
	Amount        float64   `json:"amount"`
	PaidToDate    float64   `json:"paidToDate"`
	Remaining     float64   `json:"remaining"`
}

// HistoryHeader names the columns of HistoryRow.Record.
var HistoryHeader = []string{"#", "Data", "Forma", "Recibo", "Valor", "Pago Acumulado", "Saldo"}

// Record returns the row as a flat export row.
func (r HistoryRow) Record() []string {
	return []string{
		strconv.Itoa(r.Seq),
		r.Date.Format("02/01/2006 15:04"),
		r.Method,
		r.ReceiptNumber,
		money.FormatPlain(r.Amount),
		money.FormatPlain(r.PaidToDate),
		money.FormatPlain(r.Remaining),
	}
}

// PaymentHistory lists the payments of inv in entry order with the running
// amount paid and the balance left after each one.
func PaymentHistory(inv models.Invoice) []HistoryRow {
	rows := make([]HistoryRow, 0, len(inv.Payments))
	total := decimal.NewFromFloat(inv.Total)
	paid := decimal.Zero
	for i, p := range inv.Payments {
		paid = paid.Add(decimal.NewFromFloat(p.Amount))
		rows = append(rows, HistoryRow{
			Seq:           i + 1,
			Date:          p.Date,
			Method:        p.Method,
			ReceiptNumber: p.ReceiptNumber,
			Amount:        p.Amount,
			PaidToDate:    paid.InexactFloat64(),
			Remaining:     remaining(total, paid),
		})
	}
	return rows
}
