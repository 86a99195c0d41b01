package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"oficina/internal/money"
	"oficina/pkg/models"
)

var monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthKey identifies a calendar month. It sorts by Index, never by label.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// KeyOf returns the month t falls in, evaluated in loc (t's own location when nil).
func KeyOf(t time.Time, loc *time.Location) MonthKey {
	if loc != nil {
		t = t.In(loc)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Index is year*12 + zero-based month, a strictly increasing integer per month.
func (k MonthKey) Index() int {
	return k.Year*12 + int(k.Month) - 1
}

// Start returns the first instant of the month in loc (UTC when nil).
func (k MonthKey) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, loc)
}

// Label is the display label, e.g. "mar/2025".
func (k MonthKey) Label() string {
	return fmt.Sprintf("%s/%04d", monthAbbrev[k.Month-1], k.Year)
}

// String returns "YYYY-MM".
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// MonthlyBucket holds income and expenses of one calendar month.
type MonthlyBucket struct {
	Key      MonthKey  `json:"key"`
	Label    string    `json:"label"`
	Start    time.Time `json:"start"`
	Receitas float64   `json:"receitas"`
	Despesas float64   `json:"despesas"`
}

// Lucro is income minus expenses.
func (b MonthlyBucket) Lucro() float64 {
	return b.Receitas - b.Despesas
}

// Record returns the bucket as a flat export row.
func (b MonthlyBucket) Record() []string {
	return []string{
		b.Label,
		money.FormatPlain(b.Receitas),
		money.FormatPlain(b.Despesas),
		money.FormatPlain(b.Lucro()),
	}
}

// MonthlyHeader names the columns of MonthlyBucket.Record.
var MonthlyHeader = []string{"Mês", "Receitas", "Despesas", "Lucro"}

type bucketSums struct {
	receitas decimal.Decimal
	despesas decimal.Decimal
}

// AggregateMonthly buckets income and expenses by calendar month.
//
// Invoice payments count in the month of the payment date, not the invoice
// issue date. Extra receipts add to income and expenses to despesas, each by
// their own date. Months without any income or expense are omitted. The result
// is ordered chronologically. Sums are accumulated exactly, so the output does
// not depend on input order.
func AggregateMonthly(invoices []models.Invoice, expenses []models.Expense, receipts []models.ExtraReceipt, loc *time.Location) []MonthlyBucket {
	sums := make(map[MonthKey]*bucketSums)
	get := func(t time.Time) *bucketSums {
		key := KeyOf(t, loc)
		b, ok := sums[key]
		if !ok {
			b = &bucketSums{}
			sums[key] = b
		}
		return b
	}

	for _, inv := range invoices {
		for _, p := range inv.Payments {
			b := get(p.Date)
			b.receitas = b.receitas.Add(decimal.NewFromFloat(p.Amount))
		}
	}
	for _, r := range receipts {
		b := get(r.Date)
		b.receitas = b.receitas.Add(decimal.NewFromFloat(r.Amount))
	}
	for _, e := range expenses {
		b := get(e.Date)
		b.despesas = b.despesas.Add(decimal.NewFromFloat(e.Amount))
	}

	buckets := make([]MonthlyBucket, 0, len(sums))
	for key, s := range sums {
		if s.receitas.IsZero() && s.despesas.IsZero() {
			continue
		}
		buckets = append(buckets, MonthlyBucket{
			Key:      key,
			Label:    key.Label(),
			Start:    key.Start(loc),
			Receitas: s.receitas.InexactFloat64(),
			Despesas: s.despesas.InexactFloat64(),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key.Index() < buckets[j].Key.Index()
	})
	return buckets
}

// MonthlyTotals sums a sequence of buckets.
type MonthlyTotals struct {
	Months   int     `json:"months"`
	Receitas float64 `json:"receitas"`
	Despesas float64 `json:"despesas"`
	Lucro    float64 `json:"lucro"`
}

// SummarizeMonths totals the given buckets.
func SummarizeMonths(buckets []MonthlyBucket) MonthlyTotals {
	receitas, despesas := decimal.Zero, decimal.Zero
	for _, b := range buckets {
		receitas = receitas.Add(decimal.NewFromFloat(b.Receitas))
		despesas = despesas.Add(decimal.NewFromFloat(b.Despesas))
	}
	return MonthlyTotals{
		Months:   len(buckets),
		Receitas: receitas.InexactFloat64(),
		Despesas: despesas.InexactFloat64(),
		Lucro:    receitas.Sub(despesas).InexactFloat64(),
	}
}
