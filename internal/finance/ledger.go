package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oficina/internal/money"
	"oficina/pkg/models"
)

// EntryKind tells whether a ledger entry brings money in, takes it out, or is informational.
type EntryKind string

const (
	KindCredit EntryKind = "credit"
	KindDebit  EntryKind = "debit"
	KindInfo   EntryKind = "info"
)

// Entry types, one per source record kind
const (
	TypeInvoicePayment = "Pagamento de Fatura"
	TypeExtraReceipt   = "Receita Extra"
	TypeExpense        = "Despesa"
	TypePurchase       = "Compra"
	TypeSalaryAdvance  = "Adiantamento Salarial"
	TypeOccurrence     = "Ocorrência"
)

// Placeholders for references that cannot be resolved
const (
	UnknownClient   = "Cliente desconhecido"
	UnknownEmployee = "Funcionário desconhecido"
	UnknownSupplier = "Fornecedor desconhecido"
)

// LedgerEntry is one normalized, dated record of the activity report.
type LedgerEntry struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Kind        EntryKind `json:"kind"`
	SourceID    string    `json:"sourceId"`
}

// LedgerHeader names the columns of LedgerEntry.Record.
var LedgerHeader = []string{"Data", "Tipo", "Descrição", "Valor", "Natureza"}

// Record returns the entry as a flat export row.
func (e LedgerEntry) Record() []string {
	return []string{
		e.Date.Format("02/01/2006 15:04"),
		e.Type,
		e.Description,
		money.FormatPlain(e.Amount),
		string(e.Kind),
	}
}

// LedgerQuery selects the date range of the activity report.
type LedgerQuery struct {
	Start time.Time
	End   time.Time
}

// EndInclusive returns the last instant of End's calendar day.
func (q LedgerQuery) EndInclusive() time.Time {
	y, m, d := q.End.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), q.End.Location())
}

// Contains reports whether t lies within [Start, EndInclusive].
func (q LedgerQuery) Contains(t time.Time) bool {
	return !t.Before(q.Start) && !t.After(q.EndInclusive())
}

// Validate rejects ranges that start after they end.
func (q LedgerQuery) Validate() error {
	if q.Start.After(q.EndInclusive()) {
		return ErrInvalidRange
	}
	return nil
}

// LedgerSources are the record collections merged into the ledger. Clients,
// Employees and Suppliers are only used to resolve names.
type LedgerSources struct {
	Invoices       []models.Invoice
	ExtraReceipts  []models.ExtraReceipt
	Expenses       []models.Expense
	Purchases      []models.Purchase
	SalaryAdvances []models.SalaryAdvance
	Occurrences    []models.Occurrence

	Clients   []models.Client
	Employees []models.Employee
	Suppliers []models.Supplier
}

// SourcesFromDataset picks the ledger sources out of a dataset.
func SourcesFromDataset(ds *models.Dataset) LedgerSources {
	return LedgerSources{
		Invoices:       ds.Invoices,
		ExtraReceipts:  ds.ExtraReceipts,
		Expenses:       ds.Expenses,
		Purchases:      ds.Purchases,
		SalaryAdvances: ds.SalaryAdvances,
		Occurrences:    ds.Occurrences,
		Clients:        ds.Clients,
		Employees:      ds.Employees,
		Suppliers:      ds.Suppliers,
	}
}

// BuildLedger merges every source record dated within the query range into a
// single list, newest first. Invoices contribute one entry per payment.
// Entries with the same date keep their source order.
func BuildLedger(q LedgerQuery, src LedgerSources) []LedgerEntry {
	names := newNameIndex(src)
	var entries []LedgerEntry

	for _, inv := range src.Invoices {
		for _, p := range inv.Payments {
			if !q.Contains(p.Date) {
				continue
			}
			entries = append(entries, LedgerEntry{
				Date:        p.Date,
				Type:        TypeInvoicePayment,
				Description: describePayment(inv, p, names),
				Amount:      p.Amount,
				Kind:        KindCredit,
				SourceID:    p.ID,
			})
		}
	}

	for _, r := range src.ExtraReceipts {
		if !q.Contains(r.Date) {
			continue
		}
		entries = append(entries, LedgerEntry{
			Date:        r.Date,
			Type:        TypeExtraReceipt,
			Description: orDefault(r.Description, "Receita extra"),
			Amount:      r.Amount,
			Kind:        KindCredit,
			SourceID:    r.ID,
		})
	}

	for _, e := range src.Expenses {
		if !q.Contains(e.Date) {
			continue
		}
		desc := orDefault(e.Description, orDefault(e.Category, "Despesa"))
		if e.SupplierID != "" {
			desc += " - " + names.supplier(e.SupplierID)
		}
		entries = append(entries, LedgerEntry{
			Date:        e.Date,
			Type:        TypeExpense,
			Description: desc,
			Amount:      e.Amount,
			Kind:        KindDebit,
			SourceID:    e.ID,
		})
	}

	for _, p := range src.Purchases {
		if !q.Contains(p.Date) {
			continue
		}
		desc := "Compra - " + names.supplier(p.SupplierID)
		if p.Description != "" {
			desc += ": " + p.Description
		}
		entries = append(entries, LedgerEntry{
			Date:        p.Date,
			Type:        TypePurchase,
			Description: desc,
			Amount:      p.Amount,
			Kind:        KindDebit,
			SourceID:    p.ID,
		})
	}

	for _, a := range src.SalaryAdvances {
		if !q.Contains(a.Date) {
			continue
		}
		entries = append(entries, LedgerEntry{
			Date:        a.Date,
			Type:        TypeSalaryAdvance,
			Description: "Adiantamento - " + names.employee(a.EmployeeID),
			Amount:      a.Amount,
			Kind:        KindDebit,
			SourceID:    a.ID,
		})
	}

	for _, o := range src.Occurrences {
		if !q.Contains(o.CreatedAt) {
			continue
		}
		desc := orDefault(o.Title, "Ocorrência")
		if o.VehiclePlate != "" {
			desc += " (" + o.VehiclePlate + ")"
		}
		entries = append(entries, LedgerEntry{
			Date:        o.CreatedAt,
			Type:        TypeOccurrence,
			Description: desc,
			Amount:      0,
			Kind:        KindInfo,
			SourceID:    o.ID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

// LedgerTotals sums credits and debits of a ledger. Info entries are counted
// but never summed.
type LedgerTotals struct {
	Count   int     `json:"count"`
	Credits float64 `json:"credits"`
	Debits  float64 `json:"debits"`
	Net     float64 `json:"net"`
}

// SummarizeLedger totals the given entries.
func SummarizeLedger(entries []LedgerEntry) LedgerTotals {
	credits, debits := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Kind {
		case KindCredit:
			credits = credits.Add(decimal.NewFromFloat(e.Amount))
		case KindDebit:
			debits = debits.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return LedgerTotals{
		Count:   len(entries),
		Credits: credits.InexactFloat64(),
		Debits:  debits.InexactFloat64(),
		Net:     credits.Sub(debits).InexactFloat64(),
	}
}

func describePayment(inv models.Invoice, p models.InvoicePayment, names nameIndex) string {
	var b strings.Builder
	b.WriteString("Fatura #")
	b.WriteString(orDefault(inv.Number, inv.ID))
	b.WriteString(" - ")
	b.WriteString(names.client(inv.ClientID))
	if p.Method != "" {
		b.WriteString(" (" + p.Method + ")")
	}
	return b.String()
}

// nameIndex resolves foreign keys to display names, degrading to placeholders.
type nameIndex struct {
	clients   map[string]string
	employees map[string]string
	suppliers map[string]string
}

func newNameIndex(src LedgerSources) nameIndex {
	idx := nameIndex{
		clients:   make(map[string]string, len(src.Clients)),
		employees: make(map[string]string, len(src.Employees)),
		suppliers: make(map[string]string, len(src.Suppliers)),
	}
	for _, c := range src.Clients {
		idx.clients[c.ID] = c.Name
	}
	for _, e := range src.Employees {
		idx.employees[e.ID] = e.Name
	}
	for _, s := range src.Suppliers {
		idx.suppliers[s.ID] = s.Name
	}
	return idx
}

func (n nameIndex) client(id string) string   { return lookup(n.clients, id, UnknownClient) }
func (n nameIndex) employee(id string) string { return lookup(n.employees, id, UnknownEmployee) }
func (n nameIndex) supplier(id string) string { return lookup(n.suppliers, id, UnknownSupplier) }

func lookup(m map[string]string, id, placeholder string) string {
	if name := strings.TrimSpace(m[id]); name != "" {
		return name
	}
	return placeholder
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
