package sheets

import (
	"oficina/internal/finance"
	"oficina/internal/report"
)

// Table is one report laid out for a worksheet.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// LedgerTable lays out the activity report.
func LedgerTable(name string, l report.Ledger) Table {
	t := Table{Name: name, Header: finance.LedgerHeader}
	for _, e := range l.Entries {
		t.Rows = append(t.Rows, e.Record())
	}
	return t
}

// MonthlyTable lays out the monthly statement, one row per month.
func MonthlyTable(name string, m report.Monthly) Table {
	t := Table{Name: name, Header: finance.MonthlyHeader}
	for _, b := range m.Buckets {
		t.Rows = append(t.Rows, b.Record())
	}
	return t
}

// LoyaltyTable lays out the client ranking.
func LoyaltyTable(name string, stats []finance.ClientStat) Table {
	t := Table{Name: name, Header: finance.LoyaltyHeader}
	for _, s := range stats {
		t.Rows = append(t.Rows, s.Record())
	}
	return t
}

// HistoryTable lays out the payments of one invoice.
func HistoryTable(name string, h report.History) Table {
	t := Table{Name: name, Header: finance.HistoryHeader}
	for _, r := range h.Rows {
		t.Rows = append(t.Rows, r.Record())
	}
	return t
}
