package finance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"oficina/internal/money"
	"oficina/pkg/models"
)

// Window limits which invoices count toward a client's stats.
type Window string

const (
	WindowAll         Window = "all"
	WindowLast6Months Window = "last-6-months"
	WindowLast30Days  Window = "last-30-days"
)

// ParseWindow accepts the window names; empty means WindowAll.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowAll, nil
	case WindowAll, WindowLast6Months, WindowLast30Days:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
}

// Cutoff returns the earliest issue date that still counts.
func (w Window) Cutoff(now time.Time) time.Time {
	switch w {
	case WindowLast6Months:
		return now.AddDate(0, -6, 0)
	case WindowLast30Days:
		return now.AddDate(0, 0, -30)
	default:
		return time.Unix(0, 0).UTC()
	}
}

// SortKey orders the ranking.
type SortKey string

const (
	SortByTotalSpent SortKey = "totalSpent"
	SortByVisitCount SortKey = "visitCount"
	SortByLastVisit  SortKey = "lastVisitDate"
)

// ParseSortKey accepts the sort key names; empty means SortByTotalSpent.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortByTotalSpent, nil
	case SortByTotalSpent, SortByVisitCount, SortByLastVisit:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

// LoyaltyQuery parameterizes RankClients.
type LoyaltyQuery struct {
	Window Window
	SortBy SortKey
	Now    time.Time

	// Search keeps only clients whose name, phone or email contains it,
	// ignoring case and accents.
	Search string

	// Limit caps the result length when > 0.
	Limit int
}

// ClientStat is one row of the loyalty ranking.
type ClientStat struct {
	ClientID   string     `json:"clientId"`
	Name       string     `json:"name"`
	TotalSpent float64    `json:"totalSpent"`
	VisitCount int        `json:"visitCount"`
	LastVisit  *time.Time `json:"lastVisit,omitempty"`
}

// LoyaltyHeader names the columns of ClientStat.Record.
var LoyaltyHeader = []string{"Cliente", "Total Gasto", "Visitas", "Última Visita"}

// Record returns the stat as a flat export row.
func (s ClientStat) Record() []string {
	last := ""
	if s.LastVisit != nil {
		last = s.LastVisit.Format("02/01/2006")
	}
	return []string{s.Name, money.FormatPlain(s.TotalSpent), strconv.Itoa(s.VisitCount), last}
}

// RankClients computes spend, visit count and last visit per client over the
// invoices issued inside the query window, and ranks them. Clients without a
// qualifying invoice are left out. TotalSpent is the gross invoiced amount,
// not what was collected.
func RankClients(clients []models.Client, invoices []models.Invoice, q LoyaltyQuery) []ClientStat {
	cutoff := q.Window.Cutoff(q.Now)

	// Group qualifying invoices by client
	type agg struct {
		spent  float64
		visits int
		last   time.Time
	}
	byClient := make(map[string]*agg)
	for _, inv := range invoices {
		if inv.IssueDate.Before(cutoff) {
			continue
		}
		a, ok := byClient[inv.ClientID]
		if !ok {
			a = &agg{}
			byClient[inv.ClientID] = a
		}
		a.spent += inv.Total
		a.visits++
		if inv.IssueDate.After(a.last) {
			a.last = inv.IssueDate
		}
	}

	needle := foldText(q.Search)
	var stats []ClientStat
	for _, c := range clients {
		a, ok := byClient[c.ID]
		if !ok || a.visits == 0 {
			continue
		}
		if needle != "" && !matchesClient(c, needle) {
			continue
		}
		last := a.last
		stats = append(stats, ClientStat{
			ClientID:   c.ID,
			Name:       c.Name,
			TotalSpent: a.spent,
			VisitCount: a.visits,
			LastVisit:  &last,
		})
	}

	sort.SliceStable(stats, lessFor(q.SortBy, stats))

	if q.Limit > 0 && len(stats) > q.Limit {
		stats = stats[:q.Limit]
	}
	return stats
}

func lessFor(key SortKey, stats []ClientStat) func(i, j int) bool {
	switch key {
	case SortByVisitCount:
		return func(i, j int) bool {
			if stats[i].VisitCount != stats[j].VisitCount {
				return stats[i].VisitCount > stats[j].VisitCount
			}
			return stats[i].TotalSpent > stats[j].TotalSpent
		}
	case SortByLastVisit:
		return func(i, j int) bool {
			a, b := stats[i].LastVisit, stats[j].LastVisit
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.After(*b)
			}
		}
	default:
		return func(i, j int) bool {
			return stats[i].TotalSpent > stats[j].TotalSpent
		}
	}
}

func matchesClient(c models.Client, needle string) bool {
	for _, field := range []string{c.Name, c.Phone, c.Email} {
		if strings.Contains(foldText(field), needle) {
			return true
		}
	}
	return false
}

// foldText lowercases s and strips diacritics ("João" -> "joao").
func foldText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
