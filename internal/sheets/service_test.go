package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"oficina/internal/finance"
	"oficina/internal/report"
)

// fakeSheets answers the handful of Sheets API calls Export makes.
type fakeSheets struct {
	mu          sync.Mutex
	calls       []string
	hasSheet    bool
	hasHeader   bool
	appended    [][]interface{}
	headerWrite [][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr.Values...)
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		_, _ = io.WriteString(w, `{"replies": [{"addSheet": {"properties": {"sheetId": 7, "title": "Livro"}}}]}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		f.headerWrite = vr.Values
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		if f.hasHeader {
			_, _ = io.WriteString(w, `{"values": [["Data"]]}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodGet:
		if f.hasSheet {
			_, _ = io.WriteString(w, `{"spreadsheetId": "abc", "sheets": [{"properties": {"sheetId": 3, "title": "Livro"}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"spreadsheetId": "abc", "sheets": []}`)
	default:
		http.Error(w, "unexpected call", http.StatusNotFound)
	}
}

func newFakeService(t *testing.T, fake *fakeSheets) *Service {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := newService(context.Background(), "abc",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc
}

func sampleLedger() report.Ledger {
	return report.Ledger{
		Entries: []finance.LedgerEntry{
			{Date: time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC), Type: finance.TypeInvoicePayment, Description: "Fatura #1001", Amount: 600, Kind: finance.KindCredit},
			{Date: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), Type: finance.TypeExpense, Description: "Aluguel", Amount: 2000, Kind: finance.KindDebit},
		},
	}
}

func TestExportCreatesSheetWithHeader(t *testing.T) {
	fake := &fakeSheets{}
	svc := newFakeService(t, fake)

	err := svc.Export(context.Background(), LedgerTable("Livro", sampleLedger()))
	require.NoError(t, err)

	require.Len(t, fake.headerWrite, 1)
	assert.Equal(t, []interface{}{"Data", "Tipo", "Descrição", "Valor", "Natureza"}, fake.headerWrite[0])

	require.Len(t, fake.appended, 2)
	assert.Equal(t, []interface{}{"12/03/2025 18:00", "Pagamento de Fatura", "Fatura #1001", "600,00", "credit"}, fake.appended[0])

	var batchUpdates int
	for _, c := range fake.calls {
		if strings.HasSuffix(c, ":batchUpdate") {
			batchUpdates++
		}
	}
	assert.Equal(t, 2, batchUpdates, "one to add the sheet, one to format the header")
}

func TestExportToExistingSheet(t *testing.T) {
	fake := &fakeSheets{hasSheet: true, hasHeader: true}
	svc := newFakeService(t, fake)

	require.NoError(t, svc.Export(context.Background(), LedgerTable("Livro", sampleLedger())))

	assert.Nil(t, fake.headerWrite)
	assert.Len(t, fake.appended, 2)
	for _, c := range fake.calls {
		assert.NotContains(t, c, ":batchUpdate")
	}
}

func TestExportEmptyTableSkipsAppend(t *testing.T) {
	fake := &fakeSheets{hasSheet: true, hasHeader: true}
	svc := newFakeService(t, fake)

	require.NoError(t, svc.Export(context.Background(), MonthlyTable("Mensal", report.Monthly{})))
	for _, c := range fake.calls {
		assert.NotContains(t, c, ":append")
	}
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = extractSpreadsheetID("https://example.com/nothing")
	assert.Error(t, err)
}

func TestRanges(t *testing.T) {
	assert.Equal(t, "A", columnLetter(1))
	assert.Equal(t, "E", columnLetter(5))
	assert.Equal(t, "Z", columnLetter(26))
	assert.Equal(t, "AA", columnLetter(27))
	assert.Equal(t, "'Livro Caixa'!A1:E1", headerRange("Livro Caixa", 5))
	assert.Equal(t, "'D''Ávila'!A:D", columnRange("D'Ávila", 4))
}

func TestReadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("GOOGLE_CREDENTIALS", "")

	creds, err := readCredentials(`{"type": "service_account"}`)
	require.NoError(t, err)
	assert.Contains(t, string(creds), "service_account")

	_, err = readCredentials("")
	assert.Error(t, err)

	t.Setenv("GOOGLE_CREDENTIALS", `{"type": "service_account"}`)
	creds, err = readCredentials("")
	require.NoError(t, err)
	assert.NotEmpty(t, creds)
}

func TestTables(t *testing.T) {
	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	lt := LoyaltyTable("Fidelidade", []finance.ClientStat{{Name: "João", TotalSpent: 1234.5, VisitCount: 3, LastVisit: &last}})
	assert.Equal(t, finance.LoyaltyHeader, lt.Header)
	assert.Equal(t, [][]string{{"João", "1.234,50", "3", "01/03/2025"}}, lt.Rows)

	ht := HistoryTable("Fatura 1001", report.History{Rows: []finance.HistoryRow{{Seq: 1, Amount: 10, Remaining: 5}}})
	require.Len(t, ht.Rows, 1)
	assert.Equal(t, "1", ht.Rows[0][0])
}
