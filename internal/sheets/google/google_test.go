package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"viveka/internal/core"

	goption "google.golang.org/api/option"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	old, had := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")
	defer func() {
		if had {
			os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", old)
		}
	}()

	_, err := New(context.Background(), Options{SpreadsheetID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "abc", CredentialsFile: "/nonexistent/creds.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestWriteLoans_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Loans"}
	if err := c.WriteLoans(context.Background(), nil); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestLoanRows(t *testing.T) {
	loans := []core.Loan{
		{LoanNo: "HDFC-1", Lender: "HDFC", Type: core.LoanTypeEMI, Status: core.StatusActive, Principal: 120000, InterestRate: 12, TotalMonths: 12, MonthsPaid: 4, EMI: 10662, ExtraPaid: 1000},
		{LoanNo: "GOLD-2", Lender: "Muthoot", Type: core.LoanTypeEMI, Status: core.StatusActive, Principal: 100000, InterestRate: 9.5, TotalMonths: 24, MonthsPaid: 6, EMI: 1000, InterestOnly: true},
		{LoanNo: "OLD-3", Lender: "SBI", Type: core.LoanTypeEMI, Status: core.StatusActive, Archived: true, Principal: 1, TotalMonths: 1, EMI: 1},
	}
	rows := LoanRows(loans)

	if len(rows) != 4 {
		t.Fatalf("expected header, 2 loans and total, got %d rows", len(rows))
	}
	if rows[0][0] != "Loan No" || len(rows[0]) != 12 {
		t.Fatalf("unexpected header %v", rows[0])
	}
	first := rows[1]
	if first[0] != "HDFC-1" || first[2] != "12.00" || first[7] != "4/12" || first[11] != int64(84296) {
		t.Fatalf("unexpected loan row %v", first)
	}
	total := rows[3]
	if total[0] != "TOTAL" || total[3] != int64(220000) || total[6] != int64(11662) || total[8] != 26 || total[9] != int64(1000) || total[11] != int64(202296) {
		t.Fatalf("unexpected total row %v", total)
	}
	if lastColumn() != "L" {
		t.Fatalf("unexpected last column %s", lastColumn())
	}
}

// fakeSheets records clear and update calls made against the Sheets REST API.
type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	written [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear "+path)
		fmt.Fprint(w, `{"spreadsheetId":"sheet-1"}`)
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update "+path+" "+r.URL.Query().Get("valueInputOption"))
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.written = body.Values
		fmt.Fprint(w, `{"spreadsheetId":"sheet-1"}`)
	default:
		http.NotFound(w, r)
	}
}

func TestWriteLoans_ClearsThenWrites(t *testing.T) {
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		SheetName:     "Loans",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
			goption.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	loans := []core.Loan{{LoanNo: "A-1", Lender: "x", Type: core.LoanTypeEMI, Status: core.StatusActive, Principal: 1000, TotalMonths: 10, EMI: 110}}
	if err := c.WriteLoans(context.Background(), loans); err != nil {
		t.Fatalf("write loans: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.calls) != 2 {
		t.Fatalf("expected clear and update, got %v", fake.calls)
	}
	if !strings.HasPrefix(fake.calls[0], "clear ") || !strings.Contains(fake.calls[0], "Loans!A:L") {
		t.Fatalf("unexpected first call %q", fake.calls[0])
	}
	if !strings.HasPrefix(fake.calls[1], "update ") || !strings.HasSuffix(fake.calls[1], " RAW") {
		t.Fatalf("unexpected second call %q", fake.calls[1])
	}
	if len(fake.written) != 3 || fmt.Sprint(fake.written[1][0]) != "A-1" || fmt.Sprint(fake.written[2][0]) != "TOTAL" {
		t.Fatalf("unexpected written rows %v", fake.written)
	}
}

func TestWriteLoans_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
			goption.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = c.WriteLoans(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "clear Loans!A:L") {
		t.Fatalf("expected clear error, got %v", err)
	}
}
