package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/session"
	sheetsmem "fintrack/internal/sheets/memory"
)

// backendRecorder fakes the remote REST API and counts every request by
// method and path.
type backendRecorder struct {
	*httptest.Server
	mu    sync.Mutex
	calls map[string]int

	unauthorized bool
	txs          []core.Transaction
}

func (b *backendRecorder) record(r *http.Request) {
	b.mu.Lock()
	b.calls[r.Method+" "+r.URL.Path]++
	b.mu.Unlock()
}

func (b *backendRecorder) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *backendRecorder) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func newBackend(t *testing.T) *backendRecorder {
	t.Helper()
	b := &backendRecorder{
		calls: make(map[string]int),
		txs: []core.Transaction{
			{ID: 1, Title: "Salary", Amount: core.Money{Cents: 500000}, Type: core.Income, Category: "Job", Date: core.NewDate(2024, 3, 1)},
			{ID: 2, Title: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense, Category: "Housing", Date: core.NewDate(2024, 3, 2)},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		var body struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-test", "userId": 42,
			"firstName": "Test", "lastName": "User",
		})
	})
	mux.HandleFunc("/transactions/summary", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if b.unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(core.Summary{
			TotalIncome:  core.Money{Cents: 500000},
			TotalExpense: core.Money{Cents: 120000},
			Balance:      core.Money{Cents: 380000},
		})
	})
	mux.HandleFunc("/transactions/export", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
		w.Write([]byte("date,title,amount\n"))
	})
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if b.unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(b.txs)
		case http.MethodPost:
			var tx core.Transaction
			json.NewDecoder(r.Body).Decode(&tx)
			tx.ID = 99
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(tx)
		}
	})
	mux.HandleFunc("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		switch r.Method {
		case http.MethodPut:
			var tx core.Transaction
			json.NewDecoder(r.Body).Decode(&tx)
			json.NewEncoder(w).Encode(tx)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		json.NewEncoder(w).Encode(core.Profile{
			FirstName: "Test", LastName: "User", Email: "test@e.x", Phone: "123",
		})
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

type testEnv struct {
	srv     *Server
	backend *backendRecorder
	store   session.Store
	sheets  *sheetsmem.Appender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newBackend(t)
	store := session.NewMemoryStore()
	appender := sheetsmem.New()

	client := api.New(backend.URL, store, nil)
	srv := NewServer(":0", Deps{
		Client:         client,
		Store:          store,
		Appender:       appender,
		CurrencySymbol: "₹",
	})
	t.Cleanup(func() { srv.rateLimiter.stop() })

	return &testEnv{srv: srv, backend: backend, store: store, sheets: appender}
}

func (e *testEnv) loginAs(t *testing.T) {
	t.Helper()
	err := e.store.Save(context.Background(), core.Session{
		Token: "tok-test", UserID: "42", UserEmail: "test@e.x", UserName: "Test User",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func (e *testEnv) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := e.do(http.MethodGet, path, nil, false)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/", nil, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}

	// htmx requests navigate via HX-Redirect instead.
	rr = e.do(http.MethodGet, "/views/dashboard", nil, true)
	if rr.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("HX-Redirect = %q", rr.Header().Get("HX-Redirect"))
	}
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/login", url.Values{
		"email": {"test@e.x"}, "password": {"secret"},
	}, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if !session.IsAuthenticated(context.Background(), e.store) {
		t.Fatal("session not persisted after login")
	}

	rr = e.do(http.MethodGet, "/", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Test User") {
		t.Error("index missing user name")
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/login", url.Values{
		"email": {"test@e.x"}, "password": {"wrong"},
	}, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid credentials") {
		t.Error("login page missing backend error message")
	}
	if session.IsAuthenticated(context.Background(), e.store) {
		t.Error("failed login must not persist a session")
	}
}

func TestDashboardView(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodGet, "/views/dashboard", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"₹5000.00", "₹1200.00", "₹3800.00", "Salary", "Housing"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestUnknownViewFallsBackToDashboard(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodGet, "/views/settings", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Overview") {
		t.Error("unknown view did not render the dashboard")
	}
}

func TestTransactionsViewForwardsFilter(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodGet, "/views/transactions?type=EXPENSE&startDate=2024-01-01", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if e.backend.count("GET /transactions") != 1 {
		t.Fatalf("list calls = %d", e.backend.count("GET /transactions"))
	}
	// Filter echoed back into the form.
	if !strings.Contains(rr.Body.String(), `value="2024-01-01"`) {
		t.Error("filter not echoed")
	}
}

func TestCreateTransaction(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodPost, "/transactions", url.Values{
		"type": {"INCOME"}, "title": {"Bonus"}, "amount": {"150.00"}, "date": {"2024-03-05"},
	}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if e.backend.count("POST /transactions") != 1 {
		t.Fatalf("create calls = %d", e.backend.count("POST /transactions"))
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "transaction:created") || !strings.Contains(trigger, "show-notification") {
		t.Errorf("triggers = %q", trigger)
	}
}

func TestCreateTransactionInvalidNeverHitsBackend(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	before := e.backend.total()
	rr := e.do(http.MethodPost, "/transactions", url.Values{
		"type": {"EXPENSE"}, "title": {"  "}, "amount": {"-5"}, "date": {""},
	}, true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if e.backend.total() != before {
		t.Fatal("invalid form reached the backend")
	}
}

func TestConfirmDeleteMakesNoBackendCalls(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	before := e.backend.total()
	rr := e.do(http.MethodGet, "/transactions/delete/confirm?id=2&title=Rent", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Rent") {
		t.Error("confirm dialog missing title")
	}
	if e.backend.total() != before {
		t.Fatal("confirmation modal must not call the backend")
	}

	// Only the explicit confirm POST performs the delete.
	rr = e.do(http.MethodPost, "/transactions/delete", url.Values{"id": {"2"}}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if e.backend.count("DELETE /transactions/2") != 1 {
		t.Fatalf("delete calls = %d", e.backend.count("DELETE /transactions/2"))
	}
}

func TestEditDialogPreservesType(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodGet, "/transactions/edit?id=2", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `name="type" value="EXPENSE"`) {
		t.Error("edit dialog must carry the original type as hidden state")
	}
	if !strings.Contains(body, `value="Rent"`) || !strings.Contains(body, `value="1200"`) {
		t.Errorf("edit dialog not prefilled: %s", body)
	}

	rr = e.do(http.MethodPost, "/transactions/edit", url.Values{
		"id": {"2"}, "type": {"EXPENSE"}, "title": {"Rent March"},
		"amount": {"1250"}, "date": {"2024-03-02"},
	}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d", rr.Code)
	}
	if e.backend.count("PUT /transactions/2") != 1 {
		t.Fatalf("update calls = %d", e.backend.count("PUT /transactions/2"))
	}
}

func TestEditDialogInvalidShowsFieldErrors(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	before := e.backend.total()
	rr := e.do(http.MethodPost, "/transactions/edit", url.Values{
		"id": {"2"}, "type": {"EXPENSE"}, "title": {"Rent"},
		"amount": {"abc"}, "date": {"2024-03-02"},
	}, true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "field-error") {
		t.Error("re-rendered dialog must show the field error inline")
	}
	if !strings.Contains(body, `value="abc"`) {
		t.Error("invalid input must be echoed back for correction")
	}
	if e.backend.total() != before {
		t.Fatal("invalid edit reached the backend")
	}
}

func TestExpiredSessionRedirectsOnce(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)
	e.backend.unauthorized = true

	rr := e.do(http.MethodGet, "/views/dashboard", nil, true)
	if got := rr.Header().Get("HX-Redirect"); got != "/login?expired=1" {
		t.Fatalf("HX-Redirect = %q", got)
	}
	if session.IsAuthenticated(context.Background(), e.store) {
		t.Fatal("session must be cleared after expiry")
	}
}

func TestExportDownload(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodGet, "/transactions/export", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	cd := rr.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "transactions.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rr.Body.String() != "date,title,amount\n" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestExportToSheets(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	rr := e.do(http.MethodPost, "/transactions/export/sheets", url.Values{}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := len(e.sheets.Rows()); got != 2 {
		t.Fatalf("appended rows = %d", got)
	}
}

func TestProfileUpdateMismatchNeverHitsBackend(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	before := e.backend.total()
	rr := e.do(http.MethodPost, "/profile", url.Values{
		"firstName": {"Test"}, "lastName": {"User"}, "email": {"test@e.x"},
		"password": {"one"}, "confirmPassword": {"two"},
	}, true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if e.backend.total() != before {
		t.Fatal("mismatched passwords must not reach the backend")
	}

	rr = e.do(http.MethodPost, "/profile", url.Values{
		"firstName": {"Test"}, "lastName": {"User"}, "email": {"test@e.x"},
	}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid update status = %d", rr.Code)
	}
	if e.backend.count("PUT /users/42") != 1 {
		t.Fatalf("update calls = %d", e.backend.count("PUT /users/42"))
	}
}

func TestLogoutClearsSessionOnly(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t)

	before := e.backend.total()
	rr := e.do(http.MethodPost, "/logout", nil, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	if e.backend.total() != before {
		t.Error("logout must be client-side only")
	}
	if session.IsAuthenticated(context.Background(), e.store) {
		t.Error("session survived logout")
	}
}
