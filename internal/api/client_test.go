package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

// countingStore wraps a memory store and counts Clear calls.
type countingStore struct {
	session.Store
	mu     sync.Mutex
	clears int
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.clears++
	s.mu.Unlock()
	return s.Store.Clear(ctx)
}

func authedStore(t *testing.T) *countingStore {
	t.Helper()
	st := &countingStore{Store: session.NewMemoryStore()}
	err := st.Save(context.Background(), core.Session{
		Token: "tok-1", UserID: "42", UserEmail: "u@e.x", UserName: "U E",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return st
}

func TestRequestCarriesTokenHeader(t *testing.T) {
	var gotToken, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(AuthHeader)
		gotContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(core.Summary{})
	}))
	defer srv.Close()

	c := New(srv.URL, authedStore(t), nil)
	if _, err := c.Summary(context.Background()); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if gotToken != "tok-1" {
		t.Fatalf("token header = %q, want tok-1", gotToken)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %q", gotContentType)
	}
}

func TestAuthFailureClearsSessionOnce(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		st := authedStore(t)
		c := New(srv.URL, st, nil)
		_, err := c.Summary(context.Background())
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("status %d: err = %v, want ErrSessionExpired", status, err)
		}
		if st.clears != 1 {
			t.Fatalf("status %d: store cleared %d times, want exactly 1", status, st.clears)
		}
		if session.IsAuthenticated(context.Background(), st) {
			t.Fatalf("status %d: session should be gone", status)
		}
		srv.Close()
	}
}

func TestMissingSessionBehavesLikeExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the backend without a session")
	}))
	defer srv.Close()

	c := New(srv.URL, &countingStore{Store: session.NewMemoryStore()}, nil)
	_, err := c.Summary(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestAPIErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMsg     string
	}{
		{"json message field", 422, "application/json", `{"message":"Amount must be positive"}`, "Amount must be positive"},
		{"json error field", 400, "application/json", `{"error":"bad category"}`, "bad category"},
		{"plain text", 500, "text/plain", "boom", "boom"},
		{"empty body", 502, "text/plain", "", "request failed with status 502"},
		{"unparseable json", 400, "application/json", `{broken`, `{broken`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			st := authedStore(t)
			c := New(srv.URL, st, nil)
			_, err := c.Summary(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMsg {
				t.Fatalf("got status=%d msg=%q, want status=%d msg=%q",
					apiErr.Status, apiErr.Message, tt.status, tt.wantMsg)
			}
			if st.clears != 0 {
				t.Fatal("non-auth failures must not clear the session")
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	st := authedStore(t)
	c := New(srv.URL, st, nil)
	_, err := c.Summary(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if st.clears != 0 {
		t.Fatal("network failures must not clear the session")
	}
}

func TestLoginPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(AuthHeader) != "" {
			t.Error("login must not carry a token")
		}
		json.NewEncoder(w).Encode(loginResponse{
			Token: "fresh", UserID: 9, FirstName: "Grace", LastName: "Hopper",
		})
	}))
	defer srv.Close()

	st := session.NewMemoryStore()
	c := New(srv.URL, st, nil)
	sess, err := c.Login(context.Background(), "grace@navy.mil", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := core.Session{Token: "fresh", UserID: "9", UserEmail: "grace@navy.mil", UserName: "Grace Hopper"}
	if sess != want {
		t.Fatalf("session = %+v, want %+v", sess, want)
	}
	stored, err := st.Current(context.Background())
	if err != nil || stored != want {
		t.Fatalf("stored session = %+v (%v)", stored, err)
	}
}

func TestCreateTransactionSendsOnePost(t *testing.T) {
	var posts int
	var gotBody core.Transaction
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/transactions" {
			posts++
			json.NewDecoder(r.Body).Decode(&gotBody)
			gotBody.ID = 11
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(gotBody)
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	c := New(srv.URL, authedStore(t), nil)
	created, err := c.CreateTransaction(context.Background(), core.Transaction{
		Title:    "Freelance Pay",
		Amount:   core.Money{Cents: 50000},
		Type:     core.Income,
		Category: "Freelance",
		Date:     core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if posts != 1 {
		t.Fatalf("POST count = %d, want exactly 1", posts)
	}
	if gotBody.Type != core.Income || gotBody.Amount.Cents != 50000 {
		t.Fatalf("posted body = %+v", gotBody)
	}
	if created.ID != 11 {
		t.Fatalf("created id = %d", created.ID)
	}
}

func TestCreateTransactionValidatesBeforeNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid transaction must never reach the network")
	}))
	defer srv.Close()

	c := New(srv.URL, authedStore(t), nil)
	_, err := c.CreateTransaction(context.Background(), core.Transaction{Type: core.Income})
	if !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}
}

func TestUpdateTransactionUsesPathID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/transactions/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["id"]; ok {
			t.Error("body must not carry an id, the path does")
		}
		json.NewEncoder(w).Encode(core.Transaction{ID: 7})
	}))
	defer srv.Close()

	c := New(srv.URL, authedStore(t), nil)
	_, err := c.UpdateTransaction(context.Background(), 7, core.Transaction{
		ID:     999, // must be dropped
		Title:  "Rent",
		Amount: core.Money{Cents: 120000},
		Type:   core.Expense,
		Date:   core.NewDate(2024, 2, 1),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
}

func TestTransactionsFilterQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]core.Transaction{})
	}))
	defer srv.Close()

	c := New(srv.URL, authedStore(t), nil)
	f := core.Filter{Type: "EXPENSE", StartDate: "2024-01-01"}
	if _, err := c.Transactions(context.Background(), f); err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if gotQuery != "type=EXPENSE&startDate=2024-01-01" {
		t.Fatalf("query = %q", gotQuery)
	}

	if _, err := c.Transactions(context.Background(), core.Filter{}); err != nil {
		t.Fatalf("Transactions unfiltered: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("unfiltered query = %q, want empty", gotQuery)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		want        string
	}{
		{"from content disposition", `attachment; filename="march-report.csv"`, "march-report.csv"},
		{"missing header", "", DefaultExportName},
		{"malformed header", "!!!", DefaultExportName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/transactions/export" {
					t.Errorf("path = %s", r.URL.Path)
				}
				if r.URL.RawQuery != "" {
					t.Errorf("export with no filters must send an empty query, got %q", r.URL.RawQuery)
				}
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "text/csv")
				w.Write([]byte("date,title,amount\n"))
			}))
			defer srv.Close()

			c := New(srv.URL, authedStore(t), nil)
			dl, err := c.Export(context.Background(), core.Filter{})
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if dl.Filename != tt.want {
				t.Fatalf("filename = %q, want %q", dl.Filename, tt.want)
			}
			if string(dl.Data) != "date,title,amount\n" {
				t.Fatalf("data = %q", dl.Data)
			}
		})
	}
}

func TestUpdateUserRefreshesDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/42" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var p core.Profile
		json.NewDecoder(r.Body).Decode(&p)
		p.Password = ""
		json.NewEncoder(w).Encode(p)
	}))
	defer srv.Close()

	st := authedStore(t)
	c := New(srv.URL, st, nil)
	_, err := c.UpdateUser(context.Background(), "42", core.Profile{
		FirstName: "New", LastName: "Name", Email: "new@e.x", Phone: "1234567890", Position: "Dev",
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	sess, err := st.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if sess.UserName != "New Name" || sess.UserEmail != "new@e.x" {
		t.Fatalf("session after update = %+v", sess)
	}
}

func TestDeleteTransaction(t *testing.T) {
	var deletes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/transactions/7" {
			deletes++
			w.WriteHeader(http.StatusNoContent)
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	c := New(srv.URL, authedStore(t), nil)
	if err := c.DeleteTransaction(context.Background(), 7); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if deletes != 1 {
		t.Fatalf("DELETE count = %d", deletes)
	}
}
