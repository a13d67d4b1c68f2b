package web

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/views"
)

// shellData is the application shell model: navigation plus the viewer's
// identity for the header.
type shellData struct {
	Active   views.Key
	Nav      []views.Key
	UserName string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := sessionFrom(r.Context())
	s.render(w, r, "index.html", shellData{
		Active:   views.ParseKey(r.URL.Query().Get("view")),
		Nav:      views.NavOrder,
		UserName: sess.UserName,
	})
}

// handleView renders the partial for /views/{key}. The transactions view
// additionally honors filter query parameters.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/views/")
	key := views.ParseKey(raw)
	sess := sessionFrom(r.Context())

	if key == views.KeyTransactions {
		s.renderTransactionsView(w, r, filterFromQuery(r))
		return
	}

	page, err := s.router.Render(r.Context(), raw, sess)
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}
	s.render(w, r, templateFor(page.Active), page.Data)
}

// templateFor maps a view key to its partial template.
func templateFor(key views.Key) string {
	switch key {
	case views.KeyIncome, views.KeyExpense:
		return "transaction_form.html"
	case views.KeyTransactions:
		return "transactions.html"
	case views.KeyProfile:
		return "profile.html"
	case views.KeyContact:
		return "contact.html"
	default:
		return "dashboard.html"
	}
}

// filterFromQuery builds the transaction filter from query parameters.
// Values are passed through as-is; the backend validates them.
func filterFromQuery(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		Type:      strings.TrimSpace(q.Get("type")),
		Category:  strings.TrimSpace(q.Get("category")),
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
	}
}

func (s *Server) renderTransactionsView(w http.ResponseWriter, r *http.Request, f core.Filter) {
	view, err := views.BuildTransactions(r.Context(), s.client, f, s.symbol)
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}
	s.render(w, r, "transactions.html", view)
}
