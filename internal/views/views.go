// Package views resolves navigation keys to declarative view models. It
// performs no rendering itself; the HTTP layer feeds the models into
// templates.
package views

import (
	"context"

	"fintrack/internal/core"
)

// Key identifies one of the application's pages.
type Key string

const (
	KeyDashboard    Key = "dashboard"
	KeyIncome       Key = "income"
	KeyExpense      Key = "expense"
	KeyTransactions Key = "transactions"
	KeyProfile      Key = "profile"
	KeyContact      Key = "contact"
)

// NavOrder is the keys in sidebar order.
var NavOrder = []Key{KeyDashboard, KeyIncome, KeyExpense, KeyTransactions, KeyProfile, KeyContact}

// ParseKey maps a raw navigation value to a Key. Anything outside the
// known set falls back to the dashboard rather than erroring.
func ParseKey(raw string) Key {
	switch Key(raw) {
	case KeyIncome, KeyExpense, KeyTransactions, KeyProfile, KeyContact:
		return Key(raw)
	default:
		return KeyDashboard
	}
}

// Title is the human label shown in navigation and page headers.
func (k Key) Title() string {
	switch k {
	case KeyIncome:
		return "Add Income"
	case KeyExpense:
		return "Add Expense"
	case KeyTransactions:
		return "Transactions"
	case KeyProfile:
		return "Profile"
	case KeyContact:
		return "Contact"
	default:
		return "Dashboard"
	}
}

// Backend is the read surface the builders need. *api.Client satisfies it.
type Backend interface {
	Summary(ctx context.Context) (core.Summary, error)
	Transactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	User(ctx context.Context, id string) (core.Profile, error)
}

// Page pairs a view model with the key it belongs to, so templates can
// mark the active navigation entry.
type Page struct {
	Active Key
	Title  string
	Data   any
}

// Router builds the Page for a navigation key.
type Router struct {
	backend Backend
	symbol  string
}

func NewRouter(b Backend, currencySymbol string) *Router {
	return &Router{backend: b, symbol: currencySymbol}
}

// Render resolves raw to a key and builds its view model. sess is the
// authenticated session of the viewer; the caller guarantees it is
// complete before routing.
func (r *Router) Render(ctx context.Context, raw string, sess core.Session) (Page, error) {
	key := ParseKey(raw)
	page := Page{Active: key, Title: key.Title()}

	var err error
	switch key {
	case KeyIncome:
		page.Data = NewTransactionFormView(core.Income)
	case KeyExpense:
		page.Data = NewTransactionFormView(core.Expense)
	case KeyTransactions:
		page.Data, err = BuildTransactions(ctx, r.backend, core.Filter{}, r.symbol)
	case KeyProfile:
		page.Data, err = BuildProfile(ctx, r.backend, sess)
	case KeyContact:
		page.Data = ContactView{}
	default:
		page.Data, err = BuildDashboard(ctx, r.backend, r.symbol)
	}
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

// ContactView is static content.
type ContactView struct{}
