package views

import (
	"strings"
	"time"

	"fintrack/internal/core"
)

// TransactionForm holds the raw string values of the income/expense and
// edit forms, so invalid input can be echoed back untouched.
type TransactionForm struct {
	Title    string
	Amount   string
	Category string
	Date     string
}

// TransactionFormView is the add-income / add-expense page model.
type TransactionFormView struct {
	Type   core.TransactionType
	Values TransactionForm
	Errors map[string]string
}

// NewTransactionFormView returns an empty form defaulting the date to
// today.
func NewTransactionFormView(t core.TransactionType) TransactionFormView {
	return TransactionFormView{
		Type:   t,
		Values: TransactionForm{Date: time.Now().Format("2006-01-02")},
		Errors: map[string]string{},
	}
}

// Parse validates the form and builds the transaction to submit. A
// non-empty error map means nothing may be sent to the backend.
func (f TransactionForm) Parse(t core.TransactionType) (core.Transaction, map[string]string) {
	errs := map[string]string{}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		errs["title"] = "Title is required"
	}

	var amount core.Money
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(f.Amount))
	if err != nil {
		errs["amount"] = "Enter a valid amount of 0 or more"
	} else {
		amount = core.Money{Cents: cents}
	}

	var date core.Date
	if strings.TrimSpace(f.Date) == "" {
		errs["date"] = "Date is required"
	} else if date, err = core.ParseDate(strings.TrimSpace(f.Date)); err != nil {
		errs["date"] = "Enter a date as YYYY-MM-DD"
	}

	if len(errs) > 0 {
		return core.Transaction{}, errs
	}
	return core.Transaction{
		Title:    title,
		Amount:   amount,
		Type:     t,
		Category: strings.TrimSpace(f.Category),
		Date:     date,
	}, nil
}

// ProfileForm holds the raw profile form values. Password fields are
// optional; when either is set both must match.
type ProfileForm struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Position        string
	Address         string
	Password        string
	ConfirmPassword string
}

// Parse validates the profile form before any network call.
func (f ProfileForm) Parse() (core.Profile, map[string]string) {
	errs := map[string]string{}

	first := strings.TrimSpace(f.FirstName)
	last := strings.TrimSpace(f.LastName)
	email := strings.TrimSpace(f.Email)
	if first == "" {
		errs["firstName"] = "First name is required"
	}
	if last == "" {
		errs["lastName"] = "Last name is required"
	}
	if email == "" || !strings.Contains(email, "@") {
		errs["email"] = "Enter a valid email address"
	}
	if f.Password != f.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}

	if len(errs) > 0 {
		return core.Profile{}, errs
	}
	return core.Profile{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     strings.TrimSpace(f.Phone),
		Position:  strings.TrimSpace(f.Position),
		Address:   strings.TrimSpace(f.Address),
		Password:  f.Password,
	}, nil
}
