package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Uncategorized is the bucket name for expenses without a category.
const Uncategorized = "Uncategorized"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is a single income or expense record as exchanged with
	// the backend. ID is server-assigned and immutable; direction is
	// carried by Type, never by the sign of Amount.
	Transaction struct {
		ID       int64           `json:"id,omitempty"`
		Title    string          `json:"title"`
		Amount   Money           `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category,omitempty"`
		Date     Date            `json:"date"`
	}

	// Summary is server-computed and read-only; Balance is trusted as-is.
	Summary struct {
		TotalIncome  Money `json:"totalIncome"`
		TotalExpense Money `json:"totalExpense"`
		Balance      Money `json:"balance"`
	}

	// Profile is the remote user record. Password is write-only: it is
	// sent on updates when non-empty and never comes back from the server.
	Profile struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Position  string `json:"position"`
		Address   string `json:"address,omitempty"`
		Password  string `json:"password,omitempty"`
	}

	// Session is the client-held credential set. All four fields are
	// present together or the session counts as absent.
	Session struct {
		Token     string
		UserID    string
		UserEmail string
		UserName  string
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrMissingDate   = errors.New("missing date")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (tx Transaction) Validate() error {
	if len(strings.TrimSpace(tx.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(tx.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if tx.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Complete reports whether every required session field is set. A session
// missing any field is treated as logged out.
func (s Session) Complete() bool {
	return strings.TrimSpace(s.Token) != "" &&
		s.UserID != "" &&
		s.UserEmail != "" &&
		s.UserName != ""
}
