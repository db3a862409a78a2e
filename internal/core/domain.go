package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	RepeatNever   Repeat = "never"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

const (
	KindShared   TransactionKind = "shared"
	KindPanini   TransactionKind = "casa"
	KindPersonal TransactionKind = "personal"
)

const maxDescriptionLen = 200

type (
	Repeat          string
	TransactionKind string

	Date struct {
		time.Time
	}

	User struct {
		ID    string
		Email string
		Name  string
	}

	Category struct {
		ID    string
		Name  string
		Color string
		Icon  string
	}

	Transaction struct {
		ID           string
		Description  string
		Amount       Money
		Date         Date
		UserID       string
		CategoryID   string
		Panini       bool // charged to the Panini sub-ledger
		Personal     bool // excluded from every shared sum
		Installments int
		Paid         int
		Notes        string
		CreatedAt    time.Time
	}

	// TransactionDetail is a transaction joined with its owner and category for listings.
	TransactionDetail struct {
		Transaction
		UserName      string
		CategoryName  string
		CategoryColor string
		CategoryIcon  string
	}

	Payment struct {
		ID          string
		Description string
		Amount      Money
		SenderID    string
		ReceiverID  string
		Panini      bool // contribution into the Panini sub-ledger, receiver == sender
		Notes       string
		CreatedAt   time.Time
	}

	PaymentDetail struct {
		Payment
		SenderName   string
		ReceiverName string
	}

	Reminder struct {
		ID          string
		Title       string
		Description string
		Date        time.Time
		AllDay      bool
		Color       string
		Repeat      Repeat
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInUse            = errors.New("still referenced by the ledger")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrMissingDate      = errors.New("missing date")
	ErrMissingUser      = errors.New("missing user")
	ErrMissingCategory  = errors.New("missing category")
	ErrMissingReceiver  = errors.New("missing receiver")
	ErrInvalidRepeat    = errors.New("invalid repeat frequency")
	ErrInvalidPlan      = errors.New("invalid installment plan")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// ParseRepeat accepts the repeat values of the reminder form. Empty means never.
func ParseRepeat(s string) (Repeat, error) {
	switch r := Repeat(strings.ToLower(strings.TrimSpace(s))); r {
	case RepeatNever, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return r, nil
	case "":
		return RepeatNever, nil
	default:
		return "", ErrInvalidRepeat
	}
}

// Recurring reports whether the reminder repeats at all.
func (r Repeat) Recurring() bool {
	return r != RepeatNever && r != ""
}

// ParseKind maps the transaction form "type" field onto the panini/personal flags.
func ParseKind(s string) (panini, personal bool) {
	switch TransactionKind(s) {
	case KindPanini:
		return true, false
	case KindPersonal:
		return false, true
	default:
		return false, false
	}
}

// Kind maps the panini and personal flags back to the form value.
func (t Transaction) Kind() TransactionKind {
	switch {
	case t.Personal:
		return KindPersonal
	case t.Panini:
		return KindPanini
	default:
		return KindShared
	}
}

// IsInstallmentPlan reports whether the cost is amortized over several cycles.
func (t Transaction) IsInstallmentPlan() bool {
	return t.Installments > 1
}

// OpenPlan reports whether the plan still has installments left to apply.
func (t Transaction) OpenPlan() bool {
	return t.IsInstallmentPlan() && t.Paid < t.Installments
}

// MonthlyInstallment is one cycle's share of the plan, truncated.
func (t Transaction) MonthlyInstallment() Money {
	if t.Installments < 1 {
		return Money{}
	}
	return t.Amount.Div(int64(t.Installments))
}

// Validate reports missing or invalid fields keyed by form field name.
func (t Transaction) Validate() ValidationErrors {
	errs := ValidationErrors{}
	validateDescription(errs, t.Description)
	if err := t.Amount.Validate(); err != nil {
		errs.Add("amount", err)
	}
	if t.Date.IsZero() {
		errs.Add("date", ErrMissingDate)
	}
	if strings.TrimSpace(t.UserID) == "" {
		errs.Add("userId", ErrMissingUser)
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		errs.Add("categoryId", ErrMissingCategory)
	}
	if t.Installments < 1 || t.Paid < 0 || t.Paid > t.Installments {
		errs.Add("installments", ErrInvalidPlan)
	}
	return errs
}

// Validate reports missing or invalid fields. Panini payments need no receiver.
func (p Payment) Validate() ValidationErrors {
	errs := ValidationErrors{}
	validateDescription(errs, p.Description)
	if err := p.Amount.Validate(); err != nil {
		errs.Add("amount", err)
	}
	if strings.TrimSpace(p.SenderID) == "" {
		errs.Add("senderId", ErrMissingUser)
	}
	if !p.Panini && strings.TrimSpace(p.ReceiverID) == "" {
		errs.Add("receiverId", ErrMissingReceiver)
	}
	return errs
}

// Validate requires a title and a date, and a known repeat frequency.
func (r Reminder) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(r.Title) == "" {
		errs.Add("title", ErrEmptyTitle)
	}
	if r.Date.IsZero() {
		errs.Add("date", ErrMissingDate)
	}
	if _, err := ParseRepeat(string(r.Repeat)); err != nil {
		errs.Add("repeat", err)
	}
	return errs
}

// Validate requires a name.
func (c Category) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs.Add("name", ErrEmptyName)
	}
	return errs
}

// Validate requires a well formed email address.
func (u User) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		errs.Add("email", ErrInvalidEmail)
	}
	return errs
}

func validateDescription(errs ValidationErrors, desc string) {
	switch {
	case strings.TrimSpace(desc) == "":
		errs.Add("description", ErrEmptyDescription)
	case len(desc) > maxDescriptionLen:
		errs.Add("description", ErrDescriptionLong)
	}
}
