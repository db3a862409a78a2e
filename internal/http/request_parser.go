// Package http provides HTTP server and handler implementations.
//
// This file turns submitted forms into service inputs. Every form keeps the
// raw strings the member typed so a rejected submission can be rendered back
// unchanged next to its field errors.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"panini/internal/core"
	"panini/internal/services"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// UTC month of now as the default. An out of range month falls back to it.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	var params MonthParams
	params.Year, params.Month = services.CurrentMonth(now)

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}
	return params
}

// Prev returns the month before p.
func (p MonthParams) Prev() MonthParams {
	if p.Month == 1 {
		return MonthParams{Year: p.Year - 1, Month: 12}
	}
	return MonthParams{Year: p.Year, Month: p.Month - 1}
}

// Next returns the month after p.
func (p MonthParams) Next() MonthParams {
	if p.Month == 12 {
		return MonthParams{Year: p.Year + 1, Month: 1}
	}
	return MonthParams{Year: p.Year, Month: p.Month + 1}
}

// formReader reads sanitized values from a parsed form.
type formReader struct {
	values url.Values
}

// newFormReader parses the request body. Query parameters are ignored.
func newFormReader(r *http.Request) (formReader, error) {
	if err := r.ParseForm(); err != nil {
		return formReader{}, err
	}
	return formReader{values: r.PostForm}, nil
}

// Get returns the sanitized value of key.
func (f formReader) Get(key string) string {
	return sanitizeInput(f.values.Get(key))
}

// Bool accepts the values browsers and HTMX send for a checked box.
func (f formReader) Bool(key string) bool {
	switch strings.ToLower(f.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// sanitizeInput removes control characters except tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func parseFormInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

type transactionForm struct {
	ID           string
	Description  string
	Amount       string
	Date         string
	UserID       string
	CategoryID   string
	Kind         string
	Installments string
	Paid         string
	Notes        string
	AddAnother   bool
}

func parseTransactionForm(f formReader) transactionForm {
	return transactionForm{
		Description:  f.Get("description"),
		Amount:       f.Get("amount"),
		Date:         f.Get("date"),
		UserID:       f.Get("userId"),
		CategoryID:   f.Get("categoryId"),
		Kind:         f.Get("type"),
		Installments: f.Get("installments"),
		Paid:         f.Get("paid"),
		Notes:        f.Get("notes"),
		AddAnother:   f.Bool("createAndAddAnother"),
	}
}

// newTransactionForm is the blank form: today, the signed in member, shared.
func newTransactionForm(me core.User, now time.Time) transactionForm {
	return transactionForm{
		Date:         now.Format(dateLayout),
		UserID:       me.ID,
		Kind:         string(core.KindShared),
		Installments: "1",
		Paid:         "0",
	}
}

func transactionFormFrom(t core.TransactionDetail) transactionForm {
	return transactionForm{
		ID:           t.ID,
		Description:  t.Description,
		Amount:       t.Amount.Input(),
		Date:         t.Date.String(),
		UserID:       t.UserID,
		CategoryID:   t.CategoryID,
		Kind:         string(t.Kind()),
		Installments: strconv.Itoa(t.Installments),
		Paid:         strconv.Itoa(t.Paid),
		Notes:        t.Notes,
	}
}

// input converts the form. errs holds the fields that could not be parsed
// followed by whatever else the transaction is missing.
func (tf transactionForm) input() (services.TransactionInput, core.ValidationErrors) {
	errs := core.ValidationErrors{}
	in := services.TransactionInput{
		Description: tf.Description,
		UserID:      tf.UserID,
		CategoryID:  tf.CategoryID,
		Kind:        core.TransactionKind(tf.Kind),
		Notes:       tf.Notes,
	}

	amount, err := core.ParseAmount(tf.Amount)
	if err != nil {
		errs.Add("amount", err)
	}
	in.Amount = amount

	if d, err := time.Parse(dateLayout, tf.Date); err != nil {
		errs.Add("date", core.ErrMissingDate)
	} else {
		in.Date = core.DateOf(d)
	}

	if in.Installments, err = parseFormInt(tf.Installments, 1); err != nil || in.Installments < 1 {
		errs.Add("installments", core.ErrInvalidPlan)
	}
	if in.Paid, err = parseFormInt(tf.Paid, 0); err != nil || in.Paid < 0 {
		errs.Add("paid", core.ErrInvalidPlan)
	}
	errs.Merge(in.Validate())
	return in, errs
}

type paymentForm struct {
	ID          string
	Description string
	Amount      string
	SenderID    string
	ReceiverID  string
	Panini      bool
	Notes       string
}

func parsePaymentForm(f formReader) paymentForm {
	return paymentForm{
		Description: f.Get("description"),
		Amount:      f.Get("amount"),
		SenderID:    f.Get("senderId"),
		ReceiverID:  f.Get("receiverId"),
		Panini:      f.Bool("panini"),
		Notes:       f.Get("notes"),
	}
}

func paymentFormFrom(p core.PaymentDetail) paymentForm {
	return paymentForm{
		ID:          p.ID,
		Description: p.Description,
		Amount:      p.Amount.Input(),
		SenderID:    p.SenderID,
		ReceiverID:  p.ReceiverID,
		Panini:      p.Panini,
		Notes:       p.Notes,
	}
}

func (pf paymentForm) input() (services.PaymentInput, core.ValidationErrors) {
	errs := core.ValidationErrors{}
	amount, err := core.ParseAmount(pf.Amount)
	if err != nil {
		errs.Add("amount", err)
	}
	in := services.PaymentInput{
		Description: pf.Description,
		Amount:      amount,
		SenderID:    pf.SenderID,
		ReceiverID:  pf.ReceiverID,
		Panini:      pf.Panini,
		Notes:       pf.Notes,
	}
	errs.Merge(in.Validate())
	return in, errs
}

func parseCategoryForm(f formReader) core.Category {
	return core.Category{
		Name:  f.Get("name"),
		Color: f.Get("color"),
		Icon:  f.Get("icon"),
	}
}

func parseUserForm(f formReader) core.User {
	return core.User{
		Email: f.Get("email"),
		Name:  f.Get("name"),
	}
}

type reminderForm struct {
	ID          string
	Title       string
	Description string
	Date        string
	AllDay      bool
	Color       string
	Repeat      string
}

func parseReminderForm(f formReader) reminderForm {
	return reminderForm{
		Title:       f.Get("title"),
		Description: f.Get("description"),
		Date:        f.Get("date"),
		AllDay:      f.Bool("allDay"),
		Color:       f.Get("color"),
		Repeat:      f.Get("repeat"),
	}
}

func reminderFormFrom(r core.Reminder) reminderForm {
	layout := dateTimeLayout
	if r.AllDay {
		layout = dateLayout
	}
	return reminderForm{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date.UTC().Format(layout),
		AllDay:      r.AllDay,
		Color:       r.Color,
		Repeat:      string(r.Repeat),
	}
}

// reminder accepts a plain date or a datetime-local value.
func (rf reminderForm) reminder() (core.Reminder, core.ValidationErrors) {
	errs := core.ValidationErrors{}
	r := core.Reminder{
		ID:          rf.ID,
		Title:       rf.Title,
		Description: rf.Description,
		AllDay:      rf.AllDay,
		Color:       rf.Color,
	}

	repeat, err := core.ParseRepeat(rf.Repeat)
	if err != nil {
		errs.Add("repeat", err)
	}
	r.Repeat = repeat

	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if d, err := time.Parse(layout, rf.Date); err == nil {
			r.Date = d
			break
		}
	}
	if r.Date.IsZero() {
		errs.Add("date", core.ErrMissingDate)
	}
	errs.Merge(r.Validate())
	return r, errs
}
