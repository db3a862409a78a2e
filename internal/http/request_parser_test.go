package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"panini/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		query url.Values
		want  MonthParams
	}{
		{"defaults", url.Values{}, MonthParams{2024, 6}},
		{"explicit", url.Values{"year": {"2023"}, "month": {"2"}}, MonthParams{2023, 2}},
		{"month out of range", url.Values{"month": {"13"}}, MonthParams{2024, 6}},
		{"garbage", url.Values{"year": {"abc"}, "month": {"x"}}, MonthParams{2024, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMonthParams(tt.query, now); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMonthParamsNavigation(t *testing.T) {
	if got := (MonthParams{2024, 1}).Prev(); got != (MonthParams{2023, 12}) {
		t.Errorf("Prev = %+v", got)
	}
	if got := (MonthParams{2024, 12}).Next(); got != (MonthParams{2025, 1}) {
		t.Errorf("Next = %+v", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  hello  ":       "hello",
		"a\x00b\x07c":     "abc",
		"line1\nline2":    "line1\nline2",
		"tab\there":       "tab\there",
		"\x1b[31mred\x1b": "[31mred",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func postForm(t *testing.T, values url.Values) formReader {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f, err := newFormReader(r)
	if err != nil {
		t.Fatalf("newFormReader: %v", err)
	}
	return f
}

func TestTransactionFormInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := postForm(t, url.Values{
			"description":         {" Groceries "},
			"amount":              {"$1,234.50"},
			"date":                {"2024-06-01"},
			"userId":              {"ana"},
			"categoryId":          {"food"},
			"type":                {"casa"},
			"installments":        {"3"},
			"paid":                {"1"},
			"createAndAddAnother": {"on"},
		})
		form := parseTransactionForm(f)
		if !form.AddAnother {
			t.Error("expected AddAnother")
		}
		in, errs := form.input()
		if len(errs) != 0 {
			t.Fatalf("unexpected errors %v", errs)
		}
		if in.Amount.Cents != 123450 || in.Kind != core.KindPanini || in.Installments != 3 || in.Paid != 1 {
			t.Errorf("unexpected input %+v", in)
		}
		if in.Description != "Groceries" || in.Date.String() != "2024-06-01" {
			t.Errorf("unexpected input %+v", in)
		}
	})

	t.Run("invalid fields are reported", func(t *testing.T) {
		form := parseTransactionForm(postForm(t, url.Values{
			"amount":       {"abc"},
			"date":         {"01/06/2024"},
			"installments": {"0"},
		}))
		_, errs := form.input()
		for _, field := range []string{"amount", "date", "installments", "description", "userId", "categoryId"} {
			if _, ok := errs[field]; !ok {
				t.Errorf("expected error for %s, got %v", field, errs)
			}
		}
	})

	t.Run("round trip of stored transaction", func(t *testing.T) {
		stored := core.TransactionDetail{Transaction: core.Transaction{
			ID: "t1", Description: "TV", Amount: core.Cents(30000),
			Date: core.NewDate(2024, 5, 4), UserID: "ana", CategoryID: "home",
			Personal: true, Installments: 6, Paid: 2,
		}}
		form := transactionFormFrom(stored)
		if form.Amount != "300.00" || form.Kind != "personal" || form.Installments != "6" {
			t.Errorf("unexpected form %+v", form)
		}
		in, errs := form.input()
		if len(errs) != 0 || in.Amount != stored.Amount || in.Paid != 2 {
			t.Errorf("round trip lost data: %+v %v", in, errs)
		}
	})
}

func TestPaymentFormInput(t *testing.T) {
	form := parsePaymentForm(postForm(t, url.Values{
		"description": {"Rent share"},
		"amount":      {"50"},
		"senderId":    {"ana"},
		"receiverId":  {"beto"},
		"panini":      {"true"},
	}))
	in, errs := form.input()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if !in.Panini || in.Amount.Cents != 5000 || in.ReceiverID != "beto" {
		t.Errorf("unexpected input %+v", in)
	}

	_, errs = parsePaymentForm(postForm(t, url.Values{"amount": {"-3"}})).input()
	for _, field := range []string{"amount", "description", "senderId", "receiverId"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}
	if errs["amount"] != core.ErrInvalidAmount.Error() {
		t.Errorf("expected the parse message for amount, got %q", errs["amount"])
	}
}

func TestReminderFormParsing(t *testing.T) {
	tests := []struct {
		name     string
		values   url.Values
		wantErrs []string
		wantDate time.Time
	}{
		{
			name:     "all day",
			values:   url.Values{"title": {"Rent"}, "date": {"2024-07-01"}, "allDay": {"on"}, "repeat": {"monthly"}},
			wantDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "with time",
			values:   url.Values{"title": {"Dentist"}, "date": {"2024-07-01T09:30"}},
			wantDate: time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			name:     "bad repeat and date",
			values:   url.Values{"title": {"x"}, "date": {"tomorrow"}, "repeat": {"hourly"}},
			wantErrs: []string{"date", "repeat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, errs := parseReminderForm(postForm(t, tt.values)).reminder()
			for _, f := range tt.wantErrs {
				if _, ok := errs[f]; !ok {
					t.Errorf("expected error on %s, got %v", f, errs)
				}
			}
			if len(tt.wantErrs) == 0 {
				if len(errs) != 0 {
					t.Fatalf("unexpected errors %v", errs)
				}
				if !r.Date.Equal(tt.wantDate) {
					t.Errorf("date = %v, want %v", r.Date, tt.wantDate)
				}
			}
		})
	}
}

func TestReminderFormFrom(t *testing.T) {
	r := core.Reminder{ID: "r1", Title: "Birthday", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), AllDay: true, Repeat: core.RepeatYearly}
	form := reminderFormFrom(r)
	if form.Date != "2024-03-02" || form.Repeat != "yearly" {
		t.Errorf("unexpected form %+v", form)
	}

	r.AllDay = false
	r.Date = time.Date(2024, 3, 2, 18, 5, 0, 0, time.UTC)
	if form := reminderFormFrom(r); form.Date != "2024-03-02T18:05" {
		t.Errorf("unexpected datetime %q", form.Date)
	}
}
