package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description:  "super",
		Amount:       Cents(1000),
		Date:         NewDate(2025, 1, 1),
		UserID:       "u1",
		CategoryID:   "c1",
		Installments: 1,
	}
	if errs := good.Validate(); len(errs) != 0 {
		t.Fatalf("expected ok, got %v", errs)
	}

	cases := []struct {
		name  string
		mut   func(*Transaction)
		field string
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, "description"},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, "description"},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, "amount"},
		{"missing date", func(tx *Transaction) { tx.Date = Date{} }, "date"},
		{"missing user", func(tx *Transaction) { tx.UserID = "" }, "userId"},
		{"missing category", func(tx *Transaction) { tx.CategoryID = "" }, "categoryId"},
		{"zero installments", func(tx *Transaction) { tx.Installments = 0 }, "installments"},
		{"overpaid plan", func(tx *Transaction) { tx.Installments = 3; tx.Paid = 4 }, "installments"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			errs := tx.Validate()
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	p := Payment{Description: "renta", Amount: Cents(100), SenderID: "a"}
	errs := p.Validate()
	if errs["receiverId"] == "" {
		t.Fatalf("expected receiver error, got %v", errs)
	}

	p.Panini = true
	if errs := p.Validate(); len(errs) != 0 {
		t.Fatalf("panini payment needs no receiver, got %v", errs)
	}

	empty := Payment{}.Validate()
	for _, f := range []string{"description", "amount", "senderId", "receiverId"} {
		if _, ok := empty[f]; !ok {
			t.Fatalf("expected error on %q, got %v", f, empty)
		}
	}
}

func TestReminderValidate(t *testing.T) {
	r := Reminder{Title: "gas", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Repeat: RepeatMonthly}
	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("expected ok, got %v", errs)
	}
	r.Repeat = "hourly"
	if errs := r.Validate(); errs["repeat"] == "" {
		t.Fatalf("expected repeat error, got %v", errs)
	}
}

func TestUserValidate(t *testing.T) {
	if errs := (User{Email: "ana@example.com"}).Validate(); len(errs) != 0 {
		t.Fatalf("expected ok, got %v", errs)
	}
	if errs := (User{Email: "nope"}).Validate(); errs["email"] == "" {
		t.Fatalf("expected email error")
	}
}

func TestValidationErrorsErr(t *testing.T) {
	if err := (ValidationErrors{}).Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	errs := ValidationErrors{}
	errs.Add("amount", ErrInvalidAmount)
	errs.Add("amount", ErrEmptyDescription)
	var target ValidationErrors
	if !errors.As(errs.Err(), &target) {
		t.Fatalf("expected ValidationErrors")
	}
	if target["amount"] != ErrInvalidAmount.Error() {
		t.Fatalf("first message should win, got %q", target["amount"])
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in               string
		panini, personal bool
	}{
		{"shared", false, false},
		{"casa", true, false},
		{"personal", false, true},
		{"", false, false},
	}
	for _, tc := range cases {
		p, pe := ParseKind(tc.in)
		if p != tc.panini || pe != tc.personal {
			t.Fatalf("%q: got panini=%v personal=%v", tc.in, p, pe)
		}
	}
}

func TestTransactionPlan(t *testing.T) {
	tx := Transaction{Amount: Cents(400), Installments: 4, Paid: 0}
	if !tx.OpenPlan() {
		t.Fatalf("expected open plan")
	}
	if got := tx.MonthlyInstallment(); got.Cents != 100 {
		t.Fatalf("expected 100, got %d", got.Cents)
	}
	tx.Paid = 4
	if tx.OpenPlan() {
		t.Fatalf("fully paid plan must be closed")
	}
	if (Transaction{Installments: 1}).IsInstallmentPlan() {
		t.Fatalf("single installment is not a plan")
	}
}
