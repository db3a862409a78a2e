package google

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"panini/internal/core"
	ports "panini/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "test-id"})
	if err == nil || !strings.Contains(err.Error(), "missing credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_InvalidOAuthClient(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "test-id",
		OAuthClientJSON: "invalid-json",
	})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}
	if err := SaveToken(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Fatalf("unexpected token %+v", got)
	}
	if _, err := LoadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

func TestClient_RejectsInvalidRows(t *testing.T) {
	c := &Client{spreadsheetID: "test", transactionsSheet: "Transactions", paymentsSheet: "Payments", now: time.Now}

	_, err := c.AppendTransaction(context.Background(), core.TransactionDetail{})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	valid := core.PaymentDetail{Payment: core.Payment{
		Description: "renta", Amount: core.Cents(100), SenderID: "a", ReceiverID: "b",
	}}
	_, err = c.AppendPayment(context.Background(), valid)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected uninitialized service error, got %v", err)
	}
}

func TestTransactionRow(t *testing.T) {
	recorded := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	tx := core.TransactionDetail{
		Transaction: core.Transaction{
			ID: "t1", Description: "tele", Amount: core.Cents(123456),
			Date: core.NewDate(2025, 3, 1), Panini: true, Installments: 12, Paid: 2, Notes: "cuotas",
		},
		UserName:     "Ana",
		CategoryName: "Otros",
	}

	row := transactionRow(tx, recorded)
	want := []any{"2025-03-04 05:06:07", "t1", "2025-03-01", "tele", "1234.56", "Ana", "Otros", "casa", 12, 2, "cuotas"}
	if len(row) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d: expected %v, got %v", i, want[i], row[i])
		}
	}
}

func TestPaymentRow(t *testing.T) {
	recorded := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	p := core.PaymentDetail{
		Payment: core.Payment{
			ID: "p1", Description: "aporte", Amount: core.Cents(5),
			SenderID: "a", ReceiverID: "a", Panini: true,
			CreatedAt: time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC),
		},
		SenderName:   "Ana",
		ReceiverName: "Ana",
	}
	row := paymentRow(p, recorded)
	if row[2] != "2025-02-28" || row[4] != "0.05" || row[7] != "true" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestDeletionRow(t *testing.T) {
	row := deletionRow("t1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if row[1] != "t1" || row[3] != "DELETED" {
		t.Fatalf("unexpected row %v", row)
	}
	if ports.EntityPayment == ports.EntityTransaction {
		t.Fatal("entity names must differ")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2025, "2025 Transactions"},
		{"2024 Payments", 2025, "2024 Payments"},
		{"  Payments ", 2026, "2026 Payments"},
		{"", 2025, ""},
		{"12345", 2025, "2025 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
