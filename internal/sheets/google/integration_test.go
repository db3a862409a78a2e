//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"panini/internal/core"
	ports "panini/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func integrationConfig(t *testing.T) Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:      os.Getenv("GOOGLE_SPREADSHEET_ID"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		OAuthClientFile:    os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
		OAuthTokenFile:     os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"),
	}
	if cfg.SpreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if cfg.ServiceAccountJSON == "" && cfg.ServiceAccountFile == "" && cfg.OAuthClientFile == "" {
		t.Skip("credentials not configured, skipping integration test")
	}
	return cfg
}

func TestIntegration_LedgerMirror(t *testing.T) {
	cfg := integrationConfig(t)
	ctx := context.Background()
	client, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	now := time.Now()
	tx := core.TransactionDetail{
		Transaction: core.Transaction{
			ID: "integration-" + now.Format("150405"), Description: "Integration Test Transaction",
			Amount: core.Cents(1234), Date: core.DateOf(now), UserID: "u", CategoryID: "c", Installments: 1,
		},
		UserName:     "Integration",
		CategoryName: "Otros",
	}
	ref, err := client.AppendTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("Failed to append transaction: %v", err)
	}
	t.Logf("Appended transaction at %s", ref)

	p := core.PaymentDetail{Payment: core.Payment{
		ID: tx.ID, Description: "Integration Test Payment", Amount: core.Cents(100),
		SenderID: "u", ReceiverID: "v", CreatedAt: now,
	}}
	if _, err := client.AppendPayment(ctx, p); err != nil {
		t.Fatalf("Failed to append payment: %v", err)
	}

	if _, err := client.AppendDeletion(ctx, ports.EntityTransaction, tx.ID, now); err != nil {
		t.Fatalf("Failed to append deletion: %v", err)
	}
}

func TestIntegration_InvalidSpreadsheet(t *testing.T) {
	cfg := integrationConfig(t)
	cfg.SpreadsheetID = "invalid-spreadsheet-id"

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Logf("client creation failed early: %v", err)
		return
	}
	_, err = client.AppendDeletion(context.Background(), ports.EntityPayment, "x", time.Now())
	if err == nil {
		t.Error("expected error for invalid spreadsheet id")
	}
}
