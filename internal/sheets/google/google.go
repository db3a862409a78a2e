package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"panini/internal/core"
	ports "panini/internal/sheets"
)

// Ensure interface conformance
var _ ports.LedgerMirror = (*Client)(nil)

// Config selects the spreadsheet and how to authenticate against it. A
// service account takes precedence over an OAuth client plus stored token.
type Config struct {
	SpreadsheetID string

	ServiceAccountJSON string
	ServiceAccountFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string

	// Base sheet names without year, e.g. "Transactions". The year of the
	// row is prefixed automatically.
	TransactionsSheet string
	PaymentsSheet     string
}

// Client appends ledger rows to a Google spreadsheet.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	paymentsSheet     string
	now               func() time.Time
}

// New creates a Sheets client for the ledger mirror.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: defaultName(cfg.TransactionsSheet, "Transactions"),
		paymentsSheet:     defaultName(cfg.PaymentsSheet, "Payments"),
		now:               time.Now,
	}, nil
}

func defaultName(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

// newSheetsService authenticates with a service account when one is
// configured and falls back to an OAuth token produced by oauth-init.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON, err := readSecret(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	if len(credentialsJSON) > 0 {
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsScope)
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	clientJSON, err := readSecret(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	if len(clientJSON) == 0 {
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_OAUTH_CLIENT_FILE)")
	}
	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	tok, err := LoadToken(defaultName(cfg.OAuthTokenFile, "token.json"))
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token",
		"scope", gsheet.SpreadsheetsScope)
	httpCtx := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(httpCtx, tok)))
}

func readSecret(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if path = strings.TrimSpace(path); path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// LoadToken reads an OAuth token written by oauth-init.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API
// with connection pooling, proper timeouts, and keep-alive settings
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// AppendTransaction writes t to the transactions sheet of its year.
func (c *Client) AppendTransaction(ctx context.Context, t core.TransactionDetail) (string, error) {
	if errs := t.Validate(); len(errs) > 0 {
		return "", fmt.Errorf("validation failed: %w", errs)
	}
	now := c.now()
	return c.append(ctx, yearPrefixedName(c.transactionsSheet, t.Date.Year()), transactionRow(t, now))
}

// AppendPayment writes p to the payments sheet of the year it was created.
func (c *Client) AppendPayment(ctx context.Context, p core.PaymentDetail) (string, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return "", fmt.Errorf("validation failed: %w", errs)
	}
	now := c.now()
	return c.append(ctx, yearPrefixedName(c.paymentsSheet, p.CreatedAt.Year()), paymentRow(p, now))
}

// AppendDeletion writes a tombstone into the sheet of the current year.
func (c *Client) AppendDeletion(ctx context.Context, entity, id string, at time.Time) (string, error) {
	base := c.transactionsSheet
	if entity == ports.EntityPayment {
		base = c.paymentsSheet
	}
	return c.append(ctx, yearPrefixedName(base, at.Year()), deletionRow(id, at))
}

func (c *Client) append(ctx context.Context, sheetName string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}
	if resp.Updates == nil {
		return sheetName, nil
	}
	return resp.Updates.UpdatedRange, nil
}

const recordedLayout = "2006-01-02 15:04:05"

// transactionRow columns:
// Recorded | ID | Date | Description | Amount | Member | Category | Kind | Installments | Paid | Notes
func transactionRow(t core.TransactionDetail, recorded time.Time) []any {
	return []any{
		recorded.UTC().Format(recordedLayout),
		t.ID,
		t.Date.String(),
		t.Description,
		amountCell(t.Amount),
		t.UserName,
		t.CategoryName,
		string(t.Kind()),
		t.Installments,
		t.Paid,
		t.Notes,
	}
}

// paymentRow columns:
// Recorded | ID | Date | Description | Amount | From | To | Panini | Notes
func paymentRow(p core.PaymentDetail, recorded time.Time) []any {
	return []any{
		recorded.UTC().Format(recordedLayout),
		p.ID,
		core.DateOf(p.CreatedAt).String(),
		p.Description,
		amountCell(p.Amount),
		p.SenderName,
		p.ReceiverName,
		strconv.FormatBool(p.Panini),
		p.Notes,
	}
}

func deletionRow(id string, at time.Time) []any {
	return []any{at.UTC().Format(recordedLayout), id, "", "DELETED"}
}

func amountCell(m core.Money) string {
	return m.Decimal().StringFixed(2)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
