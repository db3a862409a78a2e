package backend

import (
	"context"
	"fmt"

	plog "panini/internal/log"
	gsheet "panini/internal/sheets/google"
	"panini/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *plog.Logger
}

// NewFactory creates a new mirror factory
func NewFactory(logger *plog.Logger) Factory {
	if logger == nil {
		logger = plog.New(plog.Config{Component: plog.ComponentSheets})
	}
	return &DefaultFactory{logger: logger.WithComponent(plog.ComponentSheets)}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsMirror:
		return f.createSheetsMirror(ctx, config)
	case MemoryMirror:
		return f.createMemoryMirror(ctx)
	default:
		return nil, fmt.Errorf("unsupported mirror type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		OAuthClientJSON:    config.GoogleOAuthClientJSON,
		OAuthClientFile:    config.GoogleOAuthClientFile,
		OAuthTokenFile:     config.GoogleOAuthTokenFile,
		TransactionsSheet:  config.GoogleTransactionsSheet,
		PaymentsSheet:      config.GooglePaymentsSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &MirrorResult{Mirror: client, Type: SheetsMirror}, nil
}

// createMemoryMirror keeps the journal in process; it is lost on restart.
func (f *DefaultFactory) createMemoryMirror(ctx context.Context) (*MirrorResult, error) {
	f.logger.InfoContext(ctx, "Initialized memory mirror")
	return &MirrorResult{Mirror: memory.New(), Type: MemoryMirror}, nil
}
