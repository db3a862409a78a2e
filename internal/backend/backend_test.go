package backend

import (
	"bytes"
	"context"
	"testing"

	"panini/internal/config"
	plog "panini/internal/log"
	"panini/internal/sheets/memory"
)

func TestFromAppConfigSelectsMirror(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{})
	if err != nil || cfg.Type != MemoryMirror {
		t.Fatalf("expected memory mirror, got %v (%v)", cfg.Type, err)
	}

	cfg, err = FromAppConfig(&config.Config{GoogleSpreadsheetID: "sheet-1", GooglePaymentsSheet: "Pagos"})
	if err != nil || cfg.Type != SheetsMirror || cfg.GooglePaymentsSheet != "Pagos" {
		t.Fatalf("expected sheets mirror, got %+v (%v)", cfg, err)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryMirror}, false},
		{"unknown type", Config{Type: "postgres"}, true},
		{"sheets without id", Config{Type: SheetsMirror, GoogleServiceAccountFile: "sa.json"}, true},
		{"sheets without credentials", Config{Type: SheetsMirror, GoogleSpreadsheetID: "s"}, true},
		{"sheets with service account", Config{Type: SheetsMirror, GoogleSpreadsheetID: "s", GoogleServiceAccountJSON: "{}"}, false},
		{"oauth without token", Config{Type: SheetsMirror, GoogleSpreadsheetID: "s", GoogleOAuthClientFile: "c.json"}, true},
		{"oauth with token", Config{Type: SheetsMirror, GoogleSpreadsheetID: "s", GoogleOAuthClientFile: "c.json", GoogleOAuthTokenFile: "t.json"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryMirror(t *testing.T) {
	f := NewFactory(plog.New(plog.Config{Output: &bytes.Buffer{}}))
	res, err := f.CreateMirror(context.Background(), Config{Type: MemoryMirror})
	if err != nil {
		t.Fatalf("create mirror: %v", err)
	}
	if _, ok := res.Mirror.(*memory.Store); !ok || res.Type != MemoryMirror {
		t.Fatalf("unexpected mirror %T", res.Mirror)
	}

	if _, err := f.CreateMirror(context.Background(), Config{Type: SheetsMirror}); err == nil {
		t.Fatal("expected invalid sheets config to fail before dialing Google")
	}
}
