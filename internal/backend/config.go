package backend

import (
	"errors"
	"fmt"

	"panini/internal/config"
)

// FromAppConfig converts the application config to mirror config. A
// spreadsheet id selects the Sheets mirror; without one events are journaled
// in memory.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	mirrorType := MemoryMirror
	if appConfig.GoogleSpreadsheetID != "" {
		mirrorType = SheetsMirror
	}

	return Config{
		Type: mirrorType,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleTransactionsSheet:  appConfig.GoogleTransactionsSheet,
		GooglePaymentsSheet:      appConfig.GooglePaymentsSheet,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleOAuthClientJSON:    appConfig.GoogleOAuthClientJSON,
		GoogleOAuthClientFile:    appConfig.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
	}, nil
}

// Validate validates the mirror configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid mirror type: %s", c.Type)
	}

	if c.Type == SheetsMirror {
		if c.GoogleSpreadsheetID == "" {
			return errors.New("google spreadsheet id is required for the sheets mirror")
		}

		hasServiceAccount := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != ""
		hasOAuthClient := c.GoogleOAuthClientJSON != "" || c.GoogleOAuthClientFile != ""
		if !hasServiceAccount && !hasOAuthClient {
			return errors.New("sheets mirror needs a service account or an OAuth client")
		}
		if !hasServiceAccount && c.GoogleOAuthTokenFile == "" {
			return errors.New("an OAuth token file is required when no service account is configured")
		}
	}

	return nil
}

// GetMirrorTypes returns all valid mirror types
func GetMirrorTypes() []MirrorType {
	return []MirrorType{SheetsMirror, MemoryMirror}
}
