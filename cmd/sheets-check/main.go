// Command sheets-check verifies that the configured Google Sheets
// export destination is reachable with the service account credentials.
package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/cli"
	gsheet "fintrack/internal/sheets/google"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.SheetsEnabled() {
		logger.Error("Sheets export is not configured (set GOOGLE_SPREADSHEET_ID)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gsheet.NewClient(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to create Sheets client", "error", err)
		os.Exit(1)
	}

	if err := client.Check(ctx); err != nil {
		logger.Error("Spreadsheet check failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Spreadsheet reachable",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
}
