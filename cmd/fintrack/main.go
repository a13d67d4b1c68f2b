package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/web"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenSessionStore(logger, cfg)

	httpc := &http.Client{Timeout: cfg.APITimeout}
	client := api.New(cfg.APIBaseURL, store, httpc)

	var publisher *events.Publisher
	if cfg.AMQPEnabled() {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP publisher", "error", err)
			os.Exit(1)
		}
		publisher = p
		logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	var appender sheets.TransactionAppender
	if cfg.SheetsEnabled() {
		sc, err := gsheet.NewClient(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Sheets export", "error", err)
			os.Exit(1)
		}
		appender = sc
		logger.Info("Initialized Sheets export", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv := web.NewServer(":"+cfg.Port, web.Deps{
		Client:         client,
		Store:          store,
		Publisher:      publisher,
		Appender:       appender,
		CurrencySymbol: cfg.CurrencySymbol,
		Logger:         applog.New(applog.DefaultConfig()),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := publisher.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"session_backend", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
