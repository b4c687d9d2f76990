package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"teros/assistant"
	"teros/attachment"
	"teros/config"
	"teros/guardian"
	"teros/model"
	"teros/provider"
	"teros/storage"
	"teros/tools"
	"teros/ui"
)

const Version = "v0.01.00"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := config.InitLogger(cfg.DataDir(), cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logFile.Close()

	logger := config.Logger()
	logger.Info("starting teros", "version", Version, "provider", cfg.Provider, "model", cfg.Model)

	p, err := provider.NewProvider(provider.Config{
		Type:           provider.MapProviderIDToType(cfg.Provider),
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		APIKey:         cfg.APIKey,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	opts := []assistant.Option{
		assistant.WithSystemPrompt(cfg.SystemPrompt),
		assistant.WithUserName(cfg.UserName),
		assistant.WithRequestTimeout(cfg.RequestTimeout),
		assistant.WithGuardian(guardian.New(p.GetModel(),
			guardian.WithContextWindow(cfg.ContextWindow),
			guardian.WithLogger(logger),
		)),
	}

	// remote file stores get a ledger so uploads orphaned by a crash are
	// deleted on the next start
	if store, ok := p.(model.FileStore); ok {
		ledger, err := storage.NewAttachmentLedger(cfg.DataDir())
		if err != nil {
			return fmt.Errorf("failed to open attachment ledger: %w", err)
		}
		defer ledger.Close()

		attachments := attachment.NewManager(store,
			attachment.WithLedger(ledger, cfg.Provider),
			attachment.WithLogger(logger),
		)
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		attachments.Sweep(sweepCtx)
		cancel()

		opts = append(opts, assistant.WithAttachments(attachments))
	}

	session := assistant.NewSession(p, opts...)
	defer session.Dispose(context.Background())

	if err := registerBuiltinTools(session, cfg.FilesRoot); err != nil {
		return err
	}

	return ui.Run(session)
}

func registerBuiltinTools(s *assistant.Session, root string) error {
	getTime, err := tools.GetTime(time.Now)
	if err != nil {
		return err
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}
	readFile, err := tools.ReadFile(root)
	if err != nil {
		return err
	}
	return s.RegisterTools(getTime, readFile)
}
