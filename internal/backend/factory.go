package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Zhengnan817/consumables-dashboard/internal/config"
	applog "github.com/Zhengnan817/consumables-dashboard/internal/log"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/csvfile"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/github"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/google"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/sqlite"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/xlsx"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	client *http.Client
}

// NewFactory creates a new backend factory. Remote sources share client.
func NewFactory(logger *slog.Logger, client *http.Client) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DefaultFactory{logger: logger, client: client}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, cfg *config.Config) (*Set, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	set := &Set{}

	if cfg.HistorySource != "" {
		set.History = xlsx.New(cfg.HistorySource, cfg.HistorySheet, f.client)
		f.added(ctx, set, XLSXBackend, "location", cfg.HistorySource)
	}

	if cfg.MonthlyDir != "" {
		set.Incremental = append(set.Incremental, csvfile.NewDir(cfg.MonthlyDir))
		f.added(ctx, set, CSVDirBackend, "dir", cfg.MonthlyDir)
	}

	if cfg.GitHubRepo != "" {
		var opts []github.Option
		if cfg.GitHubToken != "" {
			opts = append(opts, github.WithToken(cfg.GitHubToken))
		}
		set.Incremental = append(set.Incremental, github.New(f.client, cfg.GitHubRepo, cfg.GitHubPath, cfg.GitHubRef, opts...))
		f.added(ctx, set, GitHubBackend, "repo", cfg.GitHubRepo, "path", cfg.GitHubPath)
	}

	if cfg.GoogleSpreadsheetID != "" {
		rng, err := google.NewFromCredentials(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetRange,
			cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sheets source: %w", err)
		}
		set.Incremental = append(set.Incremental, sources.NewStatic("sheets", rng))
		f.added(ctx, set, SheetsBackend, "range", cfg.GoogleSheetRange)
	}

	if cfg.SQLiteSourcePath != "" {
		tbl, err := sqlite.New(cfg.SQLiteSourcePath, cfg.SQLiteSourceTable)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite source: %w", err)
		}
		set.Incremental = append(set.Incremental, sources.NewStatic("sqlite", tbl))
		f.added(ctx, set, SQLiteBackend, "path", cfg.SQLiteSourcePath, "table", cfg.SQLiteSourceTable)
	}

	if set.Empty() {
		return nil, errors.New("no data source configured")
	}
	return set, nil
}

func (f *DefaultFactory) added(ctx context.Context, set *Set, t BackendType, args ...any) {
	set.Types = append(set.Types, t)
	f.logger.InfoContext(ctx, "Configured source",
		append([]any{applog.FieldComponent, applog.ComponentSources, "type", t.String()}, args...)...)
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{XLSXBackend, CSVDirBackend, GitHubBackend, SheetsBackend, SQLiteBackend}
}
