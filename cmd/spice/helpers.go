package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-report/internal/config"
	"github.com/Veraticus/spice-report/internal/ingest"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/Veraticus/spice-report/internal/report"
	"github.com/Veraticus/spice-report/internal/service"
	"github.com/Veraticus/spice-report/internal/sheets"
	"github.com/Veraticus/spice-report/internal/sink"
	"github.com/Veraticus/spice-report/internal/storage"
	"github.com/spf13/viper"
)

// session holds what a report command needs: resolved config, the engine
// and the sinks every finished report goes to.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	engine  *report.Engine
	sinks   sink.Multi
	closers []func() error
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	window, err := report.ParseWindow(cfg.Window.Mode, cfg.Window.Field)
	if err != nil {
		return nil, err
	}
	mode, err := report.ParseReferenceMode(cfg.Window.Reference)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	s := &session{
		cfg:    cfg,
		logger: logger,
		engine: report.New(
			report.WithLogger(logger),
			report.WithWindow(window),
			report.WithReferenceMode(mode)),
	}

	if err := s.openSinks(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) openSinks(ctx context.Context) error {
	if s.cfg.Archive.Enabled {
		archive, err := initArchive(ctx, s.cfg.Archive.Path, s.logger)
		if err != nil {
			return err
		}
		s.sinks = append(s.sinks, archive)
		s.closers = append(s.closers, archive.Close)
	}

	if viper.GetBool("sheets.enabled") {
		sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return fmt.Errorf("sheets export is not configured: %w", err)
		}
		writer, err := sheets.NewWriter(ctx, *sheetsConfig, s.logger)
		if err != nil {
			return fmt.Errorf("failed to create sheets writer: %w", err)
		}
		s.sinks = append(s.sinks, writer)
	}

	return nil
}

// initArchive opens the report archive and brings its schema up to date.
func initArchive(ctx context.Context, path string, logger *slog.Logger) (*storage.Archive, error) {
	archive, err := storage.NewArchive(config.ExpandPath(path), logger)
	if err != nil {
		return nil, err
	}

	if err := archive.Migrate(ctx); err != nil {
		_ = archive.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return archive, nil
}

// ledger loads the configured transaction ledger.
func (s *session) ledger(ctx context.Context) ([]model.Transaction, error) {
	var source service.TransactionSource = ingest.NewLoader(s.logger)

	txns, err := source.Load(ctx, s.cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger %s: %w", s.cfg.Ledger.Path, err)
	}
	return txns, nil
}

// sink returns the sinks for a report, plus a JSON file in the reports
// directory when --save is set.
func (s *session) sink(name string) service.ReportSink {
	sinks := append(sink.Multi{}, s.sinks...)
	if viper.GetBool("reports.save") {
		sinks = append(sinks, sink.NewJSONFile(config.ReportPath(s.cfg.Reports.Dir, name), s.logger))
	}
	return sinks
}

func (s *session) save(ctx context.Context, name string, report any) error {
	if err := s.sink(name).Save(ctx, name, report); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// Close releases the sinks that hold resources.
func (s *session) Close() {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("Failed to close report sinks", "error", err)
	}
}
