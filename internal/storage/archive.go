// Package storage keeps an archive of generated reports in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timestampLayout is fixed width so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Archive stores every saved report with a generated id. It satisfies
// service.ReportSink.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	path   string
}

// NewArchive opens (creating if needed) the archive database at path.
func NewArchive(path string, logger *slog.Logger) (*Archive, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = common.DiscardLogger()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping archive: %w", err)
	}

	return &Archive{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		path:   path,
	}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores report as JSON under name.
func (a *Archive) Save(ctx context.Context, name string, report any) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	id := a.newID()
	createdAt := a.now().UTC()

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO reports (id, name, created_at, payload)
		VALUES (?, ?, ?, ?)
	`, id, name, createdAt.Format(timestampLayout), string(payload))
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}

	common.LogDebug(a.logger, "report archived", common.Fields{"id": id, "report": name, "bytes": len(payload)})
	return nil
}

// List returns archived reports, newest first. An empty name lists every
// report; a non-positive limit means no limit.
func (a *Archive) List(ctx context.Context, name string, limit int) ([]model.ArchivedReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, created_at, payload
		FROM reports
		WHERE ? = '' OR name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []model.ArchivedReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

// Get returns a single archived report by id.
func (a *Archive) Get(ctx context.Context, id string) (model.ArchivedReport, error) {
	if err := validateContext(ctx); err != nil {
		return model.ArchivedReport{}, err
	}
	if err := validateString(id, "id"); err != nil {
		return model.ArchivedReport{}, err
	}

	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, payload
		FROM reports
		WHERE id = ?
	`, id)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ArchivedReport{}, fmt.Errorf("%w: report %s", common.ErrNotFound, id)
	}
	return report, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (model.ArchivedReport, error) {
	var report model.ArchivedReport
	var createdAt string

	if err := s.Scan(&report.ID, &report.Name, &createdAt, &report.Payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report, err
		}
		return report, fmt.Errorf("failed to scan report: %w", err)
	}

	parsed, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return report, fmt.Errorf("report %s has invalid timestamp %q: %w", report.ID, createdAt, err)
	}
	report.CreatedAt = parsed

	return report, nil
}
