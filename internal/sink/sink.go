// Package sink delivers finished reports to their destinations.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/service"
)

// JSONFile writes a report as indented UTF-8 JSON to a fixed path.
type JSONFile struct {
	logger *slog.Logger
	path   string
}

// NewJSONFile creates a sink writing to path.
func NewJSONFile(path string, logger *slog.Logger) *JSONFile {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &JSONFile{path: path, logger: logger}
}

// Path returns the destination file.
func (s *JSONFile) Path() string {
	return s.path
}

// Save replaces the destination file with report.
func (s *JSONFile) Save(ctx context.Context, name string, report any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(report)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	common.LogInfo(s.logger, "report saved", common.Fields{"report": name, "path": s.path, "bytes": len(data)})
	return nil
}

// Encode renders report the way every sink stores it: four-space indent
// with non-ASCII and HTML characters left as is.
func Encode(report any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Multi fans a report out to several sinks. Every sink is attempted and
// the failures are joined.
type Multi []service.ReportSink

// Save implements service.ReportSink.
func (m Multi) Save(ctx context.Context, name string, report any) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Save(ctx, name, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
