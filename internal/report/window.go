package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
)

// WindowMode selects how far back a window reaches from its reference.
type WindowMode string

// Window modes.
const (
	// WindowNinetyDays reaches back exactly 90 days.
	WindowNinetyDays WindowMode = "90d"
	// WindowThreeMonths reaches back three calendar months.
	WindowThreeMonths WindowMode = "3m"
)

const windowDays = 90

// Window describes a rolling date window.
type Window struct {
	Mode  WindowMode
	Field model.DateField
}

// DefaultWindow is 90 days over the operation date.
func DefaultWindow() Window {
	return Window{Mode: WindowNinetyDays, Field: model.FieldOperation}
}

// ParseWindow validates configured window settings.
func ParseWindow(mode, field string) (Window, error) {
	w := Window{Mode: WindowMode(mode), Field: model.DateField(field)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks the mode and date field.
func (w Window) Validate() error {
	switch w.Mode {
	case WindowNinetyDays, WindowThreeMonths:
	default:
		return fmt.Errorf("%w: unknown window mode %q", common.ErrInvalidConfig, w.Mode)
	}
	switch w.Field {
	case model.FieldOperation, model.FieldPayment:
	default:
		return fmt.Errorf("%w: unknown date field %q", common.ErrInvalidConfig, w.Field)
	}
	return nil
}

// Start returns the inclusive lower bound for a window ending at reference.
func (w Window) Start(reference time.Time) time.Time {
	if w.Mode == WindowThreeMonths {
		return subtractMonths(reference, 3)
	}
	return reference.AddDate(0, 0, -windowDays)
}

// subtractMonths moves t back by months, clamping the day to the length of
// the target month so that 31 May minus three months is 28/29 February.
func subtractMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, minute, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// FilterWindow returns the transactions whose date falls in
// [reference - window, reference]. A nil reference resolves to the latest
// date in the batch. Any unparseable date fails the whole batch.
func (e *Engine) FilterWindow(txns []model.Transaction, window Window, reference *time.Time) ([]model.Transaction, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return []model.Transaction{}, nil
	}

	times, err := parseTimes(txns, window.Field)
	if err != nil {
		return nil, err
	}

	end := latest(times)
	if reference != nil {
		end = *reference
	}
	start := window.Start(end)

	e.logger.Debug("filtering by date window",
		"mode", window.Mode,
		"field", window.Field,
		"start", start,
		"end", end,
		"transactions", len(txns))

	return selectBetween(txns, times, start, end), nil
}

// filterBetween keeps transactions whose date lies in [start, end].
func filterBetween(txns []model.Transaction, field model.DateField, start, end time.Time) ([]model.Transaction, error) {
	times, err := parseTimes(txns, field)
	if err != nil {
		return nil, err
	}
	return selectBetween(txns, times, start, end), nil
}

func selectBetween(txns []model.Transaction, times []time.Time, start, end time.Time) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for i, ts := range times {
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, txns[i])
	}
	return out
}

func parseTimes(txns []model.Transaction, field model.DateField) ([]time.Time, error) {
	times := make([]time.Time, len(txns))
	for i, txn := range txns {
		ts, err := txn.Time(field)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		times[i] = ts
	}
	return times, nil
}

func latest(times []time.Time) time.Time {
	var newest time.Time
	for i, ts := range times {
		if i == 0 || ts.After(newest) {
			newest = ts
		}
	}
	return newest
}
