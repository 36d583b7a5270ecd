// Package report implements the transaction aggregation and rounding engine:
// date windows, category and card aggregation, ranking and round-up savings.
package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/shopspring/decimal"
)

// ReferenceMode decides the window end when a caller gives no explicit date.
type ReferenceMode string

// Reference modes.
const (
	ReferenceNow    ReferenceMode = "now"
	ReferenceLatest ReferenceMode = "latest"
)

// ParseReferenceMode validates a configured reference mode.
func ParseReferenceMode(s string) (ReferenceMode, error) {
	switch ReferenceMode(s) {
	case ReferenceNow, ReferenceLatest:
		return ReferenceMode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown reference mode %q", common.ErrInvalidConfig, s)
	}
}

var hundred = decimal.NewFromInt(100)

// Engine runs the report computations. It keeps no state between calls.
type Engine struct {
	logger        *slog.Logger
	now           func() time.Time
	window        Window
	referenceMode ReferenceMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for report events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWindow sets the default date window.
func WithWindow(w Window) Option {
	return func(e *Engine) {
		e.window = w
	}
}

// WithReferenceMode sets how a missing reference date is resolved.
func WithReferenceMode(mode ReferenceMode) Option {
	return func(e *Engine) {
		e.referenceMode = mode
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        common.DiscardLogger(),
		now:           time.Now,
		window:        DefaultWindow(),
		referenceMode: ReferenceLatest,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// roundMoney rounds to cents using half-even rounding.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
