package sheets

import (
	"context"
	"sync"
)

// MockWriter records saved reports instead of talking to Google.
// It renders every report so unsupported types still fail.
type MockWriter struct {
	SaveFunc      func(ctx context.Context, name string, report any) error
	SaveCalls     []SaveCall
	SaveCallCount int
	mu            sync.Mutex
}

// SaveCall represents a single call to Save.
type SaveCall struct {
	Error  error
	Report any
	Name   string
	Table  Table
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		SaveCalls: make([]SaveCall, 0),
	}
}

// Save implements service.ReportSink.
func (m *MockWriter) Save(ctx context.Context, name string, report any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount++

	table, err := Render(report)
	if err == nil && m.SaveFunc != nil {
		err = m.SaveFunc(ctx, name, report)
	}

	m.SaveCalls = append(m.SaveCalls, SaveCall{
		Name:   name,
		Report: report,
		Table:  table,
		Error:  err,
	})

	return err
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount = 0
	m.SaveCalls = make([]SaveCall, 0)
}

// GetSaveCalls returns a copy of all save calls.
func (m *MockWriter) GetSaveCalls() []SaveCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]SaveCall, len(m.SaveCalls))
	copy(calls, m.SaveCalls)
	return calls
}

// AssertSaveCalled verifies that Save was called the expected number of times.
func (m *MockWriter) AssertSaveCalled(t interface{ Fatalf(string, ...any) }, expectedCalls int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveCallCount != expectedCalls {
		t.Fatalf("expected Save to be called %d times, but was called %d times", expectedCalls, m.SaveCallCount)
	}
}

// SetSaveError configures the mock to fail every Save with err.
func (m *MockWriter) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveFunc = func(context.Context, string, any) error {
		return err
	}
}
