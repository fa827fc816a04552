// Package testutil provides test helpers and mock implementations for the interfaces of
// the conversion core (pkg/converter).
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/derhami/Converterz/pkg/converter"
)

// MockHooks provides a mock implementation of converter.Hooks. Hooks are called from the
// conversion goroutine; testify's mock.Mock is safe for that.
type MockHooks struct {
	mock.Mock
}

// OnConversionStart mocks the OnConversionStart method.
func (m *MockHooks) OnConversionStart(id string, req converter.ConversionRequest) error {
	args := m.Called(id, req)
	return args.Error(0)
}

// OnStatusUpdate mocks the OnStatusUpdate method.
func (m *MockHooks) OnStatusUpdate(id string, status converter.Status, message string) error {
	args := m.Called(id, status, message)
	return args.Error(0)
}

// OnConversionComplete mocks the OnConversionComplete method.
func (m *MockHooks) OnConversionComplete(result converter.Result) error {
	args := m.Called(result)
	return args.Error(0)
}

// MockConverter provides a mock implementation of converter.Converter.
type MockConverter struct {
	mock.Mock
}

// Convert mocks the Convert method.
func (m *MockConverter) Convert(ctx context.Context, req converter.ConversionRequest) (converter.OutputFile, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(converter.OutputFile)
	return out, args.Error(1)
}

// MockCleaner provides a mock implementation of converter.Cleaner.
type MockCleaner struct {
	mock.Mock
}

// Cleanup mocks the Cleanup method.
func (m *MockCleaner) Cleanup() error {
	args := m.Called()
	return args.Error(0)
}

// GatedConverter blocks every Convert until Release is called, which lets tests hold a
// conversion in flight.
type GatedConverter struct {
	Output converter.OutputFile
	Err    error
	Panic  any

	once    sync.Once
	started chan struct{}
	gate    chan struct{}
}

// NewGatedConverter returns a converter that stays in flight until Release.
func NewGatedConverter() *GatedConverter {
	return &GatedConverter{started: make(chan struct{}), gate: make(chan struct{})}
}

// Convert implements converter.Converter.
func (g *GatedConverter) Convert(ctx context.Context, req converter.ConversionRequest) (converter.OutputFile, error) {
	g.once.Do(func() { close(g.started) })
	<-g.gate
	if g.Panic != nil {
		panic(g.Panic)
	}
	return g.Output, g.Err
}

// Started is closed once the first Convert call has begun.
func (g *GatedConverter) Started() <-chan struct{} { return g.started }

// Release lets all current and future Convert calls finish.
func (g *GatedConverter) Release() { close(g.gate) }

// TUIProgramRecorder records messages sent to a TUI program.
type TUIProgramRecorder struct {
	mu   sync.Mutex
	msgs []interface{}
}

// Send implements the hooks.TUIProgram interface.
func (r *TUIProgramRecorder) Send(msg interface{}) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded messages.
func (r *TUIProgramRecorder) Messages() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interface{}, len(r.msgs))
	copy(out, r.msgs)
	return out
}
