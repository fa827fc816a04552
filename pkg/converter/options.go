package converter

import (
	"log/slog"
)

// Hooks receives lifecycle callbacks for conversions. All callbacks, OnConversionStart
// included, run on the conversion's worker goroutine and never on the goroutine that
// called Submit. Implementations MUST be safe for concurrent use with the caller's own
// goroutine, and may block on it. Returned errors are logged and otherwise ignored.
type Hooks interface {
	OnConversionStart(id string, req ConversionRequest) error
	OnStatusUpdate(id string, status Status, message string) error
	OnConversionComplete(result Result) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnConversionStart implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnConversionStart(id string, req ConversionRequest) error { return nil }

// OnStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnStatusUpdate(id string, status Status, message string) error { return nil }

// OnConversionComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnConversionComplete(result Result) error { return nil }

// Options configures an Engine. The selection fields (Format, Resize, Quality, Naming)
// only seed the request builder; each conversion carries its own ConversionRequest.
type Options struct {
	// --- Output ---
	OutputDir string `mapstructure:"outputDir"` // Fixed output folder, created on first use
	RetainLog bool   `mapstructure:"retainLog"` // Keep the diagnostic log after each run

	// --- Default selections ---
	Format  string `mapstructure:"format"`
	Resize  string `mapstructure:"resize"`
	Quality string `mapstructure:"quality"`
	Naming  string `mapstructure:"naming"`

	// --- Shell behaviour ---
	ReportFormat   ReportFormat `mapstructure:"reportFormat"`
	TuiEnabled     bool         `mapstructure:"tuiEnabled"`
	Verbose        bool         `mapstructure:"verbose"`
	ConfigFilePath string       `mapstructure:"-"`
	AppVersion     string       `mapstructure:"-"`

	// --- Injected dependencies ---
	EventHooks Hooks        `mapstructure:"-"` // Optional: defaults to NoOpHooks
	Logger     slog.Handler `mapstructure:"-"` // Required: logging backend for the caller's side
}

// RequestBuilder returns a builder seeded with the option defaults.
func (o Options) RequestBuilder() *RequestBuilder {
	b := NewRequestBuilder()
	if o.Format != "" {
		b.Format(o.Format)
	}
	if o.Resize != "" {
		b.Resize(o.Resize)
	}
	if o.Quality != "" {
		b.Quality(o.Quality)
	}
	if o.Naming != "" {
		b.Naming(o.Naming)
	}
	return b
}
