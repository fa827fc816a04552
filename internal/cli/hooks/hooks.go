package hooks

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/derhami/Converterz/pkg/converter"
)

// --- TUI Message Structs ---

// ConversionStartedMsg signals that the dispatcher accepted a conversion.
type ConversionStartedMsg struct {
	ID      string
	Request converter.ConversionRequest
}

// StatusUpdateMsg signals that a conversion moved to a new stage.
type StatusUpdateMsg struct {
	ID      string
	Status  converter.Status
	Message string
}

// ConversionCompleteMsg carries the final result of a conversion.
type ConversionCompleteMsg struct{ Result converter.Result }

// --- Hook Implementation ---

// CLIHooks implements the converter.Hooks interface, bridging core events to the
// CLI's UI layer (TUI, logger, progress bar).
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	hasProgress    bool
	mu             sync.Mutex // Protects progressBar
}

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
type TUIProgram interface {
	Send(msg interface{})
}

// ProgressBar defines the subset of *progressbar.ProgressBar the hooks drive.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Close() error
}

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg interface{}) {}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Describe implements ProgressBar.
func (n *NoOpProgressBar) Describe(description string) {}

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

// NewCLIHooks creates a new CLIHooks instance.
// Pass nil for tuiProgram or progressBar if not applicable; NoOp versions will be used.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) *CLIHooks {
	hasProgress := progBar != nil
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	if progBar == nil {
		progBar = &NoOpProgressBar{}
	}
	return &CLIHooks{
		logger:         logger.With(slog.String("component", "hooks")),
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
		hasProgress:    hasProgress,
	}
}

// OnConversionStart implements converter.Hooks.
func (h *CLIHooks) OnConversionStart(id string, req converter.ConversionRequest) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(ConversionStartedMsg{ID: id, Request: req})
		return nil
	}
	if h.hasProgress {
		h.mu.Lock()
		h.progressBar.Describe("Converting " + filepath.Base(req.SourcePath))
		_ = h.progressBar.Add(1)
		h.mu.Unlock()
	}
	return nil
}

// OnStatusUpdate implements converter.Hooks. It is called from the conversion goroutine.
func (h *CLIHooks) OnStatusUpdate(id string, status converter.Status, message string) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(StatusUpdateMsg{ID: id, Status: status, Message: message})
		return nil
	}

	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "Conversion status updated"
		attrs := []any{
			slog.String("id", id),
			slog.String("status", string(status)),
		}
		if message != "" {
			logKey := "message"
			if status == converter.StatusFailed {
				logKey = "error"
			}
			attrs = append(attrs, slog.String(logKey, message))
		}
		switch status {
		case converter.StatusSuccess:
			logLevel = slog.LevelInfo
		case converter.StatusFailed:
			logLevel = slog.LevelError
			logMsg = "Conversion failed"
		}
		h.logger.Log(context.Background(), logLevel, logMsg, attrs...)
		return nil
	}

	if h.hasProgress {
		h.mu.Lock()
		if !status.IsFinal() {
			h.progressBar.Describe(stageDescription(status, message))
		}
		_ = h.progressBar.Add(1)
		h.mu.Unlock()
	}
	return nil
}

// OnConversionComplete implements converter.Hooks. The TUI receives the result as a
// message; otherwise the progress bar is finalized and the caller prints the report.
func (h *CLIHooks) OnConversionComplete(result converter.Result) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(ConversionCompleteMsg{Result: result})
		return nil
	}
	if h.hasProgress {
		h.mu.Lock()
		_ = h.progressBar.Close()
		h.mu.Unlock()
	}
	return nil
}

func stageDescription(status converter.Status, message string) string {
	switch status {
	case converter.StatusLoading:
		return "Loading " + filepath.Base(message)
	case converter.StatusResizing:
		return "Resizing to " + message
	case converter.StatusEncoding:
		return "Writing " + message
	}
	return string(status)
}
