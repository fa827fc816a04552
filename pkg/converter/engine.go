package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"

	"github.com/derhami/Converterz/pkg/converter/diaglog"
)

// Engine owns the long-lived pieces of the converter: the output directory, the
// diagnostic log, the pipeline and the single-flight dispatcher.
type Engine struct {
	opts       Options
	logger     *slog.Logger
	diag       *diaglog.Log
	pipeline   *Pipeline
	dispatcher *Dispatcher
}

// NewEngine validates opts, creates the output directory and the diagnostic log, and
// wires the pipeline behind a dispatcher. Log records go to both opts.Logger and the
// diagnostic log.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrInvalidConfiguration)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("%w: output directory cannot be empty", ErrInvalidConfiguration)
	}
	absOut, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot resolve output directory %q: %w", ErrInvalidConfiguration, opts.OutputDir, err)
	}
	opts.OutputDir = absOut

	diag, err := diaglog.Open(opts.OutputDir, DiagnosticLogName, opts.RetainLog)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create or access output directory %q: %w", ErrInvalidConfiguration, opts.OutputDir, err)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slogmulti.Fanout(opts.Logger, diag.Handler(level)))

	pipeline := NewPipeline(opts.OutputDir, logger, opts.EventHooks)
	e := &Engine{
		opts:       opts,
		logger:     logger.With(slog.String("component", "engine")),
		diag:       diag,
		pipeline:   pipeline,
		dispatcher: NewDispatcher(pipeline, opts.EventHooks, diag, logger),
	}
	e.logger.Debug("Engine ready",
		slog.String("outputDir", opts.OutputDir),
		slog.String("diagnosticLog", diag.Path()),
		slog.Bool("retainLog", opts.RetainLog),
	)
	return e, nil
}

// Submit starts a conversion in the background, or returns ErrBusy.
func (e *Engine) Submit(ctx context.Context, req ConversionRequest) (*Task, error) {
	return e.dispatcher.Submit(ctx, req)
}

// Busy reports whether a conversion is in flight.
func (e *Engine) Busy() bool { return e.dispatcher.Busy() }

// OutputDir returns the absolute output directory.
func (e *Engine) OutputDir() string { return e.opts.OutputDir }

// DiagnosticLogPath returns the location of the per-run diagnostic log.
func (e *Engine) DiagnosticLogPath() string { return e.diag.Path() }

// Options returns the resolved options.
func (e *Engine) Options() Options { return e.opts }

// RequestBuilder returns a builder seeded with the configured default selections.
func (e *Engine) RequestBuilder() *RequestBuilder { return e.opts.RequestBuilder() }

// Logger returns the engine logger, which also feeds the diagnostic log.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// AbortAttempt records a conversion attempt that failed before it could be submitted,
// typically an ErrInvalidConfiguration from the request builder. The error is logged and
// the diagnostic log is cleaned up, exactly as after a submitted conversion.
func (e *Engine) AbortAttempt(err error) {
	e.logger.Error("Error converting image", slog.String("error", err.Error()))
	if cleanErr := e.diag.Cleanup(); cleanErr != nil {
		e.logger.Warn("Post-conversion cleanup failed", slog.String("error", cleanErr.Error()))
	}
}

// Close releases the diagnostic log. It must not be called while a conversion is in flight.
func (e *Engine) Close() error {
	if e.dispatcher.Busy() {
		return ErrBusy
	}
	return e.diag.Close()
}

// Convert is the one-shot entry point: it creates an Engine from opts, converts req,
// waits for the result and closes the engine.
func Convert(ctx context.Context, opts Options, req ConversionRequest) (Result, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return Result{}, err
	}
	task, err := engine.Submit(ctx, req)
	if err != nil {
		return Result{}, errors.Join(err, engine.Close())
	}
	res, convErr := task.Wait()
	if closeErr := engine.Close(); closeErr != nil {
		engine.logger.Warn("Failed to close diagnostic log", slog.String("error", closeErr.Error()))
	}
	return res, convErr
}
