package converter

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Cleaner is run after every conversion attempt, whatever its outcome.
type Cleaner interface {
	Cleanup() error
}

// Task is the handle for one in-flight conversion.
type Task struct {
	id      string
	request ConversionRequest
	done    chan struct{}
	result  Result
	err     error
}

// ID returns the conversion ID.
func (t *Task) ID() string { return t.id }

// Request returns the request being converted.
func (t *Task) Request() ConversionRequest { return t.request }

// Done is closed once the conversion has finished and its cleanup has run.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the conversion finishes and returns its result. The error is nil
// on success.
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}

// Result returns the outcome without blocking; ok is false while the task is running.
func (t *Task) Result() (res Result, ok bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result{}, false
	}
}

// Dispatcher runs conversions on a background goroutine, one at a time. A Submit while a
// conversion is in flight is rejected with ErrBusy; there is no queue.
type Dispatcher struct {
	converter Converter
	hooks     Hooks
	cleaner   Cleaner
	logger    *slog.Logger
	busy      atomic.Bool
}

// NewDispatcher wires a converter with the hooks and the post-run cleaner. hooks and
// cleaner may be nil.
func NewDispatcher(conv Converter, hooks Hooks, cleaner Cleaner, logger *slog.Logger) *Dispatcher {
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		converter: conv,
		hooks:     hooks,
		cleaner:   cleaner,
		logger:    logger.With(slog.String("component", "dispatcher")),
	}
}

// Busy reports whether a conversion is in flight. Shells use it to disable their trigger.
func (d *Dispatcher) Busy() bool { return d.busy.Load() }

// Submit starts converting req in the background. ctx is only checked before the
// conversion starts; a started conversion cannot be cancelled and has no timeout.
func (d *Dispatcher) Submit(ctx context.Context, req ConversionRequest) (*Task, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	if err := ctx.Err(); err != nil {
		d.busy.Store(false)
		return nil, err
	}

	task := &Task{id: uuid.NewString(), request: req, done: make(chan struct{})}
	runCtx := WithTaskID(context.WithoutCancel(ctx), task.id)

	go d.run(runCtx, task)
	return task, nil
}

// run executes one task. Every hook fires here, never on the submitting goroutine, so a
// shell may submit from inside its own event loop.
func (d *Dispatcher) run(ctx context.Context, task *Task) {
	started := time.Now()
	var (
		out OutputFile
		err error
	)

	// The cleanup below is the conversion's "finally": it runs on success, failure and panic.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during conversion: %v", ErrEncodeOrWrite, r)
		}

		res := newResult(task.id, task.request, started, out, err)
		if err != nil {
			d.logger.Error("Error converting image", slog.String("id", task.id), slog.String("error", err.Error()))
		} else {
			d.logger.Info("Conversion complete", slog.String("id", task.id), slog.String("output", out.Path), slog.Int64("durationMs", res.DurationMs))
		}
		if hookErr := d.hooks.OnStatusUpdate(task.id, res.Status, res.Error); hookErr != nil {
			d.logger.Warn("OnStatusUpdate hook returned an error", slog.String("id", task.id), slog.String("error", hookErr.Error()))
		}
		if hookErr := d.hooks.OnConversionComplete(res); hookErr != nil {
			d.logger.Warn("OnConversionComplete hook returned an error", slog.String("id", task.id), slog.String("error", hookErr.Error()))
		}
		if d.cleaner != nil {
			if cleanErr := d.cleaner.Cleanup(); cleanErr != nil {
				d.logger.Warn("Post-conversion cleanup failed", slog.String("id", task.id), slog.String("error", cleanErr.Error()))
			}
		}

		task.result, task.err = res, err
		// Release the slot before signalling completion, so a waiter can resubmit immediately.
		d.busy.Store(false)
		close(task.done)
	}()

	req := task.request
	d.logger.Info("Conversion started",
		slog.String("id", task.id),
		slog.String("source", req.SourcePath),
		slog.String("format", string(req.Format)),
		slog.Int("resize", req.ResizePercent),
		slog.Int("quality", req.Quality),
		slog.String("naming", string(req.Naming)),
	)
	if hookErr := d.hooks.OnConversionStart(task.id, req); hookErr != nil {
		d.logger.Warn("OnConversionStart hook returned an error", slog.String("id", task.id), slog.String("error", hookErr.Error()))
	}

	out, err = d.converter.Convert(ctx, req)
}
