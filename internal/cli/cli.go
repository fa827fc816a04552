package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"

	"github.com/derhami/Converterz/internal/cli/hooks"
	"github.com/derhami/Converterz/internal/cli/ui"
	"github.com/derhami/Converterz/pkg/converter"
)

// RunConvert converts a single image without the TUI and prints the report to out.
// showProgress enables a spinner on stderr; it is ignored in verbose mode, where the
// status updates are logged instead.
func RunConvert(ctx context.Context, opts converter.Options, logger *slog.Logger, source string, out io.Writer, showProgress bool) error {
	var bar hooks.ProgressBar
	if showProgress && !opts.Verbose {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Converting"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	opts.EventHooks = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, bar)

	engine, err := converter.NewEngine(opts)
	if err != nil {
		logger.Error("Failed to initialise converter", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			logger.Warn("Failed to close diagnostic log", slog.String("error", closeErr.Error()))
		}
	}()

	req, err := engine.RequestBuilder().Source(source).Build()
	if err != nil {
		engine.AbortAttempt(err)
		return err
	}
	task, err := engine.Submit(ctx, req)
	if err != nil {
		engine.AbortAttempt(err)
		return err
	}
	res, convErr := task.Wait()

	if reportErr := WriteReport(out, res, opts.ReportFormat); reportErr != nil {
		return errors.Join(convErr, fmt.Errorf("failed to write report: %w", reportErr))
	}
	return convErr
}

// programSender forwards hook messages to a tea.Program created after the hooks.
type programSender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *programSender) set(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

// Send implements hooks.TUIProgram.
func (s *programSender) Send(msg interface{}) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// RunInteractive starts the conversion form. Quitting while a conversion is in flight
// waits for it to finish, since conversions cannot be cancelled.
func RunInteractive(ctx context.Context, opts converter.Options, logger *slog.Logger) error {
	sess, err := newSession(ctx, opts, logger, tea.WithAltScreen())
	if err != nil {
		return err
	}
	return sess.run(os.Stderr)
}

// session is one interactive run: the form, the engine behind it and the program
// delivering hook messages to it.
type session struct {
	logger  *slog.Logger
	engine  *converter.Engine
	model   *ui.Model
	program *tea.Program
	sender  *programSender
}

func newSession(ctx context.Context, opts converter.Options, logger *slog.Logger, progOpts ...tea.ProgramOption) (*session, error) {
	sender := &programSender{}
	opts.EventHooks = hooks.NewCLIHooks(logger, true, opts.Verbose, sender, nil)

	engine, err := converter.NewEngine(opts)
	if err != nil {
		logger.Error("Failed to initialise converter", slog.String("error", err.Error()))
		return nil, err
	}

	model := ui.NewModel(ctx, engine, opts.AppVersion, opts)
	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)...)
	sender.set(p)
	return &session{logger: logger, engine: engine, model: model, program: p, sender: sender}, nil
}

// run blocks until the user quits and any pending conversion has finished.
func (s *session) run(status io.Writer) error {
	_, runErr := s.program.Run()
	if task := s.model.Pending(); task != nil {
		fmt.Fprintln(status, "Waiting for the current conversion to finish...")
		<-task.Done()
	}
	s.sender.set(nil)
	if closeErr := s.engine.Close(); closeErr != nil {
		s.logger.Warn("Failed to close diagnostic log", slog.String("error", closeErr.Error()))
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		s.logger.Error("Interactive session failed", slog.String("error", runErr.Error()))
		return runErr
	}
	return nil
}
