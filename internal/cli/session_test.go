package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derhami/Converterz/pkg/converter"
)

const sessionTimeout = 5 * time.Second

// syncBuffer lets the test read log output written from the worker goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newHeadlessSession(t *testing.T, logs io.Writer) *session {
	t.Helper()
	handler := slog.NewTextHandler(logs, nil)
	opts := converter.Options{
		OutputDir: filepath.Join(t.TempDir(), "Converterz"),
		Format:    "webp",
		Resize:    "100",
		Quality:   "100",
		Naming:    "hash_only",
		Logger:    handler,
	}
	sess, err := newSession(context.Background(), opts, slog.New(handler),
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer(), tea.WithoutSignalHandler())
	require.NoError(t, err)
	return sess
}

// send delivers msg to the running program and fails if the event loop does not take
// it. Messages are handled in order, so once send returns every earlier message has
// been processed.
func send(t *testing.T, p *tea.Program, msg tea.Msg) {
	t.Helper()
	accepted := make(chan struct{})
	go func() {
		p.Send(msg)
		close(accepted)
	}()
	select {
	case <-accepted:
	case <-time.After(sessionTimeout):
		t.Fatalf("event loop stopped accepting messages before %T", msg)
	}
}

func TestSession_ConvertFromEventLoop(t *testing.T) {
	logs := &syncBuffer{}
	sess := newHeadlessSession(t, logs)

	runErr := make(chan error, 1)
	go func() { runErr <- sess.run(io.Discard) }()

	// First attempt: no file selected, so the pipeline reports an unreadable source.
	send(t, sess.program, tea.KeyMsg{Type: tea.KeyCtrlS})
	send(t, sess.program, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Eventually(t, func() bool { return !sess.engine.Busy() }, sessionTimeout, 10*time.Millisecond)

	// Dismiss the error banner; the trigger is available again.
	send(t, sess.program, tea.KeyMsg{Type: tea.KeyEnter})
	send(t, sess.program, tea.KeyMsg{Type: tea.KeyCtrlS})
	send(t, sess.program, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Eventually(t, func() bool { return !sess.engine.Busy() }, sessionTimeout, 10*time.Millisecond)

	send(t, sess.program, tea.KeyMsg{Type: tea.KeyCtrlC})
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(sessionTimeout):
		t.Fatal("session did not exit")
	}

	assert.Nil(t, sess.model.Pending())
	assert.False(t, sess.model.TriggerDisabled())
	text, isError := sess.model.Banner()
	assert.True(t, isError)
	assert.Contains(t, text, "source image unreadable")
	assert.Equal(t, 2, strings.Count(logs.String(), "Conversion started"))
	assert.NoFileExists(t, sess.engine.DiagnosticLogPath())
}

func TestSession_QuitDuringConversionWaits(t *testing.T) {
	sess := newHeadlessSession(t, io.Discard)

	runErr := make(chan error, 1)
	go func() { runErr <- sess.run(io.Discard) }()

	send(t, sess.program, tea.KeyMsg{Type: tea.KeyCtrlS})
	send(t, sess.program, tea.KeyMsg{Type: tea.KeyCtrlC})
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(sessionTimeout):
		t.Fatal("session did not exit")
	}
	assert.False(t, sess.engine.Busy())
}
