package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/derhami/Converterz/internal/cli/hooks"
	"github.com/derhami/Converterz/pkg/converter"
	"github.com/derhami/Converterz/pkg/converter/codec"
)

// ImageExtensions are the files offered by the picker.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".PNG", ".JPG", ".JPEG", ".GIF", ".WEBP"}

const (
	previewCols = 32
	previewRows = 12
	// Rows taken by the header, the footer and the panel borders.
	chromeRows = 6
)

// Engine is the part of converter.Engine the form drives.
type Engine interface {
	Submit(ctx context.Context, req converter.ConversionRequest) (*converter.Task, error)
	Busy() bool
	AbortAttempt(err error)
	RequestBuilder() *converter.RequestBuilder
	OutputDir() string
}

// field identifies the focusable parts of the form, in tab order.
type field int

const (
	fieldPicker field = iota
	fieldNaming
	fieldFormat
	fieldResize
	fieldQuality
	fieldConvert
	fieldCount
)

// Model is the conversion form: a file picker, the naming/format selections, the
// resize/quality inputs, a preview of the selected image and the Convert trigger.
// The trigger is disabled while a conversion is in flight.
type Model struct {
	ctx     context.Context
	engine  Engine
	version string

	picker  filepicker.Model
	resize  textinput.Model
	quality textinput.Model
	spinner spinner.Model

	focus     field
	namingIdx int
	formatIdx int

	// Selected source and what the preview loader learnt about it.
	selectedPath string
	source       *converter.SourceInfo
	preview      string
	previewErr   string
	imageSize    string

	// In-flight conversion. task is nil when idle.
	task  *converter.Task
	stage string

	banner      string
	bannerError bool

	width, height int
	quitting      bool
}

// previewMsg delivers the result of loading the selected file in the background.
type previewMsg struct {
	path    string
	info    converter.SourceInfo
	art     string
	size    string
	loadErr error
}

// NewModel creates the form. Default selections come from the engine's request builder
// seed, i.e. the configured options.
func NewModel(ctx context.Context, engine Engine, version string, defaults converter.Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	fp := filepicker.New()
	fp.AllowedTypes = ImageExtensions
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	m := &Model{
		ctx:     ctx,
		engine:  engine,
		version: version,
		picker:  fp,
		resize:  newPercentInput(defaults.Resize, converter.DefaultResizePercentage, 0),
		quality: newPercentInput(defaults.Quality, converter.DefaultQualityPercentage, 3),
		spinner: s,
	}
	if f, err := converter.ParseFormat(defaults.Format); err == nil {
		m.formatIdx = indexOf(converter.SupportedFormats, f)
	}
	if n, err := converter.ParseNamingMethod(defaults.Naming); err == nil {
		m.namingIdx = indexOf(converter.SupportedNamingMethods, n)
	}
	return m
}

// newPercentInput creates a percentage field. A charLimit of 0 means unbounded; resize
// accepts any positive percentage.
func newPercentInput(value, fallback string, charLimit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = charLimit
	ti.Width = 5
	if value == "" {
		value = fallback
	}
	ti.SetValue(value)
	return ti
}

func indexOf[T comparable](values []T, v T) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return 0
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.picker.Init(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// The picker sizes itself from the window; give it the space of its panel only.
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(tea.WindowSizeMsg{Width: msg.Width / 2, Height: max(1, msg.Height-chromeRows)})
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case previewMsg:
		if msg.path != m.selectedPath {
			return m, nil // stale
		}
		if msg.loadErr != nil {
			m.source = nil
			m.preview = ""
			m.previewErr = msg.loadErr.Error()
			return m, nil
		}
		info := msg.info
		m.source = &info
		m.preview = msg.art
		m.imageSize = msg.size
		m.previewErr = ""
		return m, nil

	// --- Custom Messages from Core Hooks ---
	case hooks.ConversionStartedMsg:
		if m.task != nil && msg.ID == m.task.ID() {
			m.stage = "Starting"
		}

	case hooks.StatusUpdateMsg:
		if m.task != nil && msg.ID == m.task.ID() && !msg.Status.IsFinal() {
			m.stage = stageLabel(msg.Status)
		}

	case hooks.ConversionCompleteMsg:
		if m.task == nil || msg.Result.ID != m.task.ID() {
			return m, nil
		}
		m.task = nil
		m.stage = ""
		if msg.Result.Succeeded() && msg.Result.Output != nil {
			m.showBanner(fmt.Sprintf("Image converted successfully!\n%s", msg.Result.Output.Path), false)
		} else {
			m.showBanner(fmt.Sprintf("Error converting image:\n%s", msg.Result.Error), true)
		}

	default:
		// Directory listings and other picker internals.
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.quitting {
		return nil
	}
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "q":
		if !m.editingText() {
			m.quitting = true
			return tea.Quit
		}
	}

	// The banner is modal.
	if m.banner != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.banner = ""
			m.bannerError = false
		}
		return nil
	}

	switch msg.String() {
	case "tab":
		return m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "ctrl+s":
		return m.Trigger()
	}

	switch m.focus {
	case fieldPicker:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			return tea.Batch(cmd, m.selectFile(path))
		}
		return cmd
	case fieldNaming:
		m.namingIdx = cycle(m.namingIdx, len(converter.SupportedNamingMethods), msg.String())
	case fieldFormat:
		m.formatIdx = cycle(m.formatIdx, len(converter.SupportedFormats), msg.String())
	case fieldResize:
		var cmd tea.Cmd
		m.resize, cmd = m.resize.Update(msg)
		return cmd
	case fieldQuality:
		var cmd tea.Cmd
		m.quality, cmd = m.quality.Update(msg)
		return cmd
	case fieldConvert:
		if msg.String() == "enter" || msg.String() == " " {
			return m.Trigger()
		}
	}
	return nil
}

func cycle(idx, n int, key string) int {
	switch key {
	case "right", "l", "down", "j":
		return (idx + 1) % n
	case "left", "h", "up", "k":
		return (idx + n - 1) % n
	}
	return idx
}

func (m *Model) editingText() bool {
	return m.focus == fieldResize || m.focus == fieldQuality
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	m.resize.Blur()
	m.quality.Blur()
	switch f {
	case fieldResize:
		return m.resize.Focus()
	case fieldQuality:
		return m.quality.Focus()
	}
	return nil
}

// selectFile records the picked source and loads its preview in the background.
func (m *Model) selectFile(path string) tea.Cmd {
	m.selectedPath = path
	m.source = nil
	m.preview = ""
	m.previewErr = ""
	m.imageSize = ""
	return loadPreview(path)
}

func loadPreview(path string) tea.Cmd {
	return func() tea.Msg {
		info, data, err := converter.InspectSource(path)
		if err != nil {
			return previewMsg{path: path, loadErr: err}
		}
		img, format, err := codec.Decode(bytes.NewReader(data))
		if err != nil {
			return previewMsg{path: path, loadErr: fmt.Errorf("%w: %w", converter.ErrSourceUnreadable, err)}
		}
		b := img.Bounds()
		return previewMsg{
			path: path,
			info: info,
			art:  RenderPreview(img, previewCols, previewRows),
			size: fmt.Sprintf("%dx%d %s", b.Dx(), b.Dy(), format),
		}
	}
}

// TriggerDisabled reports whether Convert is currently unavailable.
func (m *Model) TriggerDisabled() bool {
	return m.task != nil || m.engine.Busy()
}

// Trigger builds a request from the current selections and submits it. Invalid
// selections are reported in the banner and never reach the pipeline.
func (m *Model) Trigger() tea.Cmd {
	if m.TriggerDisabled() {
		return nil
	}
	req, err := m.engine.RequestBuilder().
		Source(m.selectedPath).
		Format(string(m.Format())).
		Naming(string(m.Naming())).
		Resize(m.resize.Value()).
		Quality(m.quality.Value()).
		Build()
	if err != nil {
		m.engine.AbortAttempt(err)
		m.showBanner(fmt.Sprintf("Error converting image:\n%s", err), true)
		return nil
	}

	task, err := m.engine.Submit(m.ctx, req)
	if err != nil {
		if !errors.Is(err, converter.ErrBusy) {
			m.engine.AbortAttempt(err)
		}
		m.showBanner(fmt.Sprintf("Error converting image:\n%s", err), true)
		return nil
	}
	m.task = task
	m.stage = "Starting"
	return m.spinner.Tick
}

// Pending returns the in-flight conversion, or nil.
func (m *Model) Pending() *converter.Task { return m.task }

// Naming returns the selected naming method.
func (m *Model) Naming() converter.NamingMethod {
	return converter.SupportedNamingMethods[m.namingIdx]
}

// Format returns the selected output format.
func (m *Model) Format() converter.Format {
	return converter.SupportedFormats[m.formatIdx]
}

// Banner returns the current notification and whether it reports an error.
func (m *Model) Banner() (text string, isError bool) { return m.banner, m.bannerError }

// PredictedName is the output filename the current selections would produce, or "".
func (m *Model) PredictedName() string {
	if m.source == nil {
		return ""
	}
	name, err := m.source.OutputName(m.Naming(), m.Format())
	if err != nil {
		return ""
	}
	return name
}

func (m *Model) showBanner(text string, isError bool) {
	m.banner = text
	m.bannerError = isError
}

func stageLabel(s converter.Status) string {
	switch s {
	case converter.StatusLoading:
		return "Loading image"
	case converter.StatusResizing:
		return "Resizing"
	case converter.StatusEncoding:
		return "Encoding"
	}
	return string(s)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		if m.task != nil {
			return "Waiting for the current conversion to finish...\n"
		}
		return "Exiting...\n"
	}

	// --- Header ---
	headerLeft := fmt.Sprintf("Converterz %s", m.version)
	headerRight := "Ready"
	if m.task != nil {
		headerRight = m.spinner.View() + " " + m.stage + "..."
	}
	header := HeaderStyle.Width(max(m.width, 1)).Render(spaceBetween(m.width-2, headerLeft, headerRight))

	// --- Body ---
	pickerStyle := PanelStyle
	if m.focus == fieldPicker {
		pickerStyle = FocusedPanelStyle
	}
	left := pickerStyle.Render(LabelStyle.Render("Select an image") + "\n" + m.picker.View())
	right := PanelStyle.Render(m.formView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	if m.banner != "" {
		style := SuccessBannerStyle
		if m.bannerError {
			style = ErrorBannerStyle
		}
		body = lipgloss.JoinVertical(lipgloss.Left, body, style.Render(m.banner+"\n\n"+DimStyle.Render("enter: dismiss")))
	}

	// --- Footer ---
	footer := FooterStyle.Width(max(m.width, 1)).Render(spaceBetween(m.width-2,
		"tab: next field • ←/→: choose • ctrl+s: convert • q: quit",
		"Output: "+m.engine.OutputDir()))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) formView() string {
	var sb strings.Builder

	sb.WriteString(m.label(fieldNaming, "Naming") + "\n")
	for i, n := range converter.SupportedNamingMethods {
		sb.WriteString(radio(i == m.namingIdx, n.Label()) + "  ")
	}
	sb.WriteString("\n\n" + m.label(fieldFormat, "Format") + "\n")
	for i, f := range converter.SupportedFormats {
		sb.WriteString(radio(i == m.formatIdx, strings.ToUpper(string(f))) + "  ")
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.label(fieldResize, "Resize %") + " " + m.resize.View() + "   ")
	sb.WriteString(m.label(fieldQuality, "Quality %") + " " + m.quality.View() + "\n\n")

	switch {
	case m.selectedPath == "":
		sb.WriteString(DimStyle.Render("No image selected") + "\n")
	case m.previewErr != "":
		sb.WriteString(StatusStyleFailed.Render(m.previewErr) + "\n")
	case m.source == nil:
		sb.WriteString(DimStyle.Render("Loading preview...") + "\n")
	default:
		sb.WriteString(m.preview + "\n")
		sb.WriteString(DimStyle.Render(filepath.Base(m.selectedPath)+"  "+m.imageSize) + "\n")
		sb.WriteString("→ " + m.PredictedName() + "\n")
	}
	sb.WriteString("\n")

	button := ButtonStyle
	switch {
	case m.TriggerDisabled():
		button = DisabledButtonStyle
	case m.focus == fieldConvert:
		button = FocusedButtonStyle
	}
	label := "Convert"
	if m.TriggerDisabled() {
		label = "Converting..."
	}
	sb.WriteString(button.Render(label))
	return sb.String()
}

func (m *Model) label(f field, text string) string {
	if m.focus == f {
		return FocusedLabelStyle.Render("› " + text)
	}
	return LabelStyle.Render("  " + text)
}

func radio(selected bool, label string) string {
	if selected {
		return StatusStyleProcessing.Render("(•)") + " " + label
	}
	return "( ) " + label
}

func spaceBetween(width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
