package ui

import "github.com/charmbracelet/lipgloss"

const (
	ColorHeaderFg = lipgloss.Color("252") // Light Gray
	ColorHeaderBg = lipgloss.Color("62")  // Purple

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56") // Dark Pink/Purple

	ColorNormalFg   = lipgloss.Color("250")
	ColorDimFg      = lipgloss.Color("244")
	ColorFocusedFg  = lipgloss.Color("255")
	ColorFocusedBg  = lipgloss.Color("56")
	ColorAccent     = lipgloss.Color("205") // Pink (matches spinner)
	ColorSuccess    = lipgloss.Color("40")
	ColorFailed     = lipgloss.Color("196")
	ColorBorder     = lipgloss.Color("240")
	ColorBannerText = lipgloss.Color("255")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	FocusedPanelStyle = PanelStyle.BorderForeground(ColorAccent)

	LabelStyle        = lipgloss.NewStyle().Bold(true).Foreground(ColorNormalFg)
	FocusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	DimStyle          = lipgloss.NewStyle().Foreground(ColorDimFg)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorNormalFg).
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 2)
	FocusedButtonStyle = ButtonStyle.
				Foreground(ColorFocusedFg).
				Background(ColorFocusedBg).
				BorderForeground(ColorAccent)
	DisabledButtonStyle = ButtonStyle.Foreground(ColorDimFg).Faint(true)

	SuccessBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(ColorSuccess).
				Foreground(ColorBannerText).
				Padding(0, 2)
	ErrorBannerStyle = SuccessBannerStyle.BorderForeground(ColorFailed)

	StatusStyleSuccess    = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatusStyleFailed     = lipgloss.NewStyle().Foreground(ColorFailed)
	StatusStyleProcessing = lipgloss.NewStyle().Foreground(ColorAccent)
)
