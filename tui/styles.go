package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/chatsphere/pkg/session"
)

// Styles is the lipgloss palette for one theme.
type Styles struct {
	Title     lipgloss.Style
	Sender    lipgloss.Style
	Timestamp lipgloss.Style
	Block     lipgloss.Style
	Busy      lipgloss.Style
	Help      lipgloss.Style
	Notices   map[session.NoticeLevel]lipgloss.Style
}

// DetectTheme picks the theme matching the terminal background.
func DetectTheme() session.Theme {
	if termenv.HasDarkBackground() {
		return session.ThemeDark
	}
	return session.ThemeLight
}

// NewStyles returns the palette for theme.
func NewStyles(theme session.Theme) Styles {
	fg, block, muted := lipgloss.Color("#ffffff"), lipgloss.Color("#2f2f2f"), lipgloss.Color("#9e9e9e")
	if theme == session.ThemeLight {
		fg, block, muted = lipgloss.Color("#000000"), lipgloss.Color("#e0e0e0"), lipgloss.Color("#616161")
	}

	notice := lipgloss.NewStyle().Padding(0, 1)
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(fg).MarginBottom(1),
		Sender:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Block:     lipgloss.NewStyle().Background(block).Foreground(fg).Padding(0, 1).MarginBottom(1),
		Busy:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		Help:      lipgloss.NewStyle().Foreground(muted),
		Notices: map[session.NoticeLevel]lipgloss.Style{
			session.NoticeInfo:    notice.Foreground(lipgloss.Color("#0b3d6b")).Background(lipgloss.Color("#d9ecff")),
			session.NoticeSuccess: notice.Foreground(lipgloss.Color("#1b5e20")).Background(lipgloss.Color("#dff5e1")),
			session.NoticeWarning: notice.Foreground(lipgloss.Color("#7a5200")).Background(lipgloss.Color("#fff4d6")),
			session.NoticeError:   notice.Foreground(lipgloss.Color("#8b1a14")).Background(lipgloss.Color("#fde2e1")),
		},
	}
}
