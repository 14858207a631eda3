package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/postdeck/internal/notice"
	"github.com/csheth/postdeck/internal/theme"
)

type palette struct {
	accent    lipgloss.Color
	text      lipgloss.Color
	muted     lipgloss.Color
	surface   lipgloss.Color
	highlight lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	info      lipgloss.Color
}

var (
	darkPalette = palette{
		accent:    lipgloss.Color("#ff8c00"),
		text:      lipgloss.Color("#fff4d0"),
		muted:     lipgloss.Color("244"),
		surface:   lipgloss.Color("#2b1400"),
		highlight: lipgloss.Color("#8ecae6"),
		success:   lipgloss.Color("#a3be8c"),
		warning:   lipgloss.Color("#ffd166"),
		danger:    lipgloss.Color("9"),
		info:      lipgloss.Color("81"),
	}
	lightPalette = palette{
		accent:    lipgloss.Color("#c45500"),
		text:      lipgloss.Color("#1f1f1f"),
		muted:     lipgloss.Color("242"),
		surface:   lipgloss.Color("#fff4d0"),
		highlight: lipgloss.Color("#bde0fe"),
		success:   lipgloss.Color("#2e7d32"),
		warning:   lipgloss.Color("#b26a00"),
		danger:    lipgloss.Color("#c62828"),
		info:      lipgloss.Color("#1565c0"),
	}
)

type styles struct {
	title           lipgloss.Style
	tagline         lipgloss.Style
	sectionHeader   lipgloss.Style
	focusedHeader   lipgloss.Style
	helper          lipgloss.Style
	success         lipgloss.Style
	warning         lipgloss.Style
	danger          lipgloss.Style
	info            lipgloss.Style
	currentLine     lipgloss.Style
	searchHighlight lipgloss.Style
	searchCurrent   lipgloss.Style
	statusBar       lipgloss.Style
	key             lipgloss.Style
	keyDesc         lipgloss.Style
	legendBox       lipgloss.Style
	submitEnabled   lipgloss.Style
	submitDisabled  lipgloss.Style
	noticeBox       lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	p := lightPalette
	if t == theme.Dark {
		p = darkPalette
	}
	return styles{
		title:           lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		tagline:         lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		sectionHeader:   lipgloss.NewStyle().Bold(true).Foreground(p.info),
		focusedHeader:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(p.accent),
		helper:          lipgloss.NewStyle().Foreground(p.muted),
		success:         lipgloss.NewStyle().Foreground(p.success),
		warning:         lipgloss.NewStyle().Foreground(p.warning),
		danger:          lipgloss.NewStyle().Foreground(p.danger),
		info:            lipgloss.NewStyle().Foreground(p.info),
		currentLine:     lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(p.highlight),
		searchHighlight: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190")),
		searchCurrent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229")),
		statusBar:       lipgloss.NewStyle().Foreground(p.text).Background(p.surface).Padding(0, 1),
		key:             lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(p.warning).Padding(0, 1),
		keyDesc:         lipgloss.NewStyle().Foreground(p.text),
		legendBox:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.muted).Padding(0, 1),
		submitEnabled:   lipgloss.NewStyle().Bold(true).Foreground(p.surface).Background(p.accent).Padding(0, 2),
		submitDisabled:  lipgloss.NewStyle().Foreground(p.muted).Padding(0, 2),
		noticeBox:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (s styles) forLevel(level notice.Level) lipgloss.Style {
	switch level {
	case notice.LevelSuccess:
		return s.success
	case notice.LevelWarning:
		return s.warning
	case notice.LevelDanger:
		return s.danger
	default:
		return s.info
	}
}
