package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/postdeck/internal/attach"
	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/submit"
)

var platformLabels = map[compose.Platform]string{
	compose.Telegram:  "Telegram",
	compose.VK:        "VK",
	compose.Instagram: "Instagram",
	compose.OK:        "OK",
	compose.Max:       "MAX",
}

func (m *model) View() string {
	parts := []string{
		m.heroView(),
		m.editorPanel(),
		m.attachmentsPanel(),
		m.buttonsPanel(),
		m.settingsPanel(),
		m.submitLine(),
		m.noticesView(),
		m.historyPanel(),
		m.promptView(),
		m.statusBarView(),
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	st := m.styles
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		st.title.Render("postdeck"),
		"  ",
		st.tagline.Render(heroTagline),
	)
}

func (m *model) header(f focusArea, title string) string {
	if m.focus == f {
		return m.styles.focusedHeader.Render(title)
	}
	return m.styles.sectionHeader.Render(title)
}

func (m *model) editorPanel() string {
	st := m.styles
	counter := m.session.CharCounter()
	counterText := fmt.Sprintf("%d/%d", counter.Len, counter.Limit)
	if counter.Over {
		counterText = st.danger.Render(counterText)
	} else {
		counterText = st.helper.Render(counterText)
	}
	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, m.header(focusEditor, "Post"), "  ", counterText),
		m.editor.View(),
	}
	if settings := m.session.Settings(); settings.SeparateVK {
		vk := settings.TextVK
		if strings.TrimSpace(vk) == "" {
			vk = st.helper.Render("(empty)")
		}
		lines = append(lines, st.helper.Render("VK text: ")+trimmedPreview(vk, m.wrapWidth(10)))
	}
	return strings.Join(lines, "\n")
}

func (m *model) attachmentsPanel() string {
	st := m.styles
	items := m.session.Attachments.Items()
	var b strings.Builder
	b.WriteString(m.header(focusAttachments, fmt.Sprintf("Attachments (%d)", len(items))))
	if len(items) == 0 {
		b.WriteRune('\n')
		b.WriteString(st.helper.Render("Ctrl+O to add files, or focus here and paste paths."))
		return b.String()
	}
	for idx, a := range items {
		b.WriteRune('\n')
		row := fmt.Sprintf("%d. %s  %s  %.2f MB", idx+1, a.Name, a.Kind, a.SizeMB())
		if detail := m.previewDetail(a); detail != "" {
			row += "  " + st.helper.Render(detail)
		}
		if m.focus == focusAttachments && idx == m.attachCursor {
			row = st.currentLine.Render("▸ " + stripANSI(row))
		} else {
			row = "  " + row
		}
		b.WriteString(row)
	}
	return b.String()
}

func (m *model) previewDetail(a attach.Attachment) string {
	p, err := m.previews.Get(a)
	if err != nil {
		return ""
	}
	return p.Detail
}

func (m *model) buttonsPanel() string {
	if !m.session.ButtonsAllowed() {
		return ""
	}
	st := m.styles
	rows := m.session.Buttons.Rows()
	var b strings.Builder
	b.WriteString(m.header(focusButtons, fmt.Sprintf("Buttons (%d)", len(rows))))
	if len(rows) == 0 {
		b.WriteRune('\n')
		b.WriteString(st.helper.Render("Focus here and press a to add a button row."))
		return b.String()
	}
	for idx, row := range rows {
		b.WriteRune('\n')
		counter := row.Counter()
		counterText := fmt.Sprintf("%d/%d", counter.Len, counter.Max)
		if counter.Warning {
			counterText = st.warning.Render(counterText)
		} else {
			counterText = st.helper.Render(counterText)
		}
		kind := "callback"
		if row.IsURL() {
			kind = "link"
		}
		text := row.Text
		if text == "" {
			text = "…"
		}
		line := fmt.Sprintf("[%s] → %s  %s %s", text, row.Target, st.helper.Render(kind), counterText)
		if m.focus == focusButtons && idx == m.buttonCursor {
			line = st.currentLine.Render("▸ " + stripANSI(line))
		} else {
			line = "  " + line
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m *model) settingsPanel() string {
	st := m.styles
	settings := m.session.Settings()
	var platforms []string
	for idx, p := range compose.AllPlatforms {
		target := settings.Platforms.Targets[p]
		check := " "
		if target.Publish {
			check = "x"
		}
		label := fmt.Sprintf("%d[%s] %s", idx+1, check, platformLabels[p])
		if target.Publish && target.Channel != "" {
			label += st.helper.Render(" → " + target.Channel)
		}
		platforms = append(platforms, label)
	}
	schedule := "now"
	if settings.Schedule != "" {
		schedule = fmt.Sprintf("%s (UTC%+d min)", settings.Schedule, m.session.TZOffset())
	}
	optimize := "off"
	if settings.OptimizeVideo {
		optimize = "on"
	}
	layout := settings.Platforms.VKLayout
	if layout == "" {
		layout = compose.DefaultVKLayout
	}
	return strings.Join([]string{
		strings.Join(platforms, "  "),
		st.helper.Render(fmt.Sprintf("Schedule: %s  •  Optimize video: %s  •  VK layout: %s", schedule, optimize, layout)),
	}, "\n")
}

func (m *model) submitLine() string {
	st := m.styles
	if busy, kind := m.session.Busy(); busy {
		label := "Publishing…"
		if kind == submit.BusyVideoOptimize {
			label = "Optimizing video and publishing…"
		}
		return fmt.Sprintf("%s %s", m.spinner.View(), st.info.Render(label))
	}
	if m.session.ControlEnabled() {
		return st.submitEnabled.Render("Ctrl+S  Publish")
	}
	return st.submitDisabled.Render("Ctrl+S  Publish (add text or a file)")
}

func (m *model) noticesView() string {
	if len(m.notices) == 0 {
		return ""
	}
	st := m.styles
	wrap := m.wrapWidth(4)
	lines := make([]string, 0, len(m.notices))
	for _, n := range m.notices {
		lines = append(lines, st.forLevel(n.Level).Render(wordwrap.String(n.Message, wrap)))
	}
	return st.noticeBox.Render(strings.Join(lines, "\n"))
}

func (m *model) historyPanel() string {
	st := m.styles
	title := fmt.Sprintf("History (%d)", m.history.Len())
	meta := pageLabel(m.history)
	if q := m.history.Query(); q != "" {
		meta += fmt.Sprintf("  •  filter %q", q)
	}
	view := m.buildHistoryContent()
	m.viewport.SetContent(view.content)
	if view.cursorLine < m.viewport.YOffset || view.cursorLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(view.cursorLine)
	}
	return strings.Join([]string{
		lipgloss.JoinHorizontal(lipgloss.Top, m.header(focusHistory, title), "  ", st.helper.Render(meta)),
		m.viewport.View(),
	}, "\n")
}

func (m *model) promptView() string {
	if m.promptMode == promptNone {
		return ""
	}
	st := m.styles
	var title string
	switch m.promptMode {
	case promptAttach:
		title = "Attach files"
	case promptSchedule:
		title = "Schedule"
	case promptSearch:
		title = "Search history"
	case promptTextVK:
		title = "VK text"
	case promptButtonText:
		title = "Button text"
	case promptButtonTarget:
		counter := compose.Button{Target: m.prompt.Value()}.Counter()
		title = fmt.Sprintf("Button target %d/%d", counter.Len, counter.Max)
		if counter.Warning {
			title = st.warning.Render(title)
		}
	}
	return strings.Join([]string{
		st.sectionHeader.Render(title),
		m.prompt.View(),
		st.helper.Render("Enter to apply, Esc to cancel."),
	}, "\n")
}

func (m *model) statusBarView() string {
	stats := []string{
		fmt.Sprintf("Focus %s", m.focus),
		fmt.Sprintf("Theme %s", m.theme),
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	stats = append(stats, "F1 help")
	return m.styles.statusBar.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	counts := map[jobKind]int{}
	for _, snap := range m.running {
		counts[snap.Kind]++
	}
	var badges []string
	for _, kind := range []jobKind{jobKindSubmit, jobKindPoll, jobKindPage} {
		if n := counts[kind]; n > 0 {
			badges = append(badges, fmt.Sprintf("%s %d", kind, n))
		}
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	st := m.styles
	hints := []keyHint{
		{"Ctrl+S", "Publish"},
		{"Tab", "Next panel"},
		{"Ctrl+O", "Attach files"},
		{"K/J", "Reorder file"},
		{"x", "Remove item"},
		{"a", "Add button"},
		{"u", "Edit target"},
		{"Alt+1-5", "Toggle platform"},
		{"Ctrl+L", "Schedule"},
		{"Ctrl+P", "Optimize video"},
		{"Ctrl+E", "Separate VK text"},
		{"Ctrl+G", "Signature"},
		{"/", "Search history"},
		{"c", "Clone post"},
		{"Ctrl+T", "Theme"},
	}
	rows := []string{st.sectionHeader.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := st.key.Render(hint.Key)
			desc := st.keyDesc.Render(fmt.Sprintf(" %-18s", hint.Description))
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return st.legendBox.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(text string) string {
	return ansiPattern.ReplaceAllString(text, "")
}
