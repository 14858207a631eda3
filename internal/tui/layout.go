package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/postdeck/internal/history"
)

type pageLayout struct {
	windowWidth   int
	windowHeight  int
	contentWidth  int
	editorHeight  int
	historyHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		contentWidth:  76,
		editorHeight:  6,
		historyHeight: 8,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.contentWidth = innerWidth
	l.editorHeight = 6
	if height < 30 {
		l.editorHeight = 3
	}
	const chrome = 18
	l.historyHeight = height - chrome - l.editorHeight
	if l.historyHeight < 4 {
		l.historyHeight = 4
	}
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

type historyView struct {
	content    string
	cursorLine int
}

// buildHistoryContent renders the visible page. cursorLine is where the
// selected item starts so the viewport can follow it.
func (m *model) buildHistoryContent() historyView {
	cb := &contentBuilder{}
	st := m.styles
	if !m.history.Exists() {
		cb.WriteString(st.helper.Render("History is not available yet. It reloads after the next publication."))
		return historyView{content: cb.String()}
	}
	visible := m.history.Visible()
	if len(visible) == 0 {
		if m.history.Query() != "" {
			cb.WriteString(st.helper.Render(fmt.Sprintf("Nothing matches %q.", m.history.Query())))
		} else {
			cb.WriteString(st.helper.Render("No posts yet."))
		}
		return historyView{content: cb.String()}
	}
	wrap := m.wrapWidth(6)
	query := m.history.Query()
	cursorLine := 0
	for idx, item := range visible {
		selected := m.focus == focusHistory && idx == m.historyCursor
		if selected {
			cursorLine = cb.Line()
		}
		marker := "  "
		if selected {
			marker = "▸ "
		}
		when := item.Time
		if when == "" {
			when = "—"
		}
		header := fmt.Sprintf("%s%s  %s", marker, highlightQuery(when, query, st), m.statusBadge(item.Status))
		if selected {
			header = st.currentLine.Render(stripANSI(header))
		}
		cb.WriteString(header)
		cb.WriteRune('\n')
		body := wordwrap.String(trimmedPreview(item.Text, historyPreviewLimit), wrap)
		cb.WriteString(indentMultiline(highlightQuery(body, query, st), "    "))
		cb.WriteRune('\n')
	}
	return historyView{content: cb.String(), cursorLine: cursorLine}
}

func (m *model) statusBadge(status string) string {
	st := m.styles
	switch status {
	case "published":
		return st.success.Render("published")
	case "failed":
		return st.danger.Render("failed")
	case "":
		return ""
	default:
		return st.helper.Render(status)
	}
}

func highlightQuery(content, query string, st styles) string {
	if strings.TrimSpace(query) == "" {
		return content
	}
	return highlightMatches(content, findMatches(content, query), -1, st)
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.layout.contentWidth
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

type matchRange struct {
	start int
	end   int
}

func findMatches(content, query string) []matchRange {
	lowerContent := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)
	if lowerQuery == "" || len(lowerContent) != len(content) {
		return nil
	}
	var matches []matchRange
	searchIdx := 0
	for {
		idx := strings.Index(lowerContent[searchIdx:], lowerQuery)
		if idx == -1 {
			break
		}
		start := searchIdx + idx
		end := start + len(lowerQuery)
		matches = append(matches, matchRange{start: start, end: end})
		searchIdx = end
		if searchIdx >= len(content) {
			break
		}
	}
	return matches
}

func highlightMatches(content string, matches []matchRange, current int, st styles) string {
	if len(matches) == 0 {
		return content
	}
	var b strings.Builder
	pos := 0
	for idx, match := range matches {
		if match.start > len(content) {
			break
		}
		if match.start > pos {
			b.WriteString(content[pos:match.start])
		}
		segmentEnd := match.end
		if segmentEnd > len(content) {
			segmentEnd = len(content)
		}
		segment := content[match.start:segmentEnd]
		if idx == current {
			b.WriteString(st.searchCurrent.Render(segment))
		} else {
			b.WriteString(st.searchHighlight.Render(segment))
		}
		pos = segmentEnd
	}
	if pos < len(content) {
		b.WriteString(content[pos:])
	}
	return b.String()
}

func pageLabel(l *history.List) string {
	return fmt.Sprintf("page %d/%d", l.CurrentPage()+1, l.Pages())
}
