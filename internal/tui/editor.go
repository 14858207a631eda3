package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/postdeck/internal/compose"
)

// editor adapts a textarea to session.Editor. A cloned post keeps its rich
// HTML until the next keystroke changes the text.
type editor struct {
	area      textarea.Model
	cloneHTML string
	clonedAt  string
}

func newEditor() *editor {
	area := textarea.New()
	area.Placeholder = "Write the post…"
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.SetWidth(76)
	area.SetHeight(6)
	area.Focus()
	return &editor{area: area}
}

func (e *editor) PlainText() string {
	return e.area.Value()
}

func (e *editor) HTML() string {
	if e.cloneHTML != "" && e.area.Value() == e.clonedAt {
		return e.cloneHTML
	}
	return compose.EditorHTML(e.area.Value())
}

func (e *editor) Reset() {
	e.area.Reset()
	e.cloneHTML = ""
	e.clonedAt = ""
}

// Load replaces the content with a cloned post.
func (e *editor) Load(editorHTML, plain string) {
	e.area.SetValue(plain)
	e.cloneHTML = editorHTML
	e.clonedAt = plain
}

// AppendSignature inserts sig on a new line at the end.
func (e *editor) AppendSignature(sig string) {
	e.area.SetValue(compose.InsertSignature(e.area.Value(), sig))
}

// Update forwards a key and reports whether the text changed.
func (e *editor) Update(msg tea.Msg) (tea.Cmd, bool) {
	before := e.area.Value()
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd, e.area.Value() != before
}

func (e *editor) SetWidth(w int) {
	e.area.SetWidth(w)
}

func (e *editor) Focus() tea.Cmd {
	return e.area.Focus()
}

func (e *editor) Blur() {
	e.area.Blur()
}

func (e *editor) View() string {
	return e.area.View()
}
