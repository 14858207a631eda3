package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/notice"
)

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		m.shutdown()
		return m, tea.Quit
	}
	if m.promptMode != promptNone {
		return m.handlePromptKey(key)
	}

	switch key.String() {
	case "ctrl+s":
		return m, m.submitCmd()
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "ctrl+t":
		m.toggleTheme()
		return m, nil
	case "ctrl+o":
		return m, m.openPrompt(promptAttach, "")
	case "ctrl+l":
		return m, m.openPrompt(promptSchedule, m.session.Settings().Schedule)
	case "ctrl+p":
		m.session.ToggleOptimizeVideo()
		return m, nil
	case "ctrl+e":
		on := !m.session.Settings().SeparateVK
		m.session.SetSeparateVK(on)
		if on {
			return m, m.openPrompt(promptTextVK, m.session.Settings().TextVK)
		}
		return m, nil
	case "ctrl+g":
		m.insertSignature()
		return m, nil
	case "ctrl+r":
		return m, m.loadHistoryCmd()
	case "f1":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
		idx := int(key.String()[len("alt+")] - '1')
		if idx < len(compose.AllPlatforms) {
			m.session.TogglePlatform(compose.AllPlatforms[idx])
		}
		return m, nil
	}

	switch m.focus {
	case focusAttachments:
		return m.handleAttachmentsKey(key)
	case focusButtons:
		return m.handleButtonsKey(key)
	case focusHistory:
		return m.handleHistoryKey(key)
	default:
		cmd, changed := m.editor.Update(key)
		if changed {
			m.session.EditorChanged()
		}
		return m, cmd
	}
}

func (m *model) handleAttachmentsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Terminals without bracketed paste deliver a dropped path as one rune burst.
	if key.Paste || (key.Type == tea.KeyRunes && len(key.Runes) > 1) {
		m.addAttachments(string(key.Runes), true)
		return m, nil
	}
	set := m.session.Attachments
	switch key.String() {
	case "up", "k":
		if m.attachCursor > 0 {
			m.attachCursor--
		}
	case "down", "j":
		if m.attachCursor < set.Len()-1 {
			m.attachCursor++
		}
	case "shift+up", "K":
		if m.attachCursor > 0 {
			set.Reorder(m.attachCursor, m.attachCursor-1)
			m.attachCursor--
		}
	case "shift+down", "J":
		if m.attachCursor < set.Len()-1 {
			set.Reorder(m.attachCursor, m.attachCursor+1)
			m.attachCursor++
		}
	case "x", "delete", "backspace":
		if set.Remove(m.attachCursor) {
			m.clampButtonCursor()
		}
	case "o", "enter":
		return m, m.openPrompt(promptAttach, "")
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

func (m *model) handleButtonsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	buttons := m.session.Buttons
	switch key.String() {
	case "up", "k":
		if m.buttonCursor > 0 {
			m.buttonCursor--
		}
	case "down", "j":
		if m.buttonCursor < buttons.Len()-1 {
			m.buttonCursor++
		}
	case "a":
		m.buttonCursor = buttons.Add()
		return m, m.openPrompt(promptButtonText, "")
	case "enter":
		if buttons.Len() == 0 {
			m.buttonCursor = buttons.Add()
			return m, m.openPrompt(promptButtonText, "")
		}
		return m, m.openPrompt(promptButtonText, buttons.Rows()[m.buttonCursor].Text)
	case "u":
		if buttons.Len() > 0 {
			return m, m.openPrompt(promptButtonTarget, buttons.Rows()[m.buttonCursor].Target)
		}
	case "x", "delete", "backspace":
		buttons.Remove(m.buttonCursor)
		m.clampButtonCursor()
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

func (m *model) handleHistoryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case "down", "j":
		if m.historyCursor < len(m.history.Visible())-1 {
			m.historyCursor++
		}
	case "left", "pgup", "h":
		m.history.SetPage(m.history.CurrentPage() - 1)
		m.historyCursor = 0
	case "right", "pgdown", "l":
		m.history.SetPage(m.history.CurrentPage() + 1)
		m.historyCursor = 0
	case "/":
		return m, m.openPrompt(promptSearch, m.history.Query())
	case "esc":
		m.history.Search("")
		m.historyCursor = 0
	case "c", "enter":
		m.cloneSelected()
	case "r":
		return m, m.loadHistoryCmd()
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

func (m *model) openPrompt(mode promptMode, value string) tea.Cmd {
	m.promptMode = mode
	m.prompt.CharLimit = 1024
	switch mode {
	case promptAttach:
		m.prompt.Placeholder = promptAttachPlaceholder
	case promptSchedule:
		m.prompt.Placeholder = promptSchedulePlaceholder
	case promptSearch:
		m.prompt.Placeholder = promptSearchPlaceholder
	case promptTextVK:
		m.prompt.Placeholder = promptTextVKPlaceholder
		m.prompt.CharLimit = 0
	case promptButtonText:
		m.prompt.Placeholder = promptButtonPlaceholder
	case promptButtonTarget:
		m.prompt.Placeholder = promptTargetPlaceholder
		m.prompt.CharLimit = compose.MaxTargetLen
	}
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	m.editor.Blur()
	return m.prompt.Focus()
}

func (m *model) closePrompt() {
	m.promptMode = promptNone
	m.prompt.Blur()
	m.prompt.SetValue("")
	if m.focus == focusEditor {
		m.editor.Focus()
	}
}

func (m *model) handlePromptKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		return m, m.applyPrompt(m.prompt.Value())
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(key)
	return m, cmd
}

func (m *model) applyPrompt(value string) tea.Cmd {
	mode := m.promptMode
	m.closePrompt()
	switch mode {
	case promptAttach:
		m.addAttachments(value, false)
	case promptSchedule:
		if err := m.session.SetSchedule(value, m.config.Now()); err != nil {
			m.bridge.Notify(notice.LevelDanger, err.Error())
		}
	case promptSearch:
		m.history.Search(strings.TrimSpace(value))
		m.historyCursor = 0
	case promptTextVK:
		m.session.SetTextVK(value)
	case promptButtonText:
		m.session.Buttons.SetText(m.buttonCursor, value)
		return m.openPrompt(promptButtonTarget, m.session.Buttons.Rows()[m.buttonCursor].Target)
	case promptButtonTarget:
		m.session.Buttons.SetTarget(m.buttonCursor, value)
	}
	return nil
}
