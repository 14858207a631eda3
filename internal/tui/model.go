package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/attach"
	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/history"
	"github.com/csheth/postdeck/internal/notice"
	"github.com/csheth/postdeck/internal/poll"
	"github.com/csheth/postdeck/internal/session"
	"github.com/csheth/postdeck/internal/submit"
	"github.com/csheth/postdeck/internal/theme"
)

// Backend is everything the UI needs from the posting server.
type Backend interface {
	submit.Sender
	poll.StatusSource
	LoadPage(ctx context.Context) (string, error)
}

// Config wires runtime options into the TUI program.
type Config struct {
	// Context bounds every background job. Defaults to context.Background.
	Context    context.Context
	Backend    Backend
	Logger     *zap.Logger
	Location   *time.Location
	Settings   session.Settings
	Signatures []string
	// Theme persists the color scheme. Nil keeps it in memory only.
	Theme      *theme.Store
	SystemDark bool
	Poll       poll.Options
	Now        func() time.Time
}

type model struct {
	config Config
	logger *zap.Logger

	jobs      *jobBus
	bridge    *bridge
	session   *session.Session
	lifecycle *submit.Lifecycle
	poller    *poll.Poller
	previews  *attach.PreviewCache
	history   *history.List
	watcher   *theme.Watcher

	editor     *editor
	prompt     textinput.Model
	promptMode promptMode
	spinner    spinner.Model
	viewport   viewport.Model
	layout     pageLayout

	focus         focusArea
	attachCursor  int
	buttonCursor  int
	historyCursor int
	signatureIdx  int

	notices      []notice.Notice
	noticeSeq    int
	running      map[string]jobSnapshot
	pendingPolls []backend.PostID

	theme       theme.Theme
	styles      styles
	helpVisible bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	prompt := textinput.New()
	prompt.CharLimit = 1024
	prompt.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(76, 8)
	vp.MouseWheelEnabled = true

	m := &model{
		config:   config,
		logger:   config.Logger,
		jobs:     newJobBus(config.Context, config.Logger),
		bridge:   newBridge(config.Logger),
		previews: attach.NewPreviewCache(config.Logger),
		history:  history.NewList(nil, false),
		editor:   newEditor(),
		prompt:   prompt,
		spinner:  spin,
		viewport: vp,
		layout:   newPageLayout(),
		focus:    focusEditor,
		running:  map[string]jobSnapshot{},
	}
	m.session = session.New(m.editor, m.bridge, config.Logger, config.Settings, attach.WithPreviews(m.previews))
	m.logger = m.session.Logger()

	opts := config.Poll
	opts.Location = config.Location
	opts.Logger = m.logger
	m.poller = poll.New(config.Backend, m.bridge, m.bridge, opts)
	m.lifecycle = submit.New(m.session, m.session, config.Backend, m, m.bridge,
		submit.WithClock(config.Now),
		submit.WithLogger(m.logger),
	)

	m.theme = theme.Preferred("", false, config.SystemDark)
	if config.Theme != nil {
		stored, ok, err := config.Theme.Load()
		if err != nil {
			m.logger.Warn("failed to read theme", zap.Error(err))
		}
		m.theme = theme.Preferred(stored, ok, config.SystemDark)
		if w, err := config.Theme.Watch(m.logger); err != nil {
			m.logger.Warn("theme sync disabled", zap.Error(err))
		} else {
			m.watcher = w
		}
	}
	m.styles = newStyles(m.theme)
	return m
}

// StartPoll implements submit.PollStarter. Finish runs inside Update, so the
// ids are turned into jobs once it returns.
func (m *model) StartPoll(id backend.PostID) {
	m.pendingPolls = append(m.pendingPolls, id)
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.bridge.next(),
		m.loadHistoryCmd(),
		watchTheme(m.watcher),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.spinnerActive() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.focus != focusHistory {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.editor.SetWidth(m.layout.contentWidth)
		m.editor.area.SetHeight(m.layout.editorHeight)
		m.viewport.Width = m.layout.contentWidth
		m.viewport.Height = m.layout.historyHeight
		m.prompt.Width = m.layout.contentWidth - 4
		return m, nil
	case jobSignalMsg:
		m.running[msg.Snapshot.ID] = msg.Snapshot
		return m, m.spinner.Tick
	case jobResultEnvelope:
		delete(m.running, msg.Snapshot.ID)
		return m.handleJobResult(msg.Payload)
	case noticeMsg:
		cmd := m.pushNotice(msg.level, msg.message)
		return m, tea.Batch(cmd, m.bridge.next())
	case historyPrependMsg:
		items, err := history.ParseFragment(msg.fragment)
		if err != nil {
			m.logger.Warn("failed to parse history fragment", zap.Error(err))
		} else {
			m.history.Prepend(items...)
		}
		return m, m.bridge.next()
	case historyReIndexMsg:
		m.history.ReIndex()
		m.clampHistoryCursor()
		return m, m.bridge.next()
	case historyReloadMsg:
		return m, tea.Batch(reloadAfter(msg.after), m.bridge.next())
	case reloadDueMsg:
		return m, m.loadHistoryCmd()
	case themeChangedMsg:
		m.applyTheme(msg.theme)
		return m, watchTheme(m.watcher)
	case noticeExpiredMsg:
		m.dropNotice(msg.id)
		return m, nil
	}
	return m, nil
}

func (m *model) handleJobResult(payload tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := payload.(type) {
	case submitResultMsg:
		outcome := m.lifecycle.Finish(msg.resp)
		if outcome.State == submit.Success {
			m.attachCursor = 0
		}
		m.clampButtonCursor()
		var cmds []tea.Cmd
		for _, id := range m.pendingPolls {
			cmds = append(cmds, m.jobs.Start(jobKindPoll, pollJob(m.poller, id)))
		}
		m.pendingPolls = nil
		return m, tea.Batch(cmds...)
	case pollResultMsg:
		m.logger.Info("poll finished",
			zap.String("post_id", string(msg.result.PostID)),
			zap.Stringer("outcome", msg.result.Outcome),
			zap.Int("attempts", msg.result.Attempts),
		)
		return m, nil
	case pageResultMsg:
		if msg.err != nil {
			m.logger.Warn("failed to load history", zap.Error(msg.err))
			return m, m.pushNotice(notice.LevelWarning, "Could not load the publication history.")
		}
		m.history.Replace(msg.items, msg.found)
		m.bridge.exists.Store(msg.found)
		m.clampHistoryCursor()
		return m, nil
	}
	return m, nil
}

func (m *model) loadHistoryCmd() tea.Cmd {
	if m.config.Backend == nil {
		return nil
	}
	return m.jobs.Start(jobKindPage, loadPageJob(m.config.Backend, m.config.Location, m.logger))
}

func (m *model) submitCmd() tea.Cmd {
	attempt, err := m.lifecycle.Begin()
	if err != nil {
		if !errors.Is(err, submit.ErrSubmitDisabled) {
			m.logger.Warn("submit not started", zap.Error(err))
		}
		return nil
	}
	return m.jobs.Start(jobKindSubmit, submitJob(attempt))
}

func (m *model) spinnerActive() bool {
	busy, _ := m.session.Busy()
	return busy || len(m.running) > 0
}

func (m *model) pushNotice(level notice.Level, message string) tea.Cmd {
	m.noticeSeq++
	n := notice.Notice{ID: m.noticeSeq, Level: level, Message: message, At: m.config.Now()}
	m.notices = append(m.notices, n)
	if len(m.notices) > maxVisibleNotices {
		m.notices = m.notices[len(m.notices)-maxVisibleNotices:]
	}
	return expireNotice(n.ID)
}

func (m *model) dropNotice(id int) {
	for i, n := range m.notices {
		if n.ID == id {
			m.notices = append(m.notices[:i], m.notices[i+1:]...)
			return
		}
	}
}

func (m *model) applyTheme(t theme.Theme) {
	if t == m.theme {
		return
	}
	m.theme = t
	m.styles = newStyles(t)
}

func (m *model) toggleTheme() {
	next := m.theme.Toggle()
	m.applyTheme(next)
	if m.config.Theme == nil {
		return
	}
	if err := m.config.Theme.Save(next); err != nil {
		m.logger.Warn("failed to save theme", zap.Error(err))
	}
}

func (m *model) addAttachments(input string, dropped bool) {
	candidates, problems := candidatesFromInput(input)
	for _, p := range problems {
		m.bridge.Notify(notice.LevelWarning, p)
	}
	if len(candidates) == 0 {
		return
	}
	if dropped {
		m.session.Attachments.AddDropped(candidates...)
	} else {
		m.session.Attachments.Add(candidates...)
	}
	m.clampButtonCursor()
}

func (m *model) insertSignature() {
	sigs := m.config.Signatures
	if len(sigs) == 0 {
		m.bridge.Notify(notice.LevelWarning, "No signatures configured.")
		return
	}
	m.editor.AppendSignature(sigs[m.signatureIdx%len(sigs)])
	m.signatureIdx++
	m.session.EditorChanged()
}

func (m *model) cloneSelected() {
	visible := m.history.Visible()
	if m.historyCursor < 0 || m.historyCursor >= len(visible) {
		return
	}
	editorHTML, plain, err := compose.CloneFromTelegram(visible[m.historyCursor].Body)
	if err != nil {
		m.logger.Warn("failed to clone post", zap.Error(err))
		m.bridge.Notify(notice.LevelDanger, "Could not copy this post.")
		return
	}
	m.editor.Load(editorHTML, plain)
	m.session.EditorChanged()
	m.setFocus(focusEditor)
	m.bridge.Notify(notice.LevelInfo, "Post copied into the editor.")
}

func (m *model) clampHistoryCursor() {
	n := len(m.history.Visible())
	if m.historyCursor >= n {
		m.historyCursor = n - 1
	}
	if m.historyCursor < 0 {
		m.historyCursor = 0
	}
}

func (m *model) clampButtonCursor() {
	if n := m.session.Attachments.Len(); m.attachCursor >= n {
		m.attachCursor = max(n-1, 0)
	}
	if n := m.session.Buttons.Len(); m.buttonCursor >= n {
		m.buttonCursor = max(n-1, 0)
	}
	if m.focus == focusButtons && !m.session.ButtonsAllowed() {
		m.setFocus(focusAttachments)
	}
}

func (m *model) setFocus(f focusArea) {
	m.focus = f
	if f == focusEditor {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}

func (m *model) cycleFocus(delta int) {
	idx := 0
	for i, f := range focusSequence {
		if f == m.focus {
			idx = i
		}
	}
	for range focusSequence {
		idx = (idx + delta + len(focusSequence)) % len(focusSequence)
		if focusSequence[idx] == focusButtons && !m.session.ButtonsAllowed() {
			continue
		}
		break
	}
	m.setFocus(focusSequence[idx])
}

func (m *model) shutdown() {
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.logger.Debug("theme watcher close", zap.Error(err))
		}
		m.watcher = nil
	}
}
