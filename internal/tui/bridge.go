package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/notice"
)

// Messages published by components that may run off the event loop.
type noticeMsg struct {
	level   notice.Level
	message string
}

type historyPrependMsg struct {
	fragment string
}

type historyReIndexMsg struct{}

type historyReloadMsg struct {
	after time.Duration
}

// bridge turns callbacks from the poller, the lifecycle and the session into
// tea messages. Sends never block; a full buffer drops the event.
type bridge struct {
	events chan tea.Msg
	exists atomic.Bool
	logger *zap.Logger
}

func newBridge(logger *zap.Logger) *bridge {
	return &bridge{events: make(chan tea.Msg, eventBuffer), logger: logger}
}

func (b *bridge) publish(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
		b.logger.Warn("ui event dropped", zap.String("type", typeName(msg)))
	}
}

// Notify implements notice.Notifier.
func (b *bridge) Notify(level notice.Level, message string) {
	b.publish(noticeMsg{level: level, message: message})
}

// Exists implements poll.HistoryView. The flag is mirrored from the event loop.
func (b *bridge) Exists() bool {
	return b.exists.Load()
}

func (b *bridge) Prepend(fragment string) {
	b.publish(historyPrependMsg{fragment: fragment})
}

func (b *bridge) ReIndex() {
	b.publish(historyReIndexMsg{})
}

func (b *bridge) ScheduleReload(after time.Duration) {
	b.publish(historyReloadMsg{after: after})
}

// next waits for one event. Update re-arms it after every delivery.
func (b *bridge) next() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}

func typeName(msg tea.Msg) string {
	switch msg.(type) {
	case noticeMsg:
		return "notice"
	case historyPrependMsg:
		return "prepend"
	case historyReIndexMsg:
		return "reindex"
	case historyReloadMsg:
		return "reload"
	default:
		return "unknown"
	}
}
