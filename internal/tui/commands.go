package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/attach"
	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/history"
	"github.com/csheth/postdeck/internal/poll"
	"github.com/csheth/postdeck/internal/submit"
	"github.com/csheth/postdeck/internal/theme"
)

type submitResultMsg struct {
	resp submit.Response
}

type pollResultMsg struct {
	result poll.Result
}

type pageResultMsg struct {
	items []history.Item
	found bool
	err   error
}

type reloadDueMsg struct{}

type themeChangedMsg struct {
	theme theme.Theme
}

type noticeExpiredMsg struct {
	id int
}

func submitJob(attempt *submit.Attempt) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		resp := attempt.Send(ctx)
		return submitResultMsg{resp: resp}, resp.Err
	}
}

func pollJob(poller *poll.Poller, id backend.PostID) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result := poller.Run(ctx, id)
		return pollResultMsg{result: result}, result.Err
	}
}

func loadPageJob(client Backend, loc *time.Location, logger *zap.Logger) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		page, err := client.LoadPage(ctx)
		if err != nil {
			return pageResultMsg{err: err}, err
		}
		items, found, err := history.ParsePage(page, loc, logger)
		return pageResultMsg{items: items, found: found, err: err}, err
	}
}

func reloadAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return reloadDueMsg{}
	})
}

func expireNotice(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func watchTheme(w *theme.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return themeChangedMsg{theme: t}
	}
}

// candidatesFromInput resolves pasted or typed paths. Unreadable paths are
// reported and skipped.
func candidatesFromInput(input string) ([]attach.Candidate, []string) {
	var (
		candidates []attach.Candidate
		problems   []string
	)
	for _, path := range attach.SplitPaths(input) {
		c, err := attach.FromPath(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Cannot attach %s: %v", path, err))
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, problems
}

func trimmedPreview(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
