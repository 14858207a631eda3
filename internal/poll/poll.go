package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/localtime"
	"github.com/csheth/postdeck/internal/notice"
)

const (
	DefaultAttempts    = 20
	DefaultInterval    = 3 * time.Second
	DefaultReloadDelay = 2 * time.Second
)

// ErrPollAborted is returned when a status request fails outright.
var ErrPollAborted = errors.New("status polling aborted")

// StatusSource fetches post status.
type StatusSource interface {
	PostStatus(ctx context.Context, id backend.PostID) (backend.StatusResponse, error)
}

// HistoryView is the publication history the poller updates.
type HistoryView interface {
	Exists() bool
	Prepend(fragment string)
	ReIndex()
	ScheduleReload(after time.Duration)
}

// Outcome is how a poll run ended.
type Outcome int

const (
	Published Outcome = iota
	Failed
	Exhausted
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Published:
		return "published"
	case Failed:
		return "failed"
	case Exhausted:
		return "exhausted"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result summarizes one Run.
type Result struct {
	PostID   backend.PostID
	Outcome  Outcome
	Attempts int
	Status   backend.StatusResponse
	Err      error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options tunes a Poller. Zero fields fall back to defaults.
type Options struct {
	Attempts    int
	Interval    time.Duration
	ReloadDelay time.Duration
	Location    *time.Location
	Sleep       SleepFunc
	Logger      *zap.Logger
}

// Poller watches one post at a time until it reaches a terminal status.
type Poller struct {
	source   StatusSource
	history  HistoryView
	notifier notice.Notifier
	opts     Options
}

// New builds a poller.
func New(source StatusSource, history HistoryView, notifier notice.Notifier, opts Options) *Poller {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ReloadDelay <= 0 {
		opts.ReloadDelay = DefaultReloadDelay
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Poller{source: source, history: history, notifier: notifier, opts: opts}
}

// Run polls id until a terminal status, a transport failure or exhaustion.
func (p *Poller) Run(ctx context.Context, id backend.PostID) Result {
	logger := p.opts.Logger.With(zap.String("post_id", string(id)))
	for attempt := 1; attempt <= p.opts.Attempts; attempt++ {
		status, err := p.source.PostStatus(ctx, id)
		if err != nil {
			logger.Warn("status poll failed", zap.Int("attempt", attempt), zap.Error(err))
			p.notifier.Notify(notice.LevelWarning, "Could not check publication status.")
			return Result{PostID: id, Outcome: Aborted, Attempts: attempt, Err: fmt.Errorf("%w: %w", ErrPollAborted, err)}
		}
		if status.Terminal() {
			return p.finish(id, attempt, status, logger)
		}
		logger.Debug("post not final yet", zap.Int("attempt", attempt), zap.String("status", status.Status))
		if attempt == p.opts.Attempts {
			break
		}
		if err := p.opts.Sleep(ctx, p.opts.Interval); err != nil {
			return Result{PostID: id, Outcome: Aborted, Attempts: attempt, Err: fmt.Errorf("%w: %w", ErrPollAborted, err)}
		}
	}
	logger.Info("status polling gave up", zap.Int("attempts", p.opts.Attempts))
	return Result{PostID: id, Outcome: Exhausted, Attempts: p.opts.Attempts}
}

func (p *Poller) finish(id backend.PostID, attempt int, status backend.StatusResponse, logger *zap.Logger) Result {
	p.showInHistory(status.HTML, logger)
	result := Result{PostID: id, Attempts: attempt, Status: status}
	if status.Status == backend.StatusPublished {
		result.Outcome = Published
		p.notifier.Notify(notice.LevelSuccess, "Post published!")
	} else {
		result.Outcome = Failed
		message := status.ErrorMessage
		if message == "" {
			message = "Publication failed."
		}
		p.notifier.Notify(notice.LevelDanger, message)
	}
	logger.Info("post reached final status", zap.String("status", status.Status), zap.Int("attempts", attempt))
	return result
}

func (p *Poller) showInHistory(fragment string, logger *zap.Logger) {
	if p.history == nil {
		return
	}
	if !p.history.Exists() {
		p.history.ScheduleReload(p.opts.ReloadDelay)
		return
	}
	if fragment != "" {
		localized, err := localtime.LocalizeFragment(fragment, p.opts.Location, logger)
		if err != nil {
			logger.Warn("failed to localize history entry", zap.Error(err))
		}
		p.history.Prepend(localized)
	}
	p.history.ReIndex()
}
