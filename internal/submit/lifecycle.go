package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/notice"
)

// State is the lifecycle position of the composer.
type State int

const (
	Idle State = iota
	Submitting
	Success
	ValidationFailed
	NetworkFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case ValidationFailed:
		return "validation_failed"
	case NetworkFailed:
		return "network_failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Busy selects which progress indicator is shown while submitting.
type Busy int

const (
	BusyGeneric Busy = iota
	BusyVideoOptimize
)

// ErrSubmitDisabled is returned when submit is triggered while disabled or already running.
var ErrSubmitDisabled = errors.New("submit is disabled")

// NetworkError wraps transport and decoding failures.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("could not submit: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is a well-formed rejection from the backend.
type ValidationError struct {
	Message    string
	HTTPStatus int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Composition is the editable post the lifecycle reads and clears.
type Composition interface {
	SubmitEnabled() bool
	HasVideo() bool
	OptimizeVideo() bool
	Snapshot(now time.Time) compose.Request
	Reset()
}

// UI is the submit control and progress indicator.
type UI interface {
	SetSubmitEnabled(enabled bool)
	ShowBusy(kind Busy)
	HideBusy()
}

// Sender delivers a snapshot to the backend.
type Sender interface {
	Submit(ctx context.Context, req compose.Request) (backend.SubmitResponse, error)
}

// PollStarter begins watching an accepted post. It must not block.
type PollStarter interface {
	StartPoll(id backend.PostID)
}

// Outcome is the terminal result of one attempt.
type Outcome struct {
	State  State
	PostID backend.PostID
	Err    error
}

// Lifecycle drives a composition through submit.
type Lifecycle struct {
	comp     Composition
	ui       UI
	sender   Sender
	poller   PollStarter
	notifier notice.Notifier
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	state State
}

// Option customizes a Lifecycle.
type Option func(*Lifecycle)

// WithClock overrides the time source used for the TZ offset.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) {
		l.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

// New wires a lifecycle. notifier may be nil.
func New(comp Composition, ui UI, sender Sender, poller PollStarter, notifier notice.Notifier, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		comp:     comp,
		ui:       ui,
		sender:   sender,
		poller:   poller,
		notifier: notifier,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	if l.notifier == nil {
		l.notifier = notice.Discard
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Attempt is one in-flight submission.
type Attempt struct {
	Request compose.Request
	sender  Sender
}

// Response is what Send produced.
type Response struct {
	Body backend.SubmitResponse
	Err  error
}

// Begin claims the lifecycle, shows progress and snapshots the composition.
// It must run on the UI goroutine.
func (l *Lifecycle) Begin() (*Attempt, error) {
	l.mu.Lock()
	if l.state != Idle || !l.comp.SubmitEnabled() {
		l.mu.Unlock()
		return nil, ErrSubmitDisabled
	}
	l.state = Submitting
	l.mu.Unlock()

	l.ui.SetSubmitEnabled(false)
	if l.comp.OptimizeVideo() && l.comp.HasVideo() {
		l.ui.ShowBusy(BusyVideoOptimize)
	} else {
		l.ui.ShowBusy(BusyGeneric)
	}
	req := l.comp.Snapshot(l.now())
	l.logger.Info("submitting post",
		zap.Int("attachments", len(req.Attachments)),
		zap.Int("buttons", len(req.Buttons)),
		zap.Bool("scheduled", req.Schedule != ""),
	)
	return &Attempt{Request: req, sender: l.sender}, nil
}

// Send performs the network call. It is safe to run off the UI goroutine.
func (a *Attempt) Send(ctx context.Context) Response {
	body, err := a.sender.Submit(ctx, a.Request)
	return Response{Body: body, Err: err}
}

// Finish applies the response and returns to Idle. It must run on the UI goroutine.
func (l *Lifecycle) Finish(resp Response) Outcome {
	defer l.settle()

	if resp.Err != nil {
		l.logger.Warn("submit failed", zap.Error(resp.Err))
		l.setState(NetworkFailed)
		l.notifier.Notify(notice.LevelDanger, "Could not submit the post.")
		return Outcome{State: NetworkFailed, Err: &NetworkError{Err: resp.Err}}
	}
	body := resp.Body
	if body.Status != backend.StatusOK {
		message := body.Message
		if message == "" {
			message = "Validation failed."
		}
		l.logger.Info("submit rejected", zap.String("message", message), zap.Int("http_status", body.HTTPStatus))
		l.setState(ValidationFailed)
		l.notifier.Notify(notice.LevelDanger, message)
		return Outcome{State: ValidationFailed, Err: &ValidationError{Message: message, HTTPStatus: body.HTTPStatus}}
	}

	l.setState(Success)
	l.comp.Reset()
	message := body.Message
	if message == "" {
		message = "Post queued…"
	}
	l.notifier.Notify(notice.LevelInfo, message)
	if body.PostID == "" {
		l.logger.Warn("accepted post has no id; skipping status polling")
	} else if l.poller != nil {
		l.poller.StartPoll(body.PostID)
	}
	l.logger.Info("post accepted", zap.String("post_id", string(body.PostID)))
	return Outcome{State: Success, PostID: body.PostID}
}

// Submit runs Begin, Send and Finish on the calling goroutine.
func (l *Lifecycle) Submit(ctx context.Context) (Outcome, error) {
	attempt, err := l.Begin()
	if err != nil {
		return Outcome{}, err
	}
	outcome := l.Finish(attempt.Send(ctx))
	return outcome, outcome.Err
}

func (l *Lifecycle) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Lifecycle) settle() {
	l.ui.HideBusy()
	l.ui.SetSubmitEnabled(l.comp.SubmitEnabled())
	l.setState(Idle)
}
