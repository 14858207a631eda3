package submit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/fakebackend"
	"github.com/csheth/postdeck/internal/notice"
)

type fakeComposition struct {
	text      string
	files     int
	video     bool
	optimize  bool
	resets    int
	snapshots []time.Time
}

func (c *fakeComposition) SubmitEnabled() bool {
	return compose.SubmitEnabled(compose.HasText(c.text), c.files)
}

func (c *fakeComposition) HasVideo() bool {
	return c.video
}

func (c *fakeComposition) OptimizeVideo() bool {
	return c.optimize
}

func (c *fakeComposition) Snapshot(now time.Time) compose.Request {
	c.snapshots = append(c.snapshots, now)
	return compose.Request{TextHTML: compose.EditorHTML(c.text), TZOffsetMinutes: compose.OffsetMinutes(now)}
}

func (c *fakeComposition) Reset() {
	c.resets++
	c.text = ""
	c.files = 0
	c.video = false
}

type fakeUI struct {
	enabled []bool
	busy    []Busy
	hidden  int
}

func (u *fakeUI) SetSubmitEnabled(enabled bool) {
	u.enabled = append(u.enabled, enabled)
}

func (u *fakeUI) ShowBusy(kind Busy) {
	u.busy = append(u.busy, kind)
}

func (u *fakeUI) HideBusy() {
	u.hidden++
}

func (u *fakeUI) lastEnabled() bool {
	return u.enabled[len(u.enabled)-1]
}

type pollRecorder struct {
	ids []backend.PostID
}

func (p *pollRecorder) StartPoll(id backend.PostID) {
	p.ids = append(p.ids, id)
}

type noticeLog []notice.Notice

func (n *noticeLog) Notify(level notice.Level, message string) {
	*n = append(*n, notice.Notice{Level: level, Message: message})
}

type senderFunc func(ctx context.Context, req compose.Request) (backend.SubmitResponse, error)

func (f senderFunc) Submit(ctx context.Context, req compose.Request) (backend.SubmitResponse, error) {
	return f(ctx, req)
}

func newBackend(t *testing.T) (*fakebackend.Server, *backend.Client) {
	t.Helper()
	server := fakebackend.New()
	t.Cleanup(server.Close)
	client, err := backend.New(backend.Config{BaseURL: server.URL})
	require.NoError(t, err)
	return server, client
}

func TestSubmitSuccessClearsAndStartsPolling(t *testing.T) {
	server, client := newBackend(t)
	comp := &fakeComposition{text: "hello"}
	ui := &fakeUI{}
	poller := &pollRecorder{}
	var notices noticeLog
	lc := New(comp, ui, client, poller, &notices)

	outcome, err := lc.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Success, outcome.State)
	assert.Equal(t, backend.PostID("42"), outcome.PostID)
	assert.Equal(t, []backend.PostID{"42"}, poller.ids)
	assert.Equal(t, 1, comp.resets)
	assert.Equal(t, []Busy{BusyGeneric}, ui.busy)
	assert.Equal(t, 1, ui.hidden)
	assert.Equal(t, []bool{false, false}, ui.enabled)
	assert.Equal(t, Idle, lc.State())
	require.Len(t, notices, 1)
	assert.Equal(t, notice.LevelInfo, notices[0].Level)
	assert.Equal(t, "Post accepted.", notices[0].Message)
	require.Len(t, server.Submissions(), 1)
	assert.Equal(t, "<p>hello</p>", server.Submissions()[0].Value("text_html"))
}

func TestSubmitValidationErrorKeepsComposition(t *testing.T) {
	server, client := newBackend(t)
	server.QueueReply(http.StatusBadRequest, `{"status":"error","message":"too long"}`)
	comp := &fakeComposition{text: "hello", files: 1}
	ui := &fakeUI{}
	poller := &pollRecorder{}
	var notices noticeLog
	lc := New(comp, ui, client, poller, &notices)

	outcome, err := lc.Submit(context.Background())

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "too long", validation.Message)
	assert.Equal(t, http.StatusBadRequest, validation.HTTPStatus)
	assert.Equal(t, ValidationFailed, outcome.State)
	assert.Equal(t, 0, comp.resets)
	assert.Empty(t, poller.ids)
	assert.True(t, ui.lastEnabled())
	assert.Equal(t, Idle, lc.State())
	assert.Equal(t, noticeLog{{Level: notice.LevelDanger, Message: "too long"}}, notices)
}

func TestSubmitValidationFallbackMessage(t *testing.T) {
	comp := &fakeComposition{text: "x"}
	var notices noticeLog
	sender := senderFunc(func(context.Context, compose.Request) (backend.SubmitResponse, error) {
		return backend.SubmitResponse{Status: "error"}, nil
	})
	lc := New(comp, &fakeUI{}, sender, nil, &notices)

	_, err := lc.Submit(context.Background())

	assert.EqualError(t, err, "Validation failed.")
}

func TestSubmitNetworkError(t *testing.T) {
	comp := &fakeComposition{text: "x"}
	ui := &fakeUI{}
	var notices noticeLog
	cause := errors.New("dial tcp: connection refused")
	sender := senderFunc(func(context.Context, compose.Request) (backend.SubmitResponse, error) {
		return backend.SubmitResponse{}, cause
	})
	lc := New(comp, ui, sender, nil, &notices)

	outcome, err := lc.Submit(context.Background())

	var network *NetworkError
	require.ErrorAs(t, err, &network)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, NetworkFailed, outcome.State)
	assert.Equal(t, 0, comp.resets)
	assert.Equal(t, 1, ui.hidden)
	assert.True(t, ui.lastEnabled())
	assert.Equal(t, notice.LevelDanger, notices[0].Level)
}

func TestSubmitRejectedWhenDisabled(t *testing.T) {
	calls := 0
	sender := senderFunc(func(context.Context, compose.Request) (backend.SubmitResponse, error) {
		calls++
		return backend.SubmitResponse{Status: "ok"}, nil
	})
	ui := &fakeUI{}
	lc := New(&fakeComposition{text: "   "}, ui, sender, nil, nil)

	_, err := lc.Submit(context.Background())

	assert.ErrorIs(t, err, ErrSubmitDisabled)
	assert.Equal(t, 0, calls)
	assert.Empty(t, ui.busy)
}

func TestBeginRejectsWhileSubmitting(t *testing.T) {
	lc := New(&fakeComposition{text: "x"}, &fakeUI{}, senderFunc(nil), nil, nil)

	attempt, err := lc.Begin()
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, Submitting, lc.State())

	_, err = lc.Begin()
	assert.ErrorIs(t, err, ErrSubmitDisabled)
}

func TestBusyIndicatorForVideoOptimization(t *testing.T) {
	tests := []struct {
		name     string
		video    bool
		optimize bool
		want     Busy
	}{
		{name: "optimize with video", video: true, optimize: true, want: BusyVideoOptimize},
		{name: "optimize without video", video: false, optimize: true, want: BusyGeneric},
		{name: "video without optimize", video: true, optimize: false, want: BusyGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := &fakeUI{}
			comp := &fakeComposition{files: 1, video: tt.video, optimize: tt.optimize}
			sender := senderFunc(func(context.Context, compose.Request) (backend.SubmitResponse, error) {
				return backend.SubmitResponse{Status: "ok", PostID: "1"}, nil
			})

			_, err := New(comp, ui, sender, nil, nil).Submit(context.Background())

			require.NoError(t, err)
			assert.Equal(t, []Busy{tt.want}, ui.busy)
		})
	}
}

func TestSnapshotUsesInjectedClock(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, zone)
	var got compose.Request
	sender := senderFunc(func(_ context.Context, req compose.Request) (backend.SubmitResponse, error) {
		got = req
		return backend.SubmitResponse{Status: "ok"}, nil
	})
	poller := &pollRecorder{}

	_, err := New(&fakeComposition{text: "x"}, &fakeUI{}, sender, poller, nil, WithClock(func() time.Time { return now })).Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 300, got.TZOffsetMinutes)
	assert.Empty(t, poller.ids)
}
