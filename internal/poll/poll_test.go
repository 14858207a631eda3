package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/notice"
)

type scriptedSource struct {
	responses []backend.StatusResponse
	errAt     int
	calls     int
}

func (s *scriptedSource) PostStatus(ctx context.Context, id backend.PostID) (backend.StatusResponse, error) {
	s.calls++
	if s.errAt > 0 && s.calls == s.errAt {
		return backend.StatusResponse{}, errors.New("connection refused")
	}
	if len(s.responses) == 0 {
		return backend.StatusResponse{Status: "queued"}, nil
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

type fakeHistory struct {
	exists   bool
	prepends []string
	reindex  int
	reloads  []time.Duration
}

func (h *fakeHistory) Exists() bool {
	return h.exists
}

func (h *fakeHistory) Prepend(fragment string) {
	h.prepends = append(h.prepends, fragment)
}

func (h *fakeHistory) ReIndex() {
	h.reindex++
}

func (h *fakeHistory) ScheduleReload(after time.Duration) {
	h.reloads = append(h.reloads, after)
}

type recordedNotice struct {
	level   notice.Level
	message string
}

type notices []recordedNotice

func (n *notices) Notify(level notice.Level, message string) {
	*n = append(*n, recordedNotice{level: level, message: message})
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func TestRunQueuedThenPublished(t *testing.T) {
	source := &scriptedSource{responses: []backend.StatusResponse{
		{Status: "queued"},
		{Status: "queued"},
		{Status: "published", HTML: `<li><span class="utc-timestamp">2024-05-01T10:00:00</span></li>`},
	}}
	history := &fakeHistory{exists: true}
	var got notices
	sleeper := &sleepRecorder{}
	poller := New(source, history, &got, Options{Sleep: sleeper.sleep, Location: time.FixedZone("x", 3600)})

	result := poller.Run(context.Background(), "42")

	assert.Equal(t, Published, result.Outcome)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, source.calls)
	assert.Equal(t, []time.Duration{DefaultInterval, DefaultInterval}, sleeper.waits)
	require.Len(t, history.prepends, 1)
	assert.Equal(t, `<li><span class="utc-timestamp">2024-05-01 11:00</span></li>`, history.prepends[0])
	assert.Equal(t, 1, history.reindex)
	assert.Equal(t, notices{{level: notice.LevelSuccess, message: "Post published!"}}, got)
}

func TestRunFailedUsesServerMessage(t *testing.T) {
	source := &scriptedSource{responses: []backend.StatusResponse{{Status: "failed", ErrorMessage: "token expired"}}}
	var got notices
	poller := New(source, &fakeHistory{exists: true}, &got, Options{Sleep: (&sleepRecorder{}).sleep})

	result := poller.Run(context.Background(), "1")

	assert.Equal(t, Failed, result.Outcome)
	assert.Equal(t, notices{{level: notice.LevelDanger, message: "token expired"}}, got)
}

func TestRunFailedFallbackMessage(t *testing.T) {
	source := &scriptedSource{responses: []backend.StatusResponse{{Status: "failed"}}}
	var got notices
	poller := New(source, nil, &got, Options{Sleep: (&sleepRecorder{}).sleep})

	poller.Run(context.Background(), "1")

	assert.Equal(t, "Publication failed.", got[0].message)
}

func TestRunSchedulesReloadWithoutHistory(t *testing.T) {
	source := &scriptedSource{responses: []backend.StatusResponse{{Status: "published", HTML: "<li>x</li>"}}}
	history := &fakeHistory{exists: false}
	poller := New(source, history, nil, Options{Sleep: (&sleepRecorder{}).sleep})

	poller.Run(context.Background(), "1")

	assert.Empty(t, history.prepends)
	assert.Equal(t, 0, history.reindex)
	assert.Equal(t, []time.Duration{DefaultReloadDelay}, history.reloads)
}

func TestRunExhaustsSilently(t *testing.T) {
	source := &scriptedSource{}
	var got notices
	sleeper := &sleepRecorder{}
	poller := New(source, &fakeHistory{exists: true}, &got, Options{Sleep: sleeper.sleep})

	result := poller.Run(context.Background(), "1")

	assert.Equal(t, Exhausted, result.Outcome)
	assert.NoError(t, result.Err)
	assert.Equal(t, DefaultAttempts, source.calls)
	assert.Len(t, sleeper.waits, DefaultAttempts-1)
	assert.Empty(t, got)
}

func TestRunAbortsOnTransportError(t *testing.T) {
	source := &scriptedSource{errAt: 2}
	var got notices
	poller := New(source, &fakeHistory{exists: true}, &got, Options{Sleep: (&sleepRecorder{}).sleep})

	result := poller.Run(context.Background(), "1")

	assert.Equal(t, Aborted, result.Outcome)
	assert.ErrorIs(t, result.Err, ErrPollAborted)
	assert.Equal(t, 2, source.calls)
	require.Len(t, got, 1)
	assert.Equal(t, notice.LevelWarning, got[0].level)
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	poller := New(&scriptedSource{}, nil, nil, Options{Interval: time.Hour})

	result := poller.Run(ctx, "1")

	assert.Equal(t, Aborted, result.Outcome)
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestRunCustomAttempts(t *testing.T) {
	source := &scriptedSource{responses: []backend.StatusResponse{{Status: "scheduled"}}}
	poller := New(source, nil, nil, Options{Attempts: 3, Sleep: (&sleepRecorder{}).sleep})

	result := poller.Run(context.Background(), "1")

	assert.Equal(t, Exhausted, result.Outcome)
	assert.Equal(t, 3, source.calls)
}
