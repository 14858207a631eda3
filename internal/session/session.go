// Package session holds the state of one composition from program start to exit.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/attach"
	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/notice"
	"github.com/csheth/postdeck/internal/submit"
)

// ScheduleLayout is the wall-clock format of the schedule field.
const ScheduleLayout = "2006-01-02T15:04"

// Editor is the rich text widget holding the post body.
type Editor interface {
	PlainText() string
	HTML() string
	Reset()
}

// Settings are the form toggles that are not part of the editor.
type Settings struct {
	OptimizeVideo bool
	SeparateVK    bool
	TextVK        string
	Schedule      string
	Platforms     compose.Platforms
}

// Session is the composition context shared by the UI, the lifecycle and the poller.
type Session struct {
	ID          string
	Attachments *attach.Set
	Buttons     *compose.Buttons

	editor   Editor
	notifier notice.Notifier
	logger   *zap.Logger
	settings Settings

	submitEnabled  bool
	controlEnabled bool
	buttonsAllowed bool
	busy           bool
	busyKind       submit.Busy
	tzOffset       int
}

// New builds a session and runs the validator once.
func New(editor Editor, notifier notice.Notifier, logger *zap.Logger, settings Settings, opts ...attach.Option) *Session {
	if notifier == nil {
		notifier = notice.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Platforms.Targets == nil {
		settings.Platforms.Targets = map[compose.Platform]compose.Target{}
	}
	s := &Session{
		ID:             uuid.NewString(),
		Buttons:        &compose.Buttons{},
		editor:         editor,
		notifier:       notifier,
		settings:       settings,
		buttonsAllowed: true,
		tzOffset:       compose.OffsetMinutes(time.Now()),
	}
	s.logger = logger.With(zap.String("session", s.ID))
	s.Attachments = attach.NewSet(s, opts...)
	s.Revalidate()
	return s
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *zap.Logger {
	return s.logger
}

// Revalidate recomputes the submit flag from the editor and the attachment count.
// The control stays disabled while busy; the lifecycle restores it on settle.
func (s *Session) Revalidate() {
	s.submitEnabled = compose.SubmitEnabled(compose.HasText(s.editor.PlainText()), s.Attachments.Len())
	if !s.busy {
		s.controlEnabled = s.submitEnabled
	}
}

// EditorChanged must be called after every edit.
func (s *Session) EditorChanged() {
	s.Revalidate()
}

// AttachmentsChanged implements attach.Observer.
func (s *Session) AttachmentsChanged(change attach.Change) {
	s.buttonsAllowed = change.ButtonsAllowed
	s.Revalidate()
}

// AttachmentWarning implements attach.Observer.
func (s *Session) AttachmentWarning(w attach.Warning) {
	s.logger.Info("attachment warning", zap.String("kind", string(w.Kind)), zap.String("file", w.Name), zap.Int("count", w.Count))
	s.notifier.Notify(notice.LevelWarning, w.Message())
}

// SubmitEnabled implements submit.Composition.
func (s *Session) SubmitEnabled() bool {
	return s.submitEnabled
}

// ControlEnabled is what the submit control shows right now.
func (s *Session) ControlEnabled() bool {
	return s.controlEnabled
}

// ButtonsAllowed reports whether the button builder is visible.
func (s *Session) ButtonsAllowed() bool {
	return s.buttonsAllowed
}

// HasVideo implements submit.Composition.
func (s *Session) HasVideo() bool {
	return s.Attachments.HasVideo()
}

// OptimizeVideo implements submit.Composition.
func (s *Session) OptimizeVideo() bool {
	return s.settings.OptimizeVideo
}

// Settings returns the current toggles.
func (s *Session) Settings() Settings {
	out := s.settings
	out.Platforms = s.settings.Platforms.Clone()
	return out
}

// ToggleOptimizeVideo flips video optimization.
func (s *Session) ToggleOptimizeVideo() bool {
	s.settings.OptimizeVideo = !s.settings.OptimizeVideo
	return s.settings.OptimizeVideo
}

// SetSeparateVK shows or hides the VK text. Showing it seeds it from the editor.
func (s *Session) SetSeparateVK(on bool) {
	s.settings.SeparateVK = on
	if on {
		s.settings.TextVK = s.editor.PlainText()
	}
}

// SetTextVK updates the VK-only text.
func (s *Session) SetTextVK(text string) {
	s.settings.TextVK = text
}

// TogglePlatform flips publishing to p.
func (s *Session) TogglePlatform(p compose.Platform) bool {
	target := s.settings.Platforms.Targets[p]
	target.Publish = !target.Publish
	s.settings.Platforms.Targets[p] = target
	return target.Publish
}

// SetSchedule validates and stores the schedule and recomputes the offset.
// An empty value means publish now.
func (s *Session) SetSchedule(value string, now time.Time) error {
	value = strings.TrimSpace(value)
	if value != "" {
		if _, err := time.ParseInLocation(ScheduleLayout, value, now.Location()); err != nil {
			return fmt.Errorf("schedule must look like %s: %w", ScheduleLayout, err)
		}
	}
	s.settings.Schedule = value
	s.tzOffset = compose.OffsetMinutes(now)
	return nil
}

// TZOffset is the offset last computed for the schedule field.
func (s *Session) TZOffset() int {
	return s.tzOffset
}

// CharCounter returns the advisory counter for the editor.
func (s *Session) CharCounter() compose.Counter {
	return compose.CharCounter(compose.CountChars(s.editor.PlainText()), s.Attachments.Len())
}

// Snapshot implements submit.Composition.
func (s *Session) Snapshot(now time.Time) compose.Request {
	s.tzOffset = compose.OffsetMinutes(now)
	req := compose.Request{
		TextHTML:        s.editor.HTML(),
		SeparateVK:      s.settings.SeparateVK,
		Attachments:     s.Attachments.Items(),
		Schedule:        s.settings.Schedule,
		TZOffsetMinutes: s.tzOffset,
		OptimizeVideo:   s.settings.OptimizeVideo,
		Platforms:       s.settings.Platforms.Clone(),
	}
	if s.settings.SeparateVK {
		req.TextVK = s.settings.TextVK
	}
	if s.buttonsAllowed {
		req.Buttons = s.Buttons.Complete()
	}
	return req
}

// Reset implements submit.Composition. It clears the editor and attachments;
// toggles and buttons survive, as they do in the web form.
func (s *Session) Reset() {
	s.editor.Reset()
	s.Attachments.Clear()
	s.Revalidate()
}

// SetSubmitEnabled implements submit.UI.
func (s *Session) SetSubmitEnabled(enabled bool) {
	s.controlEnabled = enabled
}

// ShowBusy implements submit.UI.
func (s *Session) ShowBusy(kind submit.Busy) {
	s.busy = true
	s.busyKind = kind
}

// HideBusy implements submit.UI.
func (s *Session) HideBusy() {
	s.busy = false
}

// Busy reports whether a progress indicator is showing and which one.
func (s *Session) Busy() (bool, submit.Busy) {
	return s.busy, s.busyKind
}
