package attach

import "strings"

// Set is the ordered list of attachments for one composition session.
// Order is submission order. It is not safe for concurrent use; all
// mutations are expected to come from the UI event loop.
type Set struct {
	items      []Attachment
	observer   Observer
	previews   *PreviewCache
	overLimit  bool
	generateID func() string
}

// Option customizes a Set.
type Option func(*Set)

// WithPreviews attaches a preview cache whose entries are released on remove/clear.
func WithPreviews(cache *PreviewCache) Option {
	return func(s *Set) {
		s.previews = cache
	}
}

// WithIDGenerator overrides attachment id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Set) {
		s.generateID = fn
	}
}

// NewSet returns an empty set reporting to observer. A nil observer is allowed.
func NewSet(observer Observer, opts ...Option) *Set {
	s := &Set{observer: observer, generateID: newID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetObserver replaces the observer.
func (s *Set) SetObserver(observer Observer) {
	s.observer = observer
}

// Add appends every candidate that fits its size limit, keeping input order.
// Oversized candidates are skipped with one warning each.
func (s *Set) Add(candidates ...Candidate) []Warning {
	var warnings []Warning
	for _, c := range candidates {
		limitBytes, limitMB := LimitFor(c.MIMEType)
		if c.SizeBytes > limitBytes {
			w := Warning{Kind: WarningOversized, Name: c.Name, LimitMB: limitMB}
			warnings = append(warnings, w)
			s.warn(w)
			continue
		}
		a := Attachment{
			ID:        s.generateID(),
			Name:      c.Name,
			Path:      c.Path,
			MIMEType:  c.MIMEType,
			SizeBytes: c.SizeBytes,
			Kind:      Classify(c.MIMEType),
		}
		s.items = append(s.items, a)
		if s.previews != nil {
			s.previews.Retain(a)
		}
	}
	return append(warnings, s.resync()...)
}

// AddDropped behaves like Add but first discards anything that is not an image or video,
// matching what a drop target accepts.
func (s *Set) AddDropped(candidates ...Candidate) []Warning {
	accepted := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		mimeType := strings.ToLower(c.MIMEType)
		if strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/") {
			accepted = append(accepted, c)
		}
	}
	return s.Add(accepted...)
}

// Remove deletes the element at index. Out-of-range indices are ignored.
func (s *Set) Remove(index int) bool {
	if index < 0 || index >= len(s.items) {
		return false
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.release(removed)
	s.resync()
	return true
}

// Reorder moves the element at from to position to, shifting the rest.
// It is shaped to be the completion callback of a drag gesture.
func (s *Set) Reorder(from, to int) {
	if from == to || from < 0 || to < 0 || from >= len(s.items) || to >= len(s.items) {
		return
	}
	moved := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.items = append(s.items[:to], append([]Attachment{moved}, s.items[to:]...)...)
	s.resync()
}

// Clear empties the set and releases every preview.
func (s *Set) Clear() {
	for _, a := range s.items {
		s.release(a)
	}
	s.items = nil
	s.resync()
}

// Len reports the number of accepted attachments.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns a copy of the ordered attachments.
func (s *Set) Items() []Attachment {
	return append([]Attachment(nil), s.items...)
}

// At returns the attachment at index.
func (s *Set) At(index int) (Attachment, bool) {
	if index < 0 || index >= len(s.items) {
		return Attachment{}, false
	}
	return s.items[index], true
}

// HasVideo reports whether any attachment is a video.
func (s *Set) HasVideo() bool {
	for _, a := range s.items {
		if a.Kind == KindVideo {
			return true
		}
	}
	return false
}

// ButtonsAllowed is false once more than one file is attached; inline buttons
// cannot be combined with a media group.
func (s *Set) ButtonsAllowed() bool {
	return len(s.items) <= 1
}

func (s *Set) resync() []Warning {
	var warnings []Warning
	over := len(s.items) > AdvisoryMaxCount
	if over && !s.overLimit {
		w := Warning{Kind: WarningTooMany, Count: len(s.items)}
		warnings = append(warnings, w)
		s.warn(w)
	}
	s.overLimit = over
	if s.observer != nil {
		s.observer.AttachmentsChanged(Change{
			Files:          s.Items(),
			ButtonsAllowed: s.ButtonsAllowed(),
			HasVideo:       s.HasVideo(),
		})
	}
	return warnings
}

func (s *Set) warn(w Warning) {
	if s.observer != nil {
		s.observer.AttachmentWarning(w)
	}
}

func (s *Set) release(a Attachment) {
	if s.previews != nil {
		s.previews.Release(a)
	}
}
