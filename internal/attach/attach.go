package attach

import (
	"fmt"
	"strings"

	"github.com/nrednav/cuid2"
)

// Kind is the media category an attachment is classified into.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

const (
	mib = 1024 * 1024

	// ImageLimitMB caps image/* attachments.
	ImageLimitMB = 10
	// VideoLimitMB caps everything that is not an image, including non-video types.
	VideoLimitMB = 50
	// AdvisoryMaxCount is the largest media group the messaging platform accepts.
	// Exceeding it only produces a warning.
	AdvisoryMaxCount = 10
)

// Candidate is a file the user picked or dropped but that has not been accepted yet.
type Candidate struct {
	Name      string
	Path      string
	MIMEType  string
	SizeBytes int64
}

// Attachment is an accepted file owned by a Set.
type Attachment struct {
	ID        string
	Name      string
	Path      string
	MIMEType  string
	SizeBytes int64
	Kind      Kind
}

// SizeMB reports the file size in mebibytes for display.
func (a Attachment) SizeMB() float64 {
	return float64(a.SizeBytes) / mib
}

// Classify maps a MIME type to its media kind.
func Classify(mimeType string) Kind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	default:
		return KindOther
	}
}

// LimitFor returns the size cap for a MIME type in bytes and in whole MiB.
// Only image/* gets the smaller cap; every other type falls through to the video cap.
func LimitFor(mimeType string) (int64, int) {
	if Classify(mimeType) == KindImage {
		return ImageLimitMB * mib, ImageLimitMB
	}
	return VideoLimitMB * mib, VideoLimitMB
}

// WarningKind distinguishes the advisory events a Set can raise.
type WarningKind string

const (
	WarningOversized WarningKind = "oversized"
	WarningTooMany   WarningKind = "too_many"
)

// Warning is an advisory event. It never blocks a mutation beyond dropping the offending file.
type Warning struct {
	Kind    WarningKind
	Name    string
	LimitMB int
	Count   int
}

// Message renders the warning for a toast.
func (w Warning) Message() string {
	switch w.Kind {
	case WarningOversized:
		return fmt.Sprintf("File %q is too large. Limit: %d MB.", w.Name, w.LimitMB)
	case WarningTooMany:
		return fmt.Sprintf("Telegram rejects more than %d attachments (you have %d).", AdvisoryMaxCount, w.Count)
	default:
		return string(w.Kind)
	}
}

// Change describes the set after a mutation.
type Change struct {
	Files          []Attachment
	ButtonsAllowed bool
	HasVideo       bool
}

// Observer receives the side effects of every mutation.
type Observer interface {
	AttachmentsChanged(change Change)
	AttachmentWarning(warning Warning)
}

func newID() string {
	return cuid2.Generate()
}
