package compose

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// CaptionLimit applies when the post carries media; the text becomes a caption.
	CaptionLimit = 1024
	// MessageLimit applies to text-only posts.
	MessageLimit = 4096
)

// SubmitEnabled is true when the post has either text or at least one attachment.
func SubmitEnabled(hasText bool, attachmentCount int) bool {
	return hasText || attachmentCount > 0
}

// HasText reports whether the editor holds anything besides whitespace.
func HasText(plain string) bool {
	return strings.TrimSpace(plain) != ""
}

// Counter is the advisory character counter shown under the editor.
type Counter struct {
	Len   int
	Limit int
	Over  bool
}

// CharCounter computes the counter for a body of textLen characters.
func CharCounter(textLen, attachmentCount int) Counter {
	limit := MessageLimit
	if attachmentCount > 0 {
		limit = CaptionLimit
	}
	return Counter{Len: textLen, Limit: limit, Over: textLen > limit}
}

// CountChars counts user-visible characters rather than bytes.
func CountChars(plain string) int {
	return utf8.RuneCountInString(strings.TrimRight(plain, "\n"))
}

// OffsetMinutes returns the zone offset of now in minutes east of UTC.
func OffsetMinutes(now time.Time) int {
	_, offset := now.Zone()
	return offset / 60
}

// InsertSignature appends signature on a new line.
func InsertSignature(plain, signature string) string {
	if signature == "" {
		return plain
	}
	return plain + "\n" + signature
}
