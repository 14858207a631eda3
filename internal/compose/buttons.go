package compose

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTargetLen caps a button target, matching the callback data limit.
	MaxTargetLen = 64
	// TargetWarnBelow turns the counter into a warning when fewer chars remain.
	TargetWarnBelow = 5
)

// Button is one inline button row.
type Button struct {
	Text   string
	Target string
}

// IsURL reports whether the target opens a link instead of sending callback data.
func (b Button) IsURL() bool {
	return strings.HasPrefix(strings.TrimSpace(b.Target), "http")
}

// Complete is true when both halves of the row are filled in.
func (b Button) Complete() bool {
	return strings.TrimSpace(b.Text) != "" && strings.TrimSpace(b.Target) != ""
}

// TargetCounter describes the remaining room in a target field.
type TargetCounter struct {
	Len     int
	Max     int
	Warning bool
}

// Counter returns the target counter for the row.
func (b Button) Counter() TargetCounter {
	n := utf8.RuneCountInString(b.Target)
	return TargetCounter{Len: n, Max: MaxTargetLen, Warning: MaxTargetLen-n < TargetWarnBelow}
}

// Buttons is the editable list of button rows.
type Buttons struct {
	rows []Button
}

// Add appends an empty row and returns its index.
func (bs *Buttons) Add() int {
	bs.rows = append(bs.rows, Button{})
	return len(bs.rows) - 1
}

// Remove drops the row at index. Out-of-range indices are ignored.
func (bs *Buttons) Remove(index int) {
	if index < 0 || index >= len(bs.rows) {
		return
	}
	bs.rows = append(bs.rows[:index], bs.rows[index+1:]...)
}

// SetText updates the label of a row.
func (bs *Buttons) SetText(index int, text string) {
	if index < 0 || index >= len(bs.rows) {
		return
	}
	bs.rows[index].Text = text
}

// SetTarget updates the target of a row, truncating past MaxTargetLen.
func (bs *Buttons) SetTarget(index int, target string) {
	if index < 0 || index >= len(bs.rows) {
		return
	}
	if utf8.RuneCountInString(target) > MaxTargetLen {
		target = string([]rune(target)[:MaxTargetLen])
	}
	bs.rows[index].Target = target
}

// Rows returns a copy of every row, complete or not.
func (bs *Buttons) Rows() []Button {
	return append([]Button(nil), bs.rows...)
}

// Len reports the number of rows.
func (bs *Buttons) Len() int {
	return len(bs.rows)
}

// Complete returns the trimmed rows that have both text and target.
func (bs *Buttons) Complete() []Button {
	var out []Button
	for _, b := range bs.rows {
		if !b.Complete() {
			continue
		}
		out = append(out, Button{Text: strings.TrimSpace(b.Text), Target: strings.TrimSpace(b.Target)})
	}
	return out
}

// Reset removes every row.
func (bs *Buttons) Reset() {
	bs.rows = nil
}
