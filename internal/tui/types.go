package tui

import "time"

type focusArea int

const (
	focusEditor focusArea = iota
	focusAttachments
	focusButtons
	focusHistory
)

var focusSequence = []focusArea{
	focusEditor,
	focusAttachments,
	focusButtons,
	focusHistory,
}

func (f focusArea) String() string {
	switch f {
	case focusAttachments:
		return "Attachments"
	case focusButtons:
		return "Buttons"
	case focusHistory:
		return "History"
	default:
		return "Editor"
	}
}

type promptMode int

const (
	promptNone promptMode = iota
	promptAttach
	promptSchedule
	promptSearch
	promptTextVK
	promptButtonText
	promptButtonTarget
)

const (
	promptAttachPlaceholder   = "Paste one or more file paths…"
	promptSchedulePlaceholder = "YYYY-MM-DDTHH:MM, empty to publish now"
	promptSearchPlaceholder   = "Filter history by time or text…"
	promptTextVKPlaceholder   = "Text for VK only…"
	promptButtonPlaceholder   = "Button label…"
	promptTargetPlaceholder   = "https://… or callback data"
)

const heroTagline = "Compose once, publish everywhere."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	historyPreviewLimit       = 96
	noticeTTL                 = 5 * time.Second
	maxVisibleNotices         = 4
	eventBuffer               = 64
)
