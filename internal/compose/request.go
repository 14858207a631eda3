package compose

import (
	"github.com/csheth/postdeck/internal/attach"
)

// Platform names a publishing target understood by the backend.
type Platform string

const (
	Telegram  Platform = "tg"
	VK        Platform = "vk"
	Instagram Platform = "ig"
	OK        Platform = "ok"
	Max       Platform = "max"
)

// AllPlatforms lists platforms in form order.
var AllPlatforms = []Platform{Telegram, VK, Instagram, OK, Max}

// Target is one platform toggle plus the channel chosen for it.
type Target struct {
	Publish bool
	Channel string
}

// Platforms holds the publishing choices for a post.
type Platforms struct {
	Targets  map[Platform]Target
	VKLayout string
}

// DefaultVKLayout is what the backend assumes when no layout is sent.
const DefaultVKLayout = "grid"

// Clone returns a deep copy so a snapshot is not affected by later edits.
func (p Platforms) Clone() Platforms {
	out := Platforms{VKLayout: p.VKLayout, Targets: make(map[Platform]Target, len(p.Targets))}
	for k, v := range p.Targets {
		out.Targets[k] = v
	}
	return out
}

// Request is the immutable snapshot sent for one submission attempt.
type Request struct {
	TextHTML        string
	TextVK          string
	SeparateVK      bool
	Attachments     []attach.Attachment
	Buttons         []Button
	Schedule        string
	TZOffsetMinutes int
	OptimizeVideo   bool
	Platforms       Platforms
}
