package attach

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Preview is the lightweight description rendered next to an attachment.
type Preview struct {
	Width  int
	Height int
	Pages  int
	Detail string
}

type previewEntry struct {
	preview Preview
	loaded  bool
	refs    int
}

// PreviewCache loads previews lazily and keeps them until every attachment that
// shares the same file has been released.
type PreviewCache struct {
	mu      sync.Mutex
	entries map[uint64]*previewEntry
	load    func(Attachment) (Preview, error)
}

// NewPreviewCache returns a cache that reads previews from disk. logger may be nil.
func NewPreviewCache(logger *zap.Logger) *PreviewCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newPreviewCache(func(a Attachment) (Preview, error) {
		return loadPreview(a, logger)
	})
}

func newPreviewCache(load func(Attachment) (Preview, error)) *PreviewCache {
	return &PreviewCache{entries: map[uint64]*previewEntry{}, load: load}
}

// Retain registers one more attachment referring to the same file.
func (c *PreviewCache) Retain(a Attachment) {
	key := fingerprint(a)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &previewEntry{}
		c.entries[key] = entry
	}
	entry.refs++
}

// Get returns the preview for a, loading it on first use. Previews of
// attachments that were never retained are loaded but not kept.
func (c *PreviewCache) Get(a Attachment) (Preview, error) {
	key := fingerprint(a)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && entry.loaded {
		return entry.preview, nil
	}
	preview, err := c.load(a)
	if err != nil {
		return Preview{}, err
	}
	if ok {
		entry.preview = preview
		entry.loaded = true
	}
	return preview, nil
}

// Release drops one reference and frees the preview when none remain.
func (c *PreviewCache) Release(a Attachment) {
	key := fingerprint(a)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(c.entries, key)
	}
}

// Len reports how many previews are held.
func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func fingerprint(a Attachment) uint64 {
	h := xxhash.New()
	h.Write([]byte(a.Path))
	h.Write([]byte{0})
	h.Write([]byte(a.MIMEType))
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(a.SizeBytes))
	h.Write(size[:])
	return h.Sum64()
}

func loadPreview(a Attachment, logger *zap.Logger) (Preview, error) {
	switch {
	case a.Kind == KindImage:
		return imagePreview(a.Path, logger)
	case a.MIMEType == "application/pdf":
		return pdfPreview(a.Path)
	default:
		return Preview{Detail: fmt.Sprintf("%.2f MB", a.SizeMB())}, nil
	}
}

func imagePreview(path string, logger *zap.Logger) (Preview, error) {
	file, err := os.Open(path)
	if err != nil {
		return Preview{}, err
	}
	defer file.Close()
	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		// Formats without a registered decoder (webp, heic) still attach fine.
		logger.Debug("image header not decoded", zap.String("path", path), zap.Error(err))
		return Preview{Detail: "image"}, nil
	}
	return Preview{
		Width:  cfg.Width,
		Height: cfg.Height,
		Detail: fmt.Sprintf("%s %dx%d", format, cfg.Width, cfg.Height),
	}, nil
}

func pdfPreview(path string) (Preview, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return Preview{}, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	pages := reader.NumPage()
	return Preview{Pages: pages, Detail: fmt.Sprintf("pdf, %d page(s)", pages)}, nil
}
