package attach

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
	return path
}

func TestFromPathUsesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))

	c, err := FromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", c.Name)
	assert.Equal(t, "video/mp4", c.MIMEType)
	assert.Equal(t, int64(len("not really a video")), c.SizeBytes)
}

func TestFromPathSniffsWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, "pixel.png", 2, 2)
	path := filepath.Join(dir, "pixel")
	require.NoError(t, os.Rename(src, path))

	c, err := FromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "image/png", c.MIMEType)
}

func TestFromPathErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := FromPath("")
	assert.Error(t, err)

	_, err = FromPath(dir)
	assert.Error(t, err)

	_, err = FromPath(filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "/tmp/a.jpg", want: []string{"/tmp/a.jpg"}},
		{name: "spaces", input: "/tmp/a.jpg  /tmp/b.mp4\n", want: []string{"/tmp/a.jpg", "/tmp/b.mp4"}},
		{name: "escaped", input: `/tmp/my\ photo.jpg /tmp/b.jpg`, want: []string{"/tmp/my photo.jpg", "/tmp/b.jpg"}},
		{name: "quoted", input: `'/tmp/my photo.jpg' "/tmp/x y.mp4"`, want: []string{"/tmp/my photo.jpg", "/tmp/x y.mp4"}},
		{name: "empty", input: "   ", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPaths(tt.input))
		})
	}
}

func TestPreviewReadsImageDimensions(t *testing.T) {
	path := writePNG(t, t.TempDir(), "wide.png", 40, 10)
	c, err := FromPath(path)
	require.NoError(t, err)
	set := NewSet(nil, WithPreviews(NewPreviewCache(nil)))
	set.Add(c)
	a, ok := set.At(0)
	require.True(t, ok)

	cache := set.previews
	preview, err := cache.Get(a)

	require.NoError(t, err)
	assert.Equal(t, 40, preview.Width)
	assert.Equal(t, 10, preview.Height)
	assert.Equal(t, "png 40x10", preview.Detail)
}

func TestPreviewOfVideoIsSizeOnly(t *testing.T) {
	cache := NewPreviewCache(nil)
	a := Attachment{Name: "clip.mp4", MIMEType: "video/mp4", Kind: KindVideo, SizeBytes: 3 * mib / 2}

	preview, err := cache.Get(a)

	require.NoError(t, err)
	assert.Equal(t, "1.50 MB", preview.Detail)
	assert.Equal(t, 0, cache.Len())
}

func TestPreviewOfUndecodableImageLogsAndFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.webp")
	require.NoError(t, os.WriteFile(path, []byte("RIFF0000WEBPVP8 "), 0o644))
	core, logs := observer.New(zapcore.DebugLevel)
	cache := NewPreviewCache(zap.New(core))
	a := Attachment{Name: "photo.webp", Path: path, MIMEType: "image/webp", Kind: KindImage, SizeBytes: 16}

	preview, err := cache.Get(a)

	require.NoError(t, err)
	assert.Equal(t, "image", preview.Detail)
	entries := logs.FilterMessage("image header not decoded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].ContextMap()["path"])
}
