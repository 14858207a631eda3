package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/postdeck/internal/fakebackend"
	"github.com/csheth/postdeck/internal/tuitest"
)

func TestPublishThroughTerminal(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary and drives it in a PTY")
	}
	if runtime.GOOS == "windows" {
		t.Skip("no PTY support")
	}

	srv := fakebackend.New()
	defer srv.Close()
	srv.ScriptStatus("42",
		fakebackend.Status{Status: "queued"},
		fakebackend.Status{Status: "published", HTML: `<li class="list-group-item"><span class="time utc-timestamp">2024-03-01T09:00:00</span><div class="text">Hello from the terminal</div></li>`},
	)

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	tmp := t.TempDir()
	photo := filepath.Join(tmp, "photo.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\n"), 0o644))

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "-no-alt-screen"},
		Dir:     cmdDir,
		Env: []string{
			"POSTDECK_BASE_URL=" + srv.URL,
			"POSTDECK_POLL_INTERVAL=100ms",
			"POSTDECK_TZ=UTC",
			"POSTDECK_LOG_FILE=" + filepath.Join(tmp, "postdeck.log"),
			"POSTDECK_THEME_FILE=" + filepath.Join(tmp, "theme.json"),
		},
		Width:  110,
		Height: 44,
		Steps: []tuitest.Step{
			{WaitFor: "Attachments (0)", Input: []byte("Hello from the terminal")},
			{WaitFor: "23/4096", Input: tuitest.KeyTab},
			{Delay: 200 * time.Millisecond, Input: tuitest.Paste(photo)},
			{WaitFor: "Attachments (1)", Input: tuitest.KeyCtrlS},
			{WaitFor: "Post published!", Input: tuitest.KeyCtrlC},
		},
		Timeout:        30 * time.Second,
		AllowInterrupt: true,
	})
	require.NoError(t, err)

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "<p>Hello from the terminal</p>", subs[0].Value("text_html"))
	require.Len(t, subs[0].Files, 1)
	assert.Equal(t, "photo.png", subs[0].Files[0].Name)
	assert.Equal(t, "image/png", subs[0].Files[0].MIMEType)
	assert.GreaterOrEqual(t, srv.StatusCalls("42"), 2)
	assert.NotEmpty(t, rec.Raw)
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "postdeck-integration")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
