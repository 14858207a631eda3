package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/postdeck/internal/attach"
	"github.com/csheth/postdeck/internal/compose"
	"github.com/csheth/postdeck/internal/fakebackend"
)

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{BaseURL: baseURL, SessionCookie: "session=abc"})
	require.NoError(t, err)
	return client
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:5000"})
	assert.Error(t, err)
}

func TestSubmitSendsFieldsAndFilesInOrder(t *testing.T) {
	server := fakebackend.New()
	defer server.Close()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jpg")
	second := filepath.Join(dir, "second.mp4")
	require.NoError(t, os.WriteFile(first, []byte("jpeg-bytes"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("mp4"), 0o644))

	req := compose.Request{
		TextHTML: "<p>hello</p>",
		Attachments: []attach.Attachment{
			{Name: "second.mp4", Path: second, MIMEType: "video/mp4"},
			{Name: "first.jpg", Path: first, MIMEType: "image/jpeg"},
		},
		Buttons:         []compose.Button{{Text: "Open", Target: "https://example.com"}},
		Schedule:        "2024-05-01T10:00",
		TZOffsetMinutes: 180,
		OptimizeVideo:   true,
		Platforms: compose.Platforms{Targets: map[compose.Platform]compose.Target{
			compose.Telegram: {Publish: true, Channel: "-100"},
			compose.VK:       {Publish: false, Channel: "club1"},
		}},
	}

	resp, err := newClient(t, server.URL).Submit(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, PostID("42"), resp.PostID)

	subs := server.Submissions()
	require.Len(t, subs, 1)
	sub := subs[0]
	assert.Equal(t, "abc", sub.Cookie)
	assert.Equal(t, "<p>hello</p>", sub.Value("text_html"))
	assert.Equal(t, "on", sub.Value("publish_tg"))
	assert.False(t, sub.Has("publish_vk"))
	assert.Equal(t, "club1", sub.Value("channel_vk"))
	assert.Equal(t, "grid", sub.Value("vk_layout"))
	assert.Equal(t, []string{"Open"}, sub.Values("button_text"))
	assert.Equal(t, []string{"https://example.com"}, sub.Values("button_url"))
	assert.Equal(t, "180", sub.Value("tz_offset_minutes"))
	assert.Equal(t, "2024-05-01T10:00", sub.Value("schedule"))
	assert.Equal(t, "on", sub.Value("optimize_video"))
	assert.False(t, sub.Has("separate_vk_text"))

	require.Len(t, sub.Files, 2)
	assert.Equal(t, "second.mp4", sub.Files[0].Name)
	assert.Equal(t, "video/mp4", sub.Files[0].MIMEType)
	assert.Equal(t, MediaField, sub.Files[0].Field)
	assert.Equal(t, "first.jpg", sub.Files[1].Name)
	assert.Equal(t, int64(len("jpeg-bytes")), sub.Files[1].Size)
}

func TestSubmitDecodesErrorBodies(t *testing.T) {
	server := fakebackend.New()
	defer server.Close()
	server.QueueReply(http.StatusBadRequest, `{"status":"error","message":"Post cannot be empty."}`)

	resp, err := newClient(t, server.URL).Submit(context.Background(), compose.Request{})

	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Post cannot be empty.", resp.Message)
	assert.Equal(t, http.StatusBadRequest, resp.HTTPStatus)
}

func TestSubmitFailsOnNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Submit(context.Background(), compose.Request{TextHTML: "<p>x</p>"})

	assert.Error(t, err)
}

func TestSubmitFailsOnMissingFile(t *testing.T) {
	server := fakebackend.New()
	defer server.Close()
	req := compose.Request{Attachments: []attach.Attachment{{Name: "gone.jpg", Path: filepath.Join(t.TempDir(), "gone.jpg")}}}

	_, err := newClient(t, server.URL).Submit(context.Background(), req)

	assert.Error(t, err)
}

func TestPostIDAcceptsStringOrNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","post_id":"abc-1"}`))
	}))
	defer server.Close()

	resp, err := newClient(t, server.URL).Submit(context.Background(), compose.Request{TextHTML: "x"})

	require.NoError(t, err)
	assert.Equal(t, PostID("abc-1"), resp.PostID)
}

func TestPostStatus(t *testing.T) {
	server := fakebackend.New()
	defer server.Close()
	server.ScriptStatus("7",
		fakebackend.Status{Status: "queued"},
		fakebackend.Status{Status: "published", HTML: "<li>done</li>"},
	)
	client := newClient(t, server.URL)

	first, err := client.PostStatus(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, first.Terminal())

	second, err := client.PostStatus(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, second.Terminal())
	assert.Equal(t, "<li>done</li>", second.HTML)
	assert.Equal(t, 2, server.StatusCalls("7"))
}

func TestPostStatusErrorsOnHTTPFailure(t *testing.T) {
	server := fakebackend.New()
	defer server.Close()
	server.ScriptStatus("9", fakebackend.Status{Code: http.StatusNotFound})

	_, err := newClient(t, server.URL).PostStatus(context.Background(), "9")

	assert.Error(t, err)
}

func TestLoadPage(t *testing.T) {
	server := fakebackend.New()
	defer server.Close()
	server.SetPage("<ul class=\"history\"><li>one</li></ul>")

	page, err := newClient(t, server.URL).LoadPage(context.Background())

	require.NoError(t, err)
	assert.Contains(t, page, "<li>one</li>")
	assert.Equal(t, 1, server.PageRequests())
}
