package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/csheth/postdeck/internal/compose"
)

// Post statuses reported by the status endpoint.
const (
	StatusOK        = "ok"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Config describes how to reach the posting backend.
type Config struct {
	BaseURL       string
	SubmitPath    string
	SessionCookie string
	HTTPClient    *http.Client
}

// Client talks to the posting backend over HTTP.
type Client struct {
	base       *url.URL
	submitPath string
	cookie     string
	http       *http.Client
}

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	submitPath := cfg.SubmitPath
	if submitPath == "" {
		submitPath = "/"
	}
	return &Client{base: base, submitPath: submitPath, cookie: cfg.SessionCookie, http: httpClient}, nil
}

// PostID is the server-assigned post identifier. The backend emits a number;
// strings are accepted too.
type PostID string

func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post_id must be a number or string: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

// SubmitResponse is the JSON body returned for a submission.
type SubmitResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	PostID     PostID `json:"post_id"`
	HTTPStatus int    `json:"-"`
}

// StatusResponse is the JSON body returned by the status endpoint.
type StatusResponse struct {
	Status       string `json:"status"`
	HTML         string `json:"html"`
	ErrorMessage string `json:"error_message"`
}

// Terminal reports whether the post reached a final state.
func (s StatusResponse) Terminal() bool {
	return s.Status == StatusPublished || s.Status == StatusFailed
}

// Submit posts req as multipart form data. The body is decoded whatever the
// HTTP status, since validation failures arrive as 4xx with a JSON message.
func (c *Client) Submit(ctx context.Context, req compose.Request) (SubmitResponse, error) {
	for _, a := range req.Attachments {
		if _, err := os.Stat(a.Path); err != nil {
			return SubmitResponse{}, fmt.Errorf("attachment %s is no longer readable: %w", a.Name, err)
		}
	}
	body, contentType := streamMultipart(req)
	defer body.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(c.submitPath), body)
	if err != nil {
		return SubmitResponse{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return SubmitResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmitResponse{}, err
	}
	var parsed SubmitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return SubmitResponse{}, fmt.Errorf("failed to decode submit response (%s): %w", resp.Status, err)
	}
	parsed.HTTPStatus = resp.StatusCode
	return parsed, nil
}

// PostStatus fetches the current status of a post.
func (c *Client) PostStatus(ctx context.Context, id PostID) (StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/post-status/"+url.PathEscape(string(id))), nil)
	if err != nil {
		return StatusResponse{}, err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return StatusResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return StatusResponse{}, fmt.Errorf("status API error: %s (%s)", resp.Status, string(body))
	}
	var parsed StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return StatusResponse{}, fmt.Errorf("failed to decode status response: %w", err)
	}
	return parsed, nil
}

// LoadPage fetches the composer page, which embeds the publication history.
func (c *Client) LoadPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/"), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("page load failed: %s", resp.Status)
	}
	return string(body), nil
}

// String is used in logs.
func (c *Client) String() string {
	return c.base.String()
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

func (c *Client) authorize(req *http.Request) {
	if c.cookie == "" {
		return
	}
	name, value, found := strings.Cut(c.cookie, "=")
	if !found {
		name, value = "session", c.cookie
	}
	req.AddCookie(&http.Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
}

func formatBool(v bool) string {
	if v {
		return "on"
	}
	return ""
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
