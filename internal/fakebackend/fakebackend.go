// Package fakebackend is an in-process stand-in for the posting backend used by tests.
package fakebackend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Field is one non-file form value in arrival order.
type Field struct {
	Name  string
	Value string
}

// File is one uploaded part.
type File struct {
	Field    string
	Name     string
	MIMEType string
	Size     int64
}

// Submission records everything the backend received for one POST.
type Submission struct {
	Fields []Field
	Files  []File
	Cookie string
}

// Values returns every value of a field, in order.
func (s Submission) Values(name string) []string {
	var out []string
	for _, f := range s.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// Value returns the first value of a field.
func (s Submission) Value(name string) string {
	if v := s.Values(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Has reports whether a field was sent at all.
func (s Submission) Has(name string) bool {
	return len(s.Values(name)) > 0
}

// Reply is a scripted raw response.
type Reply struct {
	Code int
	Body string
}

// Status is a scripted status poll response. Code defaults to 200.
type Status struct {
	Code         int
	Status       string
	HTML         string
	ErrorMessage string
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	submissions  []Submission
	replies      []Reply
	nextID       int
	statuses     map[string][]Status
	statusCalls  map[string]int
	page         string
	pageRequests int
}

// DefaultPage is served until SetPage is called.
const DefaultPage = `<!doctype html><html><body><ul class="history list-group"></ul></body></html>`

// New starts a fake backend on a loopback port.
func New() *Server {
	s := &Server{
		nextID:      42,
		statuses:    map[string][]Status{},
		statusCalls: map[string]int{},
		page:        DefaultPage,
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/", s.handlePage)
	e.POST("/", s.handleSubmit)
	e.GET("/post-status/:id", s.handleStatus)
	s.Server = httptest.NewServer(e)
	return s
}

// QueueReply scripts the next submit response. Unscripted submits are accepted.
func (s *Server) QueueReply(code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, Reply{Code: code, Body: body})
}

// ScriptStatus sets the sequence of responses for a post. The last one repeats.
func (s *Server) ScriptStatus(id string, seq ...Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = seq
}

// SetPage replaces the composer page HTML.
func (s *Server) SetPage(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = html
}

// Submissions returns a copy of every recorded submission.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

// StatusCalls reports how often a post's status was requested.
func (s *Server) StatusCalls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls[id]
}

// PageRequests reports how often the page was loaded.
func (s *Server) PageRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageRequests
}

func (s *Server) handlePage(c echo.Context) error {
	s.mu.Lock()
	s.pageRequests++
	page := s.page
	s.mu.Unlock()
	return c.HTML(http.StatusOK, page)
}

func (s *Server) handleSubmit(c echo.Context) error {
	sub, err := readSubmission(c.Request())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "message": err.Error()})
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	var reply *Reply
	if len(s.replies) > 0 {
		reply = &s.replies[0]
		s.replies = s.replies[1:]
	}
	id := s.nextID
	if reply == nil {
		s.nextID++
	}
	s.mu.Unlock()

	if reply != nil {
		return c.Blob(reply.Code, echo.MIMEApplicationJSONCharsetUTF8, []byte(reply.Body))
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "message": "Post accepted.", "post_id": id})
}

func (s *Server) handleStatus(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	seq := s.statuses[id]
	call := s.statusCalls[id]
	s.statusCalls[id]++
	s.mu.Unlock()

	current := Status{Status: "queued"}
	if len(seq) > 0 {
		if call >= len(seq) {
			call = len(seq) - 1
		}
		current = seq[call]
	}
	code := current.Code
	if code == 0 {
		code = http.StatusOK
	}
	if code >= 400 {
		return c.String(code, http.StatusText(code))
	}
	body := map[string]any{"status": current.Status}
	if current.Status == "published" || current.Status == "failed" {
		body["html"] = current.HTML
		body["error_message"] = current.ErrorMessage
	}
	return c.JSON(code, body)
}

func readSubmission(r *http.Request) (Submission, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return Submission{}, fmt.Errorf("expected multipart body: %w", err)
	}
	var sub Submission
	if cookie, err := r.Cookie("session"); err == nil {
		sub.Cookie = cookie.Value
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return sub, nil
		}
		if err != nil {
			return Submission{}, err
		}
		if part.FileName() != "" {
			n, err := io.Copy(io.Discard, part)
			if err != nil {
				return Submission{}, err
			}
			sub.Files = append(sub.Files, File{
				Field:    part.FormName(),
				Name:     part.FileName(),
				MIMEType: part.Header.Get("Content-Type"),
				Size:     n,
			})
			continue
		}
		value, err := io.ReadAll(part)
		if err != nil {
			return Submission{}, err
		}
		sub.Fields = append(sub.Fields, Field{Name: part.FormName(), Value: string(value)})
	}
}
