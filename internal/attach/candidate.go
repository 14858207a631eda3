package attach

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const sniffLen = 512

// mediaExtensions covers container formats the runtime MIME table may not know.
var mediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".heic": "image/heic",
}

// FromPath stats a file and builds a Candidate. The MIME type comes from the
// extension when known and from content sniffing otherwise.
func FromPath(path string) (Candidate, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Candidate{}, errors.New("empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}
	mimeType, err := detectMIME(path)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Name:      filepath.Base(path),
		Path:      path,
		MIMEType:  mimeType,
		SizeBytes: info.Size(),
	}, nil
}

func detectMIME(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType, nil
		}
	}
	if known, ok := mediaExtensions[ext]; ok {
		return known, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if err != nil {
		return "application/octet-stream", nil
	}
	return mediaType, nil
}

// SplitPaths splits a pasted or dropped path list. Terminals paste dropped
// files as space separated paths, quoting or backslash-escaping spaces.
func SplitPaths(input string) []string {
	var (
		paths   []string
		current strings.Builder
		quote   rune
		escaped bool
	)
	flush := func() {
		if current.Len() > 0 {
			paths = append(paths, current.String())
			current.Reset()
		}
	}
	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
		case r == ' ' || r == '\n' || r == '\t' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return paths
}
