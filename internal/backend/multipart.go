package backend

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"

	"github.com/csheth/postdeck/internal/attach"
	"github.com/csheth/postdeck/internal/compose"
)

// MediaField is the repeated form field carrying attachments.
const MediaField = "media"

// streamMultipart encodes req on the fly so large videos are never buffered in memory.
func streamMultipart(req compose.Request) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writeForm(writer, req)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, writer.FormDataContentType()
}

func writeForm(w *multipart.Writer, req compose.Request) error {
	fields := formFields(req)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	for _, a := range req.Attachments {
		if err := writeFile(w, a); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return nil
}

// formFields lists the non-file fields in the order the form declares them.
// Unchecked toggles are omitted, as a browser would.
func formFields(req compose.Request) [][2]string {
	fields := [][2]string{{"text_html", req.TextHTML}}
	if req.SeparateVK {
		fields = append(fields, [2]string{"text_vk", req.TextVK}, [2]string{"separate_vk_text", formatBool(true)})
	}
	for _, p := range compose.AllPlatforms {
		if req.Platforms.Targets[p].Publish {
			fields = append(fields, [2]string{"publish_" + string(p), formatBool(true)})
		}
	}
	for _, p := range compose.AllPlatforms {
		if channel := req.Platforms.Targets[p].Channel; channel != "" {
			fields = append(fields, [2]string{"channel_" + string(p), channel})
		}
	}
	layout := req.Platforms.VKLayout
	if layout == "" {
		layout = compose.DefaultVKLayout
	}
	fields = append(fields, [2]string{"vk_layout", layout})
	for _, b := range req.Buttons {
		fields = append(fields, [2]string{"button_text", b.Text}, [2]string{"button_url", b.Target})
	}
	if req.Schedule != "" {
		fields = append(fields, [2]string{"schedule", req.Schedule})
	}
	fields = append(fields, [2]string{"tz_offset_minutes", formatInt(req.TZOffsetMinutes)})
	if req.OptimizeVideo {
		fields = append(fields, [2]string{"optimize_video", formatBool(true)})
	}
	return fields
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, a attach.Attachment) error {
	file, err := os.Open(a.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, MediaField, quoteEscaper.Replace(a.Name)))
	contentType := a.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}
