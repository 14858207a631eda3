// Package localtime rewrites server UTC timestamps into the viewer's zone.
package localtime

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Layout is the display format for localized timestamps.
const Layout = "2006-01-02 15:04"

// Class marks elements whose text is a UTC timestamp.
const Class = "utc-timestamp"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// TextNode is anything holding a timestamp as text.
type TextNode interface {
	Text() string
	SetText(string)
}

// Format converts a UTC timestamp string into Layout in loc. ok is false when
// the value should be left alone, either because it is a placeholder or
// because it failed to parse.
func Format(raw string, loc *time.Location) (string, bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "N/A" || !strings.Contains(value, "T") {
		return raw, false, nil
	}
	if !hasZone(value) {
		value += "Z"
	}
	var (
		ts  time.Time
		err error
	)
	for _, layout := range parseLayouts {
		ts, err = time.Parse(layout, value)
		if err == nil {
			return ts.In(loc).Format(Layout), true, nil
		}
	}
	return raw, false, err
}

// Localize rewrites the text of node in place. Parse failures are logged and
// leave the node unchanged.
func Localize(node TextNode, loc *time.Location, logger *zap.Logger) {
	formatted, ok, err := Format(node.Text(), loc)
	if err != nil {
		logger.Warn("failed to localize timestamp", zap.String("value", node.Text()), zap.Error(err))
		return
	}
	if ok {
		node.SetText(formatted)
	}
}

func hasZone(value string) bool {
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		return true
	}
	t := strings.LastIndex(value, "T")
	tail := value[t+1:]
	return strings.ContainsAny(tail, "+-")
}

// elementText adapts an HTML element to TextNode by replacing its children
// with a single text node.
type elementText struct {
	node *html.Node
}

func (e elementText) Text() string {
	var b strings.Builder
	collectText(e.node, &b)
	return b.String()
}

func (e elementText) SetText(text string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// HasClass reports whether an element carries class in its class attribute.
func HasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// LocalizeTree localizes every timestamp element under root.
func LocalizeTree(root *html.Node, loc *time.Location, logger *zap.Logger) {
	if HasClass(root, Class) {
		Localize(elementText{node: root}, loc, logger)
		return
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		LocalizeTree(c, loc, logger)
	}
}
