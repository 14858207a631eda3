// Package history models the publication history list shown under the composer.
package history

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/csheth/postdeck/internal/localtime"
)

// PerPage matches the page size of the web list.
const PerPage = 10

// Item is one published or failed post.
type Item struct {
	HTML   string
	Time   string
	Text   string
	Status string
	// Body is the Telegram HTML used to clone the post back into the editor.
	Body string
}

// ParseItem extracts an Item from an <li> element.
func ParseItem(li *html.Node) (Item, error) {
	var b strings.Builder
	if err := html.Render(&b, li); err != nil {
		return Item{}, err
	}
	item := Item{HTML: b.String(), Status: attr(li, "data-status"), Body: attr(li, "data-text")}
	walk(li, func(n *html.Node) bool {
		switch {
		case localtime.HasClass(n, "time"):
			item.Time = strings.TrimSpace(text(n))
		case localtime.HasClass(n, "text"):
			item.Text = collapse(text(n))
			if item.Body == "" {
				item.Body = inner(n)
			}
		case item.Status == "" && localtime.HasClass(n, "status"):
			item.Status = strings.ToLower(strings.TrimSpace(text(n)))
		default:
			return true
		}
		return false
	})
	return item, nil
}

// ParseFragment parses every <li> of an HTML fragment.
func ParseFragment(fragment string) ([]Item, error) {
	nodes, err := localtime.ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	var items []Item
	for _, n := range nodes {
		if n.Type != html.ElementNode || n.DataAtom != atom.Li {
			continue
		}
		item, err := ParseItem(n)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ParsePage finds the history list in a full page. found is false when the page
// has no history list at all, which callers treat as "reload needed".
func ParsePage(page string, loc *time.Location, logger *zap.Logger) (items []Item, found bool, err error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse page: %w", err)
	}
	var list *html.Node
	walk(doc, func(n *html.Node) bool {
		if list == nil && n.DataAtom == atom.Ul && localtime.HasClass(n, "history") {
			list = n
		}
		return list == nil
	})
	if list == nil {
		return nil, false, nil
	}
	localtime.LocalizeTree(list, loc, logger)
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		item, err := ParseItem(c)
		if err != nil {
			return nil, true, err
		}
		items = append(items, item)
	}
	return items, true, nil
}

func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		switch {
		case c.Type == html.TextNode:
			b.WriteString(c.Data)
		case c.DataAtom == atom.Br:
			b.WriteString("\n")
		}
		return true
	})
	return b.String()
}

func inner(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return strings.TrimSpace(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
