package compose

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EditorHTML renders plain editor text the way the rich editor serializes it:
// one paragraph per line and an explicit break for empty lines.
func EditorHTML(plain string) string {
	plain = strings.TrimRight(strings.ReplaceAll(plain, "\r\n", "\n"), "\n")
	if strings.TrimSpace(plain) == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(plain, "\n") {
		if line == "" {
			b.WriteString("<p><br></p>")
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return b.String()
}

// CloneFromTelegram converts a published Telegram body back into editor form.
// Bold and italic are rewritten to strong/em, blank lines split paragraphs and
// single newlines become breaks. The plain text is what the terminal editor shows.
func CloneFromTelegram(tgHTML string) (editorHTML, plain string, err error) {
	tgHTML = strings.ReplaceAll(tgHTML, "\r\n", "\n")
	var htmlParts, plainParts []string
	for _, para := range strings.Split(tgHTML, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		nodes, err := xhtml.ParseFragment(strings.NewReader(para), &xhtml.Node{
			Type:     xhtml.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
		})
		if err != nil {
			return "", "", err
		}
		var body, text strings.Builder
		for _, n := range nodes {
			normalizeInline(n)
			if err := xhtml.Render(&body, n); err != nil {
				return "", "", err
			}
			text.WriteString(nodeText(n))
		}
		htmlParts = append(htmlParts, "<p>"+strings.ReplaceAll(body.String(), "\n", "<br>")+"</p>")
		plainParts = append(plainParts, text.String())
	}
	return strings.Join(htmlParts, ""), strings.Join(plainParts, "\n\n"), nil
}

func normalizeInline(n *xhtml.Node) {
	if n.Type == xhtml.ElementNode {
		switch n.DataAtom {
		case atom.B:
			n.Data, n.DataAtom = "strong", atom.Strong
		case atom.I:
			n.Data, n.DataAtom = "em", atom.Em
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		normalizeInline(c)
	}
}

func nodeText(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Br {
		return "\n"
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
