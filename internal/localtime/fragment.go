package localtime

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses an HTML fragment as the children of a list.
func ParseFragment(fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "ul",
		DataAtom: atom.Ul,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	return nodes, nil
}

// LocalizeFragment rewrites every timestamp element of an HTML fragment and
// returns the re-rendered fragment.
func LocalizeFragment(fragment string, loc *time.Location, logger *zap.Logger) (string, error) {
	nodes, err := ParseFragment(fragment)
	if err != nil {
		return fragment, err
	}
	var b strings.Builder
	for _, n := range nodes {
		LocalizeTree(n, loc, logger)
		if err := html.Render(&b, n); err != nil {
			return fragment, fmt.Errorf("failed to render fragment: %w", err)
		}
	}
	return b.String(), nil
}
