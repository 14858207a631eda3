package history

import "strings"

// List is the searchable, paginated history.
type List struct {
	items   []Item
	found   bool
	query   string
	matches []int
	page    int
}

// NewList wraps parsed items. found mirrors ParsePage.
func NewList(items []Item, found bool) *List {
	l := &List{}
	l.Replace(items, found)
	return l
}

// Replace swaps the whole list, as after a page reload.
func (l *List) Replace(items []Item, found bool) {
	l.items = append([]Item(nil), items...)
	l.found = found
	l.ReIndex()
}

// Exists reports whether the page had a history list.
func (l *List) Exists() bool {
	return l.found
}

// Prepend inserts items at the top. Call ReIndex afterwards to refresh the filter.
func (l *List) Prepend(items ...Item) {
	l.items = append(append([]Item(nil), items...), l.items...)
}

// ReIndex rebuilds the filter with the current query and clamps the page.
func (l *List) ReIndex() {
	l.matches = l.matches[:0]
	q := strings.ToLower(strings.TrimSpace(l.query))
	for i, item := range l.items {
		if q == "" || strings.Contains(strings.ToLower(item.Time), q) || strings.Contains(strings.ToLower(item.Text), q) {
			l.matches = append(l.matches, i)
		}
	}
	if last := l.Pages() - 1; l.page > last {
		l.page = last
	}
	if l.page < 0 {
		l.page = 0
	}
}

// Search filters by time or text, case-insensitively, and returns to page one.
func (l *List) Search(query string) {
	l.query = query
	l.page = 0
	l.ReIndex()
}

// Query returns the active filter.
func (l *List) Query() string {
	return l.query
}

// Len is the number of items matching the filter.
func (l *List) Len() int {
	return len(l.matches)
}

// Total is the number of items regardless of the filter.
func (l *List) Total() int {
	return len(l.items)
}

// Pages is the page count, at least one.
func (l *List) Pages() int {
	if len(l.matches) == 0 {
		return 1
	}
	return (len(l.matches) + PerPage - 1) / PerPage
}

// CurrentPage is zero-based.
func (l *List) CurrentPage() int {
	return l.page
}

// SetPage moves to page p, clamped to the valid range.
func (l *List) SetPage(p int) {
	if p < 0 {
		p = 0
	}
	if p >= l.Pages() {
		p = l.Pages() - 1
	}
	l.page = p
}

// Visible returns the items on the current page.
func (l *List) Visible() []Item {
	start := l.page * PerPage
	if start >= len(l.matches) {
		return nil
	}
	end := start + PerPage
	if end > len(l.matches) {
		end = len(l.matches)
	}
	out := make([]Item, 0, end-start)
	for _, idx := range l.matches[start:end] {
		out = append(out, l.items[idx])
	}
	return out
}
