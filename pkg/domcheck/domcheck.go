// Package domcheck inspects rendered page HTML for the form fields a wizard
// step is expected to expose.
package domcheck

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Snapshot is the set of element ids found in a document, plus the option
// values offered by each select element that has an id.
type Snapshot struct {
	IDs     map[string]string
	Options map[string][]string
}

// Parse reads an HTML document and records its ids and select options.
func Parse(r io.Reader) (*Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	snap := &Snapshot{
		IDs:     make(map[string]string),
		Options: make(map[string][]string),
	}
	snap.walk(doc, "")
	return snap, nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) (*Snapshot, error) {
	return Parse(strings.NewReader(s))
}

// walk visits n and its descendants. selectID is the id of the nearest
// enclosing select, if any.
func (s *Snapshot) walk(n *html.Node, selectID string) {
	if n.Type == html.ElementNode {
		id := attr(n, "id")
		if id != "" {
			s.IDs[id] = n.Data
		}

		switch n.Data {
		case "select":
			selectID = id
		case "option":
			if selectID != "" {
				value, ok := attrOK(n, "value")
				if !ok {
					value = strings.TrimSpace(textContent(n))
				}
				s.Options[selectID] = append(s.Options[selectID], value)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c, selectID)
	}
}

// Has reports whether an element with id exists.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.IDs[id]
	return ok
}

// HasOption reports whether the select with selectID offers value.
func (s *Snapshot) HasOption(selectID, value string) bool {
	for _, v := range s.Options[selectID] {
		if v == value {
			return true
		}
	}
	return false
}

// Problems checks expectations against the snapshot. An expectation is
// either an element id ("billingPhone") or a select id and option value
// joined by "=" ("billingProvince=AB"). The result is sorted.
func (s *Snapshot) Problems(expect []string) []string {
	var problems []string
	for _, e := range expect {
		id, value, isOption := strings.Cut(e, "=")
		if !s.Has(id) {
			problems = append(problems, fmt.Sprintf("missing #%s", id))
			continue
		}
		if isOption && !s.HasOption(id, value) {
			problems = append(problems, fmt.Sprintf("#%s has no option %q", id, value))
		}
	}
	sort.Strings(problems)
	return problems
}

// Check parses doc and returns the unmet expectations.
func Check(doc string, expect []string) ([]string, error) {
	snap, err := ParseString(doc)
	if err != nil {
		return nil, err
	}
	return snap.Problems(expect), nil
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
