package sections

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/entrhq/sectionforge/pkg/types"
	"golang.org/x/net/html"
)

// Heuristic thresholds
const (
	MinWidth       = 100.0
	MinHeight      = 100.0
	MaxPreviewText = 200
)

// semanticTags are collected by the first discovery pass.
var semanticTags = map[string]bool{
	"section": true,
	"header":  true,
	"footer":  true,
	"main":    true,
	"nav":     true,
}

// strippedTags are removed, with their subtrees, from serialized markup.
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
}

// Extract returns the page sections of doc in extraction order.
// The result is never nil.
func Extract(doc *Document) ([]types.Section, error) {
	candidates := Discover(doc.Root())
	kept := Filter(doc, candidates)

	out := make([]types.Section, 0, len(kept))
	for i, el := range kept {
		s, err := serialize(doc, el, i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Discover returns candidate elements under root: the semantic pass followed
// by the structural pass, without repeating an element.
func Discover(root *html.Node) []*html.Node {
	var candidates []*html.Node
	seen := make(map[*html.Node]bool)

	walkElements(root, func(n *html.Node) {
		if isHTML(n) && semanticTags[strings.ToLower(n.Data)] {
			candidates = append(candidates, n)
			seen[n] = true
		}
	})

	walkElements(root, func(n *html.Node) {
		if seen[n] || !isStructural(n) {
			return
		}
		candidates = append(candidates, n)
		seen[n] = true
	})

	return candidates
}

// Filter keeps candidates that are large enough and have content.
func Filter(doc *Document, candidates []*html.Node) []*html.Node {
	var kept []*html.Node
	for _, n := range candidates {
		r, _ := doc.Rect(n)
		if r.Height < MinHeight || r.Width < MinWidth {
			continue
		}
		if trimJS(textContent(n)) == "" && !hasImage(n) {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

func serialize(doc *Document, n *html.Node, index int) (types.Section, error) {
	id := attr(n, "id")
	if id == "" {
		id = fmt.Sprintf("section-%d", index)
	}

	var b strings.Builder
	if err := html.Render(&b, cloneStripped(n)); err != nil {
		return types.Section{}, fmt.Errorf("failed to serialize <%s>: %w", n.Data, err)
	}

	r, _ := doc.Rect(n)
	return types.Section{
		ID:      id,
		TagName: strings.ToLower(n.Data),
		HTML:    b.String(),
		Text:    truncateRunes(trimJS(textContent(n)), MaxPreviewText),
		Rect:    r,
	}, nil
}

// isStructural matches body > *, main > * and elements whose class or id
// contains "section".
func isStructural(n *html.Node) bool {
	if p := n.Parent; p != nil && p.Type == html.ElementNode && isHTML(p) {
		switch strings.ToLower(p.Data) {
		case "body", "main":
			return true
		}
	}
	return strings.Contains(attr(n, "class"), "section") || strings.Contains(attr(n, "id"), "section")
}

// walkElements calls fn for every element under n in document order.
func walkElements(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walkElements(c, fn)
	}
}

// textContent concatenates every descendant text node, as DOM textContent does.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func hasImage(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if isHTML(c) && strings.EqualFold(c.Data, "img") {
			return true
		}
		if hasImage(c) {
			return true
		}
	}
	return false
}

// cloneStripped deep-copies n without script, style, noscript and iframe subtrees.
func cloneStripped(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && strippedTags[strings.ToLower(child.Data)] {
			continue
		}
		c.AppendChild(cloneStripped(child))
	}
	return c
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isHTML(n *html.Node) bool {
	return n.Namespace == ""
}

// trimJS trims the characters String.prototype.trim removes.
func trimJS(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		if r == '\uFEFF' {
			return true
		}
		return r != '\u0085' && unicode.IsSpace(r)
	})
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
