package sections

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// loadFixture parses markup and builds a Document the way a live page would
// report it. Each element's rect comes from its data-rect="x,y,w,h" attribute,
// which is removed; elements without one get a zero rect.
func loadFixture(t *testing.T, markup string) *Document {
	t.Helper()

	parsed, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	var root *html.Node
	for c := parsed.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			root = c
			break
		}
	}
	require.NotNil(t, root)

	data, err := json.Marshal(toSnapshot(t, root))
	require.NoError(t, err)

	doc, err := Decode(data)
	require.NoError(t, err)
	return doc
}

func toSnapshot(t *testing.T, n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return &Node{Type: NodeText, Data: n.Data}
	case html.CommentNode:
		return &Node{Type: NodeComment, Data: n.Data}
	case html.ElementNode:
	default:
		return nil
	}

	out := &Node{Type: NodeElement, Tag: n.Data, Namespace: n.Namespace, Rect: &types.Rect{}}
	for _, a := range n.Attr {
		if a.Key == "data-rect" {
			out.Rect = parseRect(t, a.Val)
			continue
		}
		out.Attrs = append(out.Attrs, [2]string{a.Key, a.Val})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := toSnapshot(t, c); s != nil {
			out.Children = append(out.Children, s)
		}
	}
	return out
}

func parseRect(t *testing.T, v string) *types.Rect {
	t.Helper()

	parts := strings.Split(v, ",")
	require.Len(t, parts, 4, "data-rect must be x,y,w,h")

	nums := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		require.NoError(t, err)
		nums[i] = f
	}
	return &types.Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
}

// findByID returns the first element with the given id attribute.
func findByID(doc *Document, id string) *html.Node {
	var found *html.Node
	walkElements(doc.Root(), func(n *html.Node) {
		if found == nil && attr(n, "id") == id {
			found = n
		}
	})
	return found
}
