package sections

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/sectionforge/pkg/types"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeType tags a snapshot node.
type NodeType string

const (
	NodeElement NodeType = "e" // NodeElement is an element with optional rect, attributes and children.
	NodeText    NodeType = "x" // NodeText is a text or CDATA node.
	NodeComment NodeType = "m" // NodeComment is a comment node.
)

// Node is one node of a DOM snapshot as produced by SnapshotScript.
type Node struct {
	Type      NodeType    `json:"t"`
	Tag       string      `json:"n,omitempty"`
	Namespace string      `json:"ns,omitempty"`
	Attrs     [][2]string `json:"a,omitempty"`
	Rect      *types.Rect `json:"r,omitempty"`
	Data      string      `json:"d,omitempty"`
	Children  []*Node     `json:"c,omitempty"`
}

// Document is a decoded snapshot: an html.Node tree plus the layout rect of
// every element that reported one.
type Document struct {
	root  *html.Node
	rects map[*html.Node]types.Rect
}

// ErrEmptySnapshot is returned when the page produced no document element.
var ErrEmptySnapshot = errors.New("empty DOM snapshot")

// Decode parses the JSON string returned by SnapshotScript.
func Decode(data []byte) (*Document, error) {
	var root *Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode DOM snapshot: %w", err)
	}
	return Build(root)
}

// DecodeValue accepts whatever the renderer returned for SnapshotScript:
// the JSON string itself, or an already-decoded value.
func DecodeValue(v any) (*Document, error) {
	switch val := v.(type) {
	case nil:
		return nil, ErrEmptySnapshot
	case string:
		return Decode([]byte(val))
	case []byte:
		return Decode(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode DOM snapshot: %w", err)
		}
		return Decode(data)
	}
}

// Build converts a snapshot tree rooted at the document element into a Document.
func Build(root *Node) (*Document, error) {
	if root == nil {
		return nil, ErrEmptySnapshot
	}
	if root.Type != NodeElement {
		return nil, fmt.Errorf("snapshot root must be an element, got %q", root.Type)
	}

	doc := &Document{
		root:  &html.Node{Type: html.DocumentNode},
		rects: make(map[*html.Node]types.Rect),
	}
	if err := doc.build(root, doc.root); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) build(n *Node, parent *html.Node) error {
	switch n.Type {
	case NodeElement:
		if n.Tag == "" {
			return errors.New("snapshot element without tag name")
		}
		tag := n.Tag
		if n.Namespace == "" {
			tag = strings.ToLower(tag)
		}

		el := &html.Node{
			Type:      html.ElementNode,
			Data:      tag,
			DataAtom:  atom.Lookup([]byte(tag)),
			Namespace: n.Namespace,
		}
		for _, a := range n.Attrs {
			el.Attr = append(el.Attr, html.Attribute{Key: a[0], Val: a[1]})
		}
		if n.Rect != nil {
			d.rects[el] = *n.Rect
		}
		parent.AppendChild(el)

		// Scripts can give void elements children; the serializer rejects them.
		if n.Namespace == "" && voidElements[tag] {
			return nil
		}
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			if err := d.build(child, el); err != nil {
				return err
			}
		}
	case NodeText:
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: n.Data})
	case NodeComment:
		parent.AppendChild(&html.Node{Type: html.CommentNode, Data: n.Data})
	default:
		return fmt.Errorf("unknown snapshot node type %q", n.Type)
	}
	return nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Rect returns the layout rect recorded for n, and whether one was recorded.
func (d *Document) Rect(n *html.Node) (types.Rect, bool) {
	r, ok := d.rects[n]
	return r, ok
}

// voidElements cannot have children in serialized HTML.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}
