// Package sections detects the meaningful regions of a rendered web page.
//
// Extraction runs in two halves. In the browser, SnapshotScript walks the
// live DOM once and serializes it to a JSON tree in which every element
// carries its layout rect. In Go, Decode rebuilds that tree as golang.org/x/net/html
// nodes and Extract applies the detection heuristic to it. Because Extract
// only sees the snapshot, it is a pure function: the same snapshot always
// yields the same sections in the same order.
//
// # Heuristic
//
// Candidates are discovered in two passes whose results are unioned in
// first-seen order:
//
//  1. Semantic pass: every section, header, footer, main and nav element.
//  2. Structural pass: every direct child of body, every direct child of a
//     main element, and every element whose class or id contains "section".
//     An element already found by the first pass is not added again.
//
// Deduplication is by node identity only. Two distinct elements with
// identical markup are both kept.
//
// A candidate survives filtering when its rect is at least 100x100 pixels and
// it has either non-blank text content or a descendant img.
//
// Survivors are serialized in order. The position in the filtered sequence
// names elements that lack an id attribute ("section-0", "section-1", ...),
// so clients must treat the order as significant.
//
// # Serialization
//
// Section.HTML is a deep copy of the element with script, style, noscript and
// iframe subtrees removed. Attribute values are kept as they are: relative or
// broken image sources are not resolved. Section.Text is the element's text
// content, trimmed and cut at 200 characters.
package sections
