package types

// Rect is an element's layout box in CSS pixels, as reported by the browser.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Section is a page region returned to clients by a scrape.
type Section struct {
	// ID is the element's own id attribute, or "section-<n>" when it has none.
	// IDs are not guaranteed unique: duplicate native ids are passed through.
	ID string `json:"id"`

	// TagName is the lower-cased element tag (section, header, div, ...).
	TagName string `json:"tagName"`

	// HTML is the element's outer markup with script, style, noscript and
	// iframe subtrees removed.
	HTML string `json:"html"`

	// Text is a preview of the element's text content, at most 200 characters.
	Text string `json:"text"`

	// Rect is the element's bounding box.
	Rect Rect `json:"rect"`
}
