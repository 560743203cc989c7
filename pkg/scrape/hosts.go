package scrape

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// HostMatcher decides which hosts may be rendered. Patterns use glob syntax
// with '.' as the separator, so "*.example.com" matches "www.example.com"
// but not "a.b.example.com"; "**.example.com" matches both.
type HostMatcher struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewHostMatcher compiles the allow and deny patterns.
func NewHostMatcher(allowed, denied []string) (*HostMatcher, error) {
	hm := &HostMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(strings.ToLower(pattern), '.')
		if err != nil {
			return nil, fmt.Errorf("invalid allowed host pattern '%s': %w", pattern, err)
		}
		hm.allowed = append(hm.allowed, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(strings.ToLower(pattern), '.')
		if err != nil {
			return nil, fmt.Errorf("invalid denied host pattern '%s': %w", pattern, err)
		}
		hm.denied = append(hm.denied, g)
	}

	return hm, nil
}

// IsAllowed reports whether host may be scraped. Denied patterns win; with no
// allowed patterns every host not denied is allowed.
func (hm *HostMatcher) IsAllowed(host string) bool {
	if hm == nil {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	for _, g := range hm.denied {
		if g.Match(host) {
			return false
		}
	}

	if len(hm.allowed) == 0 {
		return true
	}

	for _, g := range hm.allowed {
		if g.Match(host) {
			return true
		}
	}
	return false
}
