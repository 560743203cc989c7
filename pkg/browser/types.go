package browser

import (
	"context"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Page is an open, navigated browser page. It is owned by exactly one caller
// and must be closed on every exit path.
type Page interface {
	// Evaluate runs script in page context and returns its JSON-serializable result.
	Evaluate(ctx context.Context, script string) (any, error)

	// Close tears down the page and the browser behind it. Safe to call multiple times.
	Close() error
}

// Opener renders a URL into a fresh Page.
type Opener interface {
	Open(ctx context.Context, url string, timeout time.Duration) (Page, error)
}

// Session represents one launched browser with its context and page.
// Sessions are never pooled: each Open launches a new browser.
type Session struct {
	// ID is the unique identifier for this session
	ID string

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// URL is the page URL after navigation (redirects applied)
	URL string

	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	manager *SessionManager

	closeOnce sync.Once
	closeErr  error
}

// Options configures a SessionManager.
type Options struct {
	// Headless controls whether browsers run without a visible window
	Headless bool

	// Viewport sets the initial viewport size; zero values use the defaults
	Viewport Viewport

	// SkipInstall skips the driver/browser download at initialization
	SkipInstall bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for browser sessions
const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
)

// waitUntilNetworkIdle is the navigation completion state: no network
// connections for at least 500ms.
const waitUntilNetworkIdle = "networkidle"
