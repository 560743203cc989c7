package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// SessionManager owns the Playwright driver and tracks open sessions so they
// can be torn down on shutdown. It implements Opener.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	opts        Options
	initialized bool
	logger      *logging.Logger
}

// NewSessionManager creates a new session manager. The driver is started
// lazily by Initialize or the first Open.
func NewSessionManager(opts Options, logger *logging.Logger) *SessionManager {
	if opts.Viewport.Width <= 0 {
		opts.Viewport.Width = DefaultViewportWidth
	}
	if opts.Viewport.Height <= 0 {
		opts.Viewport.Height = DefaultViewportHeight
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
	}
}

// Initialize installs (unless disabled) and starts the Playwright driver.
// It is safe to call more than once.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Discard driver output so it does not interleave with server logs
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if !m.opts.SkipInstall {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Open launches a new browser, navigates to url and waits for network
// quiescence. Navigation is bounded by timeout (DefaultNavigationTimeout when
// zero); cancelling ctx tears the browser down. On any error the browser is
// closed before returning.
func (m *SessionManager) Open(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	if err := m.Initialize(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := m.launch()
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = session.Close() })
	defer stop()

	if err := session.navigate(url, navigationTimeout(timeout)); err != nil {
		_ = session.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("navigation aborted: %w", ctxErr)
		}
		return nil, err
	}

	m.logger.Debugf("session %s opened %s", session.ID, session.URL)
	return session, nil
}

// launch starts a browser, context and page and registers the session.
func (m *SessionManager) launch() (*Session, error) {
	m.mu.Lock()
	pw := m.playwright
	m.mu.Unlock()

	headless := m.opts.Headless
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.opts.Viewport.Width,
			Height: m.opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		URL:       "about:blank",
		browser:   browser,
		context:   bctx,
		page:      page,
		manager:   m,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session, nil
}

// forget removes a closed session from the registry.
func (m *SessionManager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// ActiveSessions returns the number of sessions that are open right now.
func (m *SessionManager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes all sessions and stops the Playwright driver.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range open {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID, err))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.playwright = nil
		m.initialized = false
	}

	return errors.Join(errs...)
}

func navigationTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultNavigationTimeout
	}
	return d
}
