package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// navigate loads url and waits for network quiescence within timeout.
func (s *Session) navigate(url string, timeout time.Duration) error {
	ms := float64(timeout.Milliseconds())
	waitUntil := playwright.WaitUntilState(waitUntilNetworkIdle)

	s.page.SetDefaultTimeout(ms)

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   &ms,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.URL = s.page.URL()
	return nil
}

// Evaluate runs script in page context. If ctx is cancelled while the script
// runs, the session is closed to unblock the call.
func (s *Session) Evaluate(ctx context.Context, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	result, err := s.page.Evaluate(script)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("evaluation aborted: %w", ctxErr)
		}
		return nil, fmt.Errorf("JavaScript execution failed: %w", err)
	}
	return result, nil
}

// Close closes the page, context and browser, in that order, and removes the
// session from its manager. Later calls return the first call's result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.context.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		if s.manager != nil {
			s.manager.forget(s.ID)
		}
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors closing session: %w", errors.Join(errs...))
		}
	})
	return s.closeErr
}
