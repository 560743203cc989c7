package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entrhq/sectionforge/pkg/browser"
	"github.com/entrhq/sectionforge/pkg/sections"
	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// heroSnapshot is what SnapshotScript returns for
// <body><section id="hero"><h1>Welcome</h1></section></body> at 400x300.
const heroSnapshot = `{"t":"e","n":"html","r":{"x":0,"y":0,"width":1280,"height":720},"c":[
  {"t":"e","n":"head","r":{"x":0,"y":0,"width":0,"height":0}},
  {"t":"e","n":"body","r":{"x":0,"y":0,"width":1280,"height":720},"c":[
    {"t":"e","n":"section","a":[["id","hero"]],"r":{"x":0,"y":0,"width":400,"height":300},"c":[
      {"t":"e","n":"h1","r":{"x":0,"y":0,"width":400,"height":40},"c":[{"t":"x","d":"Welcome"}]}
    ]}
  ]}
]}`

type fakePage struct {
	result   any
	err      error
	closed   int
	closeErr error
	script   string
}

func (p *fakePage) Evaluate(_ context.Context, script string) (any, error) {
	p.script = script
	return p.result, p.err
}

func (p *fakePage) Close() error {
	p.closed++
	return p.closeErr
}

type fakeOpener struct {
	page    *fakePage
	err     error
	url     string
	timeout time.Duration
	calls   int
}

func (o *fakeOpener) Open(_ context.Context, url string, timeout time.Duration) (browser.Page, error) {
	o.calls++
	o.url = url
	o.timeout = timeout
	if o.err != nil {
		return nil, o.err
	}
	return o.page, nil
}

func TestScrape_Hero(t *testing.T) {
	page := &fakePage{result: heroSnapshot}
	opener := &fakeOpener{page: page}
	s := New(opener, WithNavigationTimeout(5*time.Second))

	got, err := s.Scrape(context.Background(), "https://example.com/landing")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "hero", got[0].ID)
	assert.Equal(t, "section", got[0].TagName)
	assert.Equal(t, "Welcome", got[0].Text)
	assert.Equal(t, types.Rect{Width: 400, Height: 300}, got[0].Rect)
	assert.Equal(t, `<section id="hero"><h1>Welcome</h1></section>`, got[0].HTML)

	assert.Equal(t, "https://example.com/landing", opener.url)
	assert.Equal(t, 5*time.Second, opener.timeout)
	assert.Equal(t, sections.SnapshotScript, page.script)
	assert.Equal(t, 1, page.closed)
}

func TestScrape_DefaultTimeout(t *testing.T) {
	opener := &fakeOpener{page: &fakePage{result: heroSnapshot}}
	s := New(opener)

	_, err := s.Scrape(context.Background(), "http://example.com")
	require.NoError(t, err)
	assert.Equal(t, browser.DefaultNavigationTimeout, opener.timeout)
}

func TestScrape_ValidationErrors(t *testing.T) {
	hosts, err := NewHostMatcher(nil, []string{"localhost", "**.internal"})
	require.NoError(t, err)

	tests := []struct {
		name string
		url  string
	}{
		{name: "empty", url: ""},
		{name: "blank", url: "   "},
		{name: "no scheme", url: "example.com"},
		{name: "ftp", url: "ftp://example.com"},
		{name: "file", url: "file:///etc/passwd"},
		{name: "no host", url: "http://"},
		{name: "malformed", url: "http://[::1"},
		{name: "denied host", url: "http://localhost:3000"},
		{name: "denied subdomain", url: "https://api.corp.internal/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &fakeOpener{page: &fakePage{result: heroSnapshot}}
			s := New(opener, WithHostMatcher(hosts))

			got, err := s.Scrape(context.Background(), tt.url)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, types.KindValidation, types.KindOf(err))
			assert.Equal(t, 0, opener.calls, "no browser for invalid input")
		})
	}
}

func TestScrape_OpenFailure(t *testing.T) {
	cause := errors.New("navigation timeout of 60000 ms exceeded")
	opener := &fakeOpener{err: cause}
	s := New(opener)

	got, err := s.Scrape(context.Background(), "https://slow.example.com")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, types.KindExtractionFailed, types.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestScrape_ClosesPageOnEveryPath(t *testing.T) {
	tests := []struct {
		name string
		page *fakePage
	}{
		{name: "success", page: &fakePage{result: heroSnapshot}},
		{name: "evaluate error", page: &fakePage{err: errors.New("JavaScript execution failed")}},
		{name: "null result", page: &fakePage{result: nil}},
		{name: "corrupt snapshot", page: &fakePage{result: "{not json"}},
		{name: "close error", page: &fakePage{result: heroSnapshot, closeErr: errors.New("already closed")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeOpener{page: tt.page})

			_, _ = s.Scrape(context.Background(), "https://example.com")
			assert.Equal(t, 1, tt.page.closed)
		})
	}
}

func TestScrape_ExtractionFailures(t *testing.T) {
	evalErr := errors.New("JavaScript execution failed")
	s := New(&fakeOpener{page: &fakePage{err: evalErr}})

	got, err := s.Scrape(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, types.KindExtractionFailed, types.KindOf(err))
	assert.ErrorIs(t, err, evalErr)

	s = New(&fakeOpener{page: &fakePage{result: nil}})
	_, err = s.Scrape(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, sections.ErrEmptySnapshot)
	assert.Equal(t, types.KindExtractionFailed, types.KindOf(err))
}

func TestScrape_CloseErrorDoesNotFail(t *testing.T) {
	page := &fakePage{result: heroSnapshot, closeErr: errors.New("browser gone")}
	s := New(&fakeOpener{page: page})

	got, err := s.Scrape(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
