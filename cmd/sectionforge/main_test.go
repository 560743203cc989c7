package main

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/sectionforge/pkg/generate"
	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []types.Section{
	{ID: "hero", TagName: "section", HTML: "<section id=\"hero\"></section>", Text: "Welcome home", Rect: types.Rect{Width: 1280, Height: 600}},
	{ID: "section-1", TagName: "div", HTML: "<div></div>", Text: "", Rect: types.Rect{Width: 300, Height: 200}},
	{ID: "footer", TagName: "footer", HTML: "<footer></footer>", Text: "Contact", Rect: types.Rect{Width: 1280, Height: 120}},
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"serve", "scrape", "pick", "generate"} {
		c, ok := lookup(name)
		require.True(t, ok, name)
		assert.NotNil(t, c.run)
	}
	_, ok := lookup("deploy")
	assert.False(t, ok)
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	section := fs.String("section", "", "")
	copyOut := fs.Bool("copy", false, "")

	positional, err := parseInterspersed(fs, []string{"https://example.com", "-section", "hero", "-copy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, positional)
	assert.Equal(t, "hero", *section)
	assert.True(t, *copyOut)
}

func TestParseGenerateArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantURL     string
		wantFile    string
		wantSection string
		wantErr     string
	}{
		{name: "url then section", args: []string{"https://example.com", "-section", "hero"}, wantURL: "https://example.com", wantSection: "hero"},
		{name: "section then url", args: []string{"-section", "2", "https://example.com"}, wantURL: "https://example.com", wantSection: "2"},
		{name: "url flag", args: []string{"-url", "https://example.com"}, wantURL: "https://example.com"},
		{name: "file", args: []string{"-file", "-", "-instructions", "dark"}, wantFile: "-"},
		{name: "nothing", args: nil, wantErr: "exactly one of -file or a page URL is required"},
		{name: "file and url", args: []string{"-file", "a.html", "https://example.com"}, wantErr: "exactly one of -file or a page URL is required"},
		{name: "url twice", args: []string{"-url", "https://a.com", "https://b.com"}, wantErr: "page URL given twice"},
		{name: "two urls", args: []string{"https://a.com", "https://b.com"}, wantErr: "usage:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseGenerateArgs(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, o.pageURL)
			assert.Equal(t, tt.wantFile, o.file)
			assert.Equal(t, tt.wantSection, o.section)
		})
	}
}

func TestSelectSection(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr bool
	}{
		{name: "empty selects first", ref: "", wantID: "hero"},
		{name: "by id", ref: "footer", wantID: "footer"},
		{name: "by index", ref: "1", wantID: "section-1"},
		{name: "index out of range", ref: "3", wantErr: true},
		{name: "negative index", ref: "-1", wantErr: true},
		{name: "unknown id", ref: "nav", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := selectSection(sample, tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, s.ID)
		})
	}

	_, err := selectSection(nil, "")
	assert.EqualError(t, err, "no sections found")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("  a\n\tb   c ", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo", preview("héllo", 5))
}

func TestSectionsTable(t *testing.T) {
	out := sectionsTable(sample)

	for _, want := range []string{"ID", "TAG", "hero", "section-1", "footer", "1280x600", "Welcome home"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteSectionsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSectionsJSON(&buf, sample[:1]))

	assert.Contains(t, buf.String(), `"sections": [`)
	assert.Contains(t, buf.String(), `"tagName": "section"`)
}

func TestPrintCode(t *testing.T) {
	var plain bytes.Buffer
	require.NoError(t, printCode(&plain, "export default function A() {}", true))
	assert.Equal(t, "export default function A() {}\n", plain.String())

	var colored bytes.Buffer
	require.NoError(t, printCode(&colored, "export default function A() {}", false))
	assert.Contains(t, colored.String(), "function")
	assert.Contains(t, colored.String(), "\x1b[", "highlighted output carries escape codes")
}

func TestWriteResult_File(t *testing.T) {
	path := t.TempDir() + "/Hero.tsx"
	var buf bytes.Buffer

	err := writeResult(&buf, &generate.Result{Code: "export default function Hero() {}"}, outputOptions{out: path})
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	data, err := readMarkup(path)
	require.NoError(t, err)
	assert.Equal(t, "export default function Hero() {}\n", data)
}

func TestGenerationFlagsRequest(t *testing.T) {
	f := generationFlags{instructions: "dark", provider: "openai", apiKey: "sk"}
	req, err := f.request("<p/>")
	require.NoError(t, err)
	assert.Equal(t, types.GenerateRequest{
		HTML:         "<p/>",
		Instructions: "dark",
		Provider:     types.ProviderAlternate,
		Credential:   "sk",
	}, req)

	f.provider = "mistral"
	_, err = f.request("<p/>")
	assert.Error(t, err)
}

func TestGenerationFlagsRun_InvalidProvider(t *testing.T) {
	f := generationFlags{provider: "mistral"}
	err := f.run(context.Background(), nil, "<p/>")
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

func TestPickModel(t *testing.T) {
	key := func(s string) tea.KeyMsg {
		switch s {
		case "enter":
			return tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			return tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			return tea.KeyMsg{Type: tea.KeyDown}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	t.Run("enter chooses the selected section", func(t *testing.T) {
		var m tea.Model = newPickModel("https://example.com", sample)
		m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		m, _ = m.Update(key("down"))
		m, cmd := m.Update(key("enter"))

		require.NotNil(t, cmd)
		pm := m.(pickModel)
		require.NotNil(t, pm.chosen)
		assert.Equal(t, "section-1", pm.chosen.ID)
		assert.Empty(t, pm.View())
	})

	t.Run("esc quits without a choice", func(t *testing.T) {
		var m tea.Model = newPickModel("https://example.com", sample)
		m, cmd := m.Update(key("esc"))

		require.NotNil(t, cmd)
		pm := m.(pickModel)
		assert.Nil(t, pm.chosen)
		assert.True(t, pm.quitting)
	})

	t.Run("view lists sections", func(t *testing.T) {
		var m tea.Model = newPickModel("https://example.com", sample)
		m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		view := m.View()

		assert.Contains(t, view, "Sections on https://example.com")
		assert.True(t, strings.Contains(view, "hero"))
	})
}

func TestSectionItem(t *testing.T) {
	item := sectionItem{index: 2, section: sample[2]}
	assert.Equal(t, "2. <footer> footer", item.Title())
	assert.Equal(t, "1280x120  Contact", item.Description())
	assert.Contains(t, item.FilterValue(), "Contact")

	assert.Equal(t, "300x200", sectionItem{index: 1, section: sample[1]}.Description())
}
