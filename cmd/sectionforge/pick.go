package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/sectionforge/pkg/config"
	"github.com/entrhq/sectionforge/pkg/types"
)

// sectionItem adapts a section to the list component.
type sectionItem struct {
	index   int
	section types.Section
}

func (i sectionItem) Title() string {
	return fmt.Sprintf("%d. <%s> %s", i.index, i.section.TagName, i.section.ID)
}

func (i sectionItem) Description() string {
	size := fmt.Sprintf("%.0fx%.0f", i.section.Rect.Width, i.section.Rect.Height)
	if i.section.Text == "" {
		return size
	}
	return size + "  " + preview(i.section.Text, previewWidth)
}

func (i sectionItem) FilterValue() string {
	return i.section.ID + " " + i.section.TagName + " " + i.section.Text
}

// pickModel lets the user choose one section.
type pickModel struct {
	list     list.Model
	chosen   *types.Section
	quitting bool
}

func newPickModel(pageURL string, found []types.Section) pickModel {
	items := make([]list.Item, len(found))
	for i, s := range found {
		items[i] = sectionItem{index: i, section: s}
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(salmonPink).
		BorderForeground(salmonPink)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(mutedGray).
		BorderForeground(salmonPink)

	l := list.New(items, d, 0, 0)
	l.Title = "Sections on " + pageURL
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(salmonPink).
		Bold(true).
		Padding(0, 1)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		}
	}

	return pickModel{list: l}
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(sectionItem); ok {
				s := item.section
				m.chosen = &s
			}
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	if m.chosen != nil || m.quitting {
		return ""
	}
	return docStyle.Render(m.list.View())
}

func runPick(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	var (
		shared configFlags
		gen    generationFlags
	)
	shared.register(fs)
	gen.register(fs)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: sectionforge pick [options] <url>")
	}
	pageURL := positional[0]

	cfg, err := shared.load(config.Overrides{})
	if err != nil {
		return err
	}
	a, err := newApp(cfg, cliConsole(&shared))
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.scraper.Scrape(ctx, pageURL)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no sections found on %s", pageURL)
	}

	final, err := tea.NewProgram(newPickModel(pageURL, found), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	chosen := final.(pickModel).chosen
	if chosen == nil {
		return nil
	}

	return gen.run(ctx, a.generator, chosen.HTML)
}
