package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/entrhq/sectionforge/pkg/config"
	"github.com/entrhq/sectionforge/pkg/types"
)

const previewWidth = 60

func runScrape(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	var (
		shared configFlags
		asJSON bool
	)
	shared.register(fs)
	fs.BoolVar(&asJSON, "json", false, "print the sections as JSON")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: sectionforge scrape [options] <url>")
	}

	cfg, err := shared.load(config.Overrides{})
	if err != nil {
		return err
	}
	a, err := newApp(cfg, cliConsole(&shared))
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.scraper.Scrape(ctx, positional[0])
	if err != nil {
		return err
	}

	if asJSON {
		return writeSectionsJSON(os.Stdout, found)
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d sections on %s", len(found), positional[0])))
	fmt.Println(sectionsTable(found))
	return nil
}

func writeSectionsJSON(w io.Writer, found []types.Section) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string][]types.Section{"sections": found})
}

// sectionsTable renders one row per section.
func sectionsTable(found []types.Section) string {
	rows := make([][]string, 0, len(found))
	for i, s := range found {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			s.ID,
			s.TagName,
			fmt.Sprintf("%.0fx%.0f", s.Rect.Width, s.Rect.Height),
			preview(s.Text, previewWidth),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tipsStyle).
		Headers("#", "ID", "TAG", "SIZE", "TEXT").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		String()
}

// preview flattens whitespace and cuts s to width runes.
func preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
