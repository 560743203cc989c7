package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/entrhq/sectionforge/pkg/config"
	"github.com/entrhq/sectionforge/pkg/generate"
	"github.com/entrhq/sectionforge/pkg/types"
)

// generationFlags are the options of commands that produce a component.
type generationFlags struct {
	instructions string
	refine       bool
	provider     string
	apiKey       string
	output       outputOptions
}

func (f *generationFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.instructions, "instructions", "", "extra instructions for the model")
	fs.BoolVar(&f.refine, "refine", false, "treat -instructions as a refinement of the component")
	fs.StringVar(&f.provider, "provider", "", "model provider: gemini (default) or openai")
	fs.StringVar(&f.apiKey, "api-key", "", "provider API key for this request only")
	fs.StringVar(&f.output.out, "o", "", "write the component to this file")
	fs.BoolVar(&f.output.plain, "plain", false, "disable syntax highlighting")
	fs.BoolVar(&f.output.copy, "copy", false, "copy the component to the clipboard")
}

func (f *generationFlags) request(html string) (types.GenerateRequest, error) {
	kind, err := types.ParseProviderKind(f.provider)
	if err != nil {
		return types.GenerateRequest{}, err
	}
	return types.GenerateRequest{
		HTML:         html,
		Instructions: f.instructions,
		Provider:     kind,
		Credential:   f.apiKey,
	}, nil
}

// run generates or refines per the flags and writes the result.
func (f *generationFlags) run(ctx context.Context, gen *generate.Generator, html string) error {
	req, err := f.request(html)
	if err != nil {
		return err
	}

	var res *generate.Result
	if f.refine {
		res, err = gen.Refine(ctx, req)
	} else {
		res, err = gen.Generate(ctx, req)
	}
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, res, f.output)
}

// generateOptions are the parsed arguments of the generate command.
type generateOptions struct {
	shared  configFlags
	gen     generationFlags
	file    string
	pageURL string
	section string
}

func parseGenerateArgs(args []string) (*generateOptions, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	o := &generateOptions{}
	o.shared.register(fs)
	o.gen.register(fs)
	fs.StringVar(&o.file, "file", "", "read markup from this file (- for stdin)")
	fs.StringVar(&o.pageURL, "url", "", "scrape this page and use one of its sections")
	fs.StringVar(&o.section, "section", "", "section id or index to use with a page URL (default: first)")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, err
	}
	switch {
	case len(positional) > 1:
		return nil, fmt.Errorf("usage: sectionforge generate [options] [url]")
	case len(positional) == 1 && o.pageURL != "":
		return nil, fmt.Errorf("page URL given twice: %q and -url %q", positional[0], o.pageURL)
	case len(positional) == 1:
		o.pageURL = positional[0]
	}
	if (o.file == "") == (o.pageURL == "") {
		return nil, fmt.Errorf("exactly one of -file or a page URL is required")
	}
	return o, nil
}

func runGenerate(ctx context.Context, args []string) error {
	o, err := parseGenerateArgs(args)
	if err != nil {
		return err
	}

	cfg, err := o.shared.load(config.Overrides{})
	if err != nil {
		return err
	}
	a, err := newApp(cfg, cliConsole(&o.shared))
	if err != nil {
		return err
	}
	defer a.Close()

	var html string
	if o.file != "" {
		html, err = readMarkup(o.file)
	} else {
		html, err = scrapeSection(ctx, a, o.pageURL, o.section)
	}
	if err != nil {
		return err
	}

	return o.gen.run(ctx, a.generator, html)
}

func readMarkup(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read markup: %w", err)
	}
	return string(data), nil
}

func scrapeSection(ctx context.Context, a *app, pageURL, ref string) (string, error) {
	found, err := a.scraper.Scrape(ctx, pageURL)
	if err != nil {
		return "", err
	}
	s, err := selectSection(found, ref)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr, tipsStyle.Render(fmt.Sprintf("Using <%s> %s", s.TagName, s.ID)))
	return s.HTML, nil
}

// selectSection finds a section by id, then by index. An empty ref selects
// the first section.
func selectSection(found []types.Section, ref string) (types.Section, error) {
	if len(found) == 0 {
		return types.Section{}, fmt.Errorf("no sections found")
	}
	if ref == "" {
		return found[0], nil
	}
	for _, s := range found {
		if s.ID == ref {
			return s, nil
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 0 && idx < len(found) {
		return found[idx], nil
	}
	return types.Section{}, fmt.Errorf("section %q not found", ref)
}
