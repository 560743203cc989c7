package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/entrhq/sectionforge/pkg/browser"
	"github.com/entrhq/sectionforge/pkg/config"
	"github.com/entrhq/sectionforge/pkg/generate"
	"github.com/entrhq/sectionforge/pkg/llm"
	"github.com/entrhq/sectionforge/pkg/llm/openai"
	"github.com/entrhq/sectionforge/pkg/llm/tokenizer"
	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/scrape"
)

// configFlags are the options every command shares.
type configFlags struct {
	file     string
	envFile  string
	logLevel string
	logDir   string
	gemini   string
	openai   string
	headed   bool
}

func (f *configFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "config", "", "YAML configuration file")
	fs.StringVar(&f.envFile, "env-file", config.DefaultDotEnv, "dotenv file to read (empty to skip)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logDir, "log-dir", "", "directory for the JSON log file")
	fs.StringVar(&f.gemini, "gemini-key", "", "default provider API key (or set GEMINI_API_KEY)")
	fs.StringVar(&f.openai, "openai-key", "", "alternate provider API key (or set OPENAI_API_KEY)")
	fs.BoolVar(&f.headed, "headed", false, "show the browser window")
}

func (f *configFlags) load(overrides config.Overrides) (*config.Config, error) {
	overrides.LogLevel = f.logLevel
	overrides.LogDir = f.logDir
	overrides.DefaultAPIKey = f.gemini
	overrides.AlternateAPIKey = f.openai
	overrides.Headed = f.headed

	dotenv := []string{}
	if f.envFile != "" {
		dotenv = []string{f.envFile}
	}
	return config.Load(config.LoadOptions{
		File:      f.file,
		DotEnv:    dotenv,
		Overrides: overrides,
	})
}

// app holds the wired pipeline.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	browsers  *browser.SessionManager
	scraper   *scrape.Scraper
	generator *generate.Generator
}

// newApp wires the browser, scraper, providers and generator from cfg.
// console receives human-readable log output.
func newApp(cfg *config.Config, console io.Writer) (*app, error) {
	logger, err := logging.New(logging.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: console,
	})
	if logger == nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if err != nil {
		logger.Warnf("File logging disabled: %v", err)
	}

	hosts, err := scrape.NewHostMatcher(cfg.Scrape.AllowedHosts, cfg.Scrape.DeniedHosts)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	browsers := browser.NewSessionManager(browser.Options{
		Headless: cfg.Browser.Headless,
		Viewport: browser.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
		SkipInstall: cfg.Browser.SkipInstall,
	}, logger.Named("browser"))

	scraper := scrape.New(browsers,
		scrape.WithHostMatcher(hosts),
		scrape.WithNavigationTimeout(cfg.Browser.NavigationTimeout),
		scrape.WithLogger(logger.Named("scrape")),
	)

	gateway := llm.NewGateway(
		openai.NewProvider(
			openai.WithName("Gemini"),
			openai.WithBaseURL(cfg.Providers.Default.BaseURL),
			openai.WithModel(cfg.Providers.Default.Model),
		),
		openai.NewProvider(
			openai.WithName("OpenAI"),
			openai.WithBaseURL(cfg.Providers.Alternate.BaseURL),
			openai.WithModel(cfg.Providers.Alternate.Model),
		),
		llm.Credentials{
			Default:   cfg.Providers.Default.APIKey,
			Alternate: cfg.Providers.Alternate.APIKey,
		},
		llm.WithLogger(logger.Named("llm")),
	)

	genOpts := []generate.Option{generate.WithLogger(logger.Named("generate"))}
	if tok, err := tokenizer.New(); err != nil {
		logger.Warnf("Tokenizer unavailable, using estimates: %v", err)
	} else {
		genOpts = append(genOpts, generate.WithTokenizer(tok))
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		browsers:  browsers,
		scraper:   scraper,
		generator: generate.New(gateway, genOpts...),
	}, nil
}

// Close stops any browsers and flushes the log.
func (a *app) Close() {
	if err := a.browsers.Shutdown(); err != nil {
		a.logger.Warnf("Browser shutdown: %v", err)
	}
	_ = a.logger.Close()
}

// cliConsole returns the log sink for interactive commands: quiet unless the
// user asked for a level.
func cliConsole(f *configFlags) io.Writer {
	if f.logLevel == "" {
		return io.Discard
	}
	return os.Stderr
}
