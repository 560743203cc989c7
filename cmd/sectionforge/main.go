// Package main provides the sectionforge command: an HTTP service that splits
// web pages into sections and turns a section into a React component, plus
// terminal commands that drive the same pipeline directly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const version = "0.1.0"

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

var commands = []command{
	{name: "serve", summary: "Run the HTTP API", run: runServe},
	{name: "scrape", summary: "List the sections of a page", run: runScrape},
	{name: "pick", summary: "Choose a section interactively and generate a component", run: runPick},
	{name: "generate", summary: "Generate a component from markup or a page section", run: runGenerate},
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 || (strings.HasPrefix(args[0], "-") && !isMeta(args[0])) {
		args = append([]string{"serve"}, args...)
	}

	name := args[0]
	switch name {
	case "-h", "--help", "help":
		usage()
		return
	case "-version", "--version", "version":
		fmt.Printf("sectionforge v%s\n", version)
		return
	}

	cmd, ok := lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}

// parseInterspersed parses fs from args, allowing flags after positional
// arguments, and returns the positional arguments in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func isMeta(arg string) bool {
	switch arg {
	case "-h", "--help", "-version", "--version":
		return true
	}
	return false
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	fmt.Fprintf(os.Stderr, "sectionforge - turn web page sections into React components\n\n")
	fmt.Fprintf(os.Stderr, "Usage: sectionforge [command] [options]  (command defaults to serve)\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY     Key for the default provider (placeholder output when unset)\n")
	fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     Key for the alternate provider\n")
	fmt.Fprintf(os.Stderr, "  API_SECRET         Shared secret required by the HTTP API (open when unset)\n")
	fmt.Fprintf(os.Stderr, "  PORT               HTTP listen port (default 4000)\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  sectionforge serve -port 8080\n")
	fmt.Fprintf(os.Stderr, "  sectionforge scrape https://example.com\n")
	fmt.Fprintf(os.Stderr, "  sectionforge pick https://example.com -copy\n")
	fmt.Fprintf(os.Stderr, "  sectionforge generate -url https://example.com -section hero -provider openai\n")
	fmt.Fprintf(os.Stderr, "  cat hero.html | sectionforge generate -file - -instructions \"dark theme\"\n")
}
