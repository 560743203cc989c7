package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"
	"github.com/entrhq/sectionforge/pkg/generate"
)

const (
	codeLexer     = "tsx"
	codeFormatter = "terminal256"
	codeStyle     = "monokai"
)

// outputOptions control where a generated component goes.
type outputOptions struct {
	out   string
	plain bool
	copy  bool
}

// writeResult prints, saves and copies a generated component as requested.
func writeResult(w io.Writer, res *generate.Result, opts outputOptions) error {
	if res.Degraded {
		fmt.Fprintln(os.Stderr, tipsStyle.Render("No default provider key configured: showing the placeholder component."))
	}

	if opts.out != "" {
		if err := os.WriteFile(opts.out, []byte(res.Code+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.out, err)
		}
		fmt.Fprintln(os.Stderr, successStyle.Render("Wrote "+opts.out))
	} else if err := printCode(w, res.Code, opts.plain); err != nil {
		return err
	}

	if opts.copy {
		if err := clipboard.WriteAll(res.Code); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, successStyle.Render("Copied to clipboard"))
	}
	return nil
}

// printCode writes code with terminal syntax highlighting, or as-is when
// plain is set or highlighting fails.
func printCode(w io.Writer, code string, plain bool) error {
	if !plain {
		if err := quick.Highlight(w, code+"\n", codeLexer, codeFormatter, codeStyle); err == nil {
			return nil
		}
	}
	_, err := fmt.Fprintln(w, code)
	return err
}
