// Package generate turns section markup into React component source.
package generate

import (
	"context"
	"strings"
	"time"

	"github.com/entrhq/sectionforge/pkg/llm"
	"github.com/entrhq/sectionforge/pkg/llm/tokenizer"
	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/types"
)

// Result is the outcome of one generation.
type Result struct {
	// Code is the component source.
	Code string

	// Degraded is set when Code is the placeholder component.
	Degraded bool

	// Provider and Model identify the backend that produced Code.
	Provider string
	Model    string

	// PromptTokens is the estimated size of the prompt sent. Zero when degraded.
	PromptTokens int
}

// Generator orchestrates prompt construction, provider selection and output
// cleanup. It holds no per-request state.
type Generator struct {
	gateway   *llm.Gateway
	tokenizer *tokenizer.Tokenizer
	logger    *logging.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTokenizer sets the tokenizer used to size prompts in logs. Without one
// sizes are estimated from character counts.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(g *Generator) {
		g.tokenizer = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Generator.
func New(gateway *llm.Gateway, opts ...Option) *Generator {
	g := &Generator{
		gateway: gateway,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate converts req.HTML into component source.
//
// When the default provider has no API key the placeholder component is
// returned without any network call. Every provider failure, including a
// missing key for the alternate provider, is reported as a generation error.
func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (*Result, error) {
	if req.HTML == "" {
		return nil, types.NewValidationError("HTML content is required")
	}

	call, err := g.gateway.Resolve(req.Provider, req.Credential)
	if err != nil {
		if types.KindOf(err) == types.KindValidation {
			return nil, err
		}
		g.logger.Errorf("Failed to resolve %s provider: %v", req.Provider, err)
		return nil, types.NewGenerationError(err)
	}

	if call.Degraded {
		return &Result{
			Code:     Placeholder(req.HTML),
			Degraded: true,
			Provider: call.Provider.Name(),
		}, nil
	}

	prompt := BuildPrompt(req.HTML, req.Instructions)
	tokens := g.tokenizer.CountTokens(prompt)
	g.logger.Infof("Generating component with %s (%s), prompt ~%d tokens", call.Provider.Name(), call.Provider.Model(), tokens)

	start := time.Now()
	text, err := call.Complete(ctx, prompt)
	if err != nil {
		g.logger.Errorf("%s generation failed after %s: %v", call.Provider.Name(), time.Since(start).Round(time.Millisecond), err)
		return nil, types.NewGenerationError(err)
	}

	g.logger.Debugf("%s responded in %s with %d bytes", call.Provider.Name(), time.Since(start).Round(time.Millisecond), len(text))

	return &Result{
		Code:         Sanitize(text),
		Provider:     call.Provider.Name(),
		Model:        call.Provider.Model(),
		PromptTokens: tokens,
	}, nil
}

// Refine regenerates from the original markup with req.Instructions wrapped
// as a refinement request. Edits made to earlier output are not carried over.
func (g *Generator) Refine(ctx context.Context, req types.GenerateRequest) (*Result, error) {
	if strings.TrimSpace(req.Instructions) == "" {
		return nil, types.NewValidationError("refinement instructions are required")
	}
	req.Instructions = RefineInstructions(req.Instructions)
	return g.Generate(ctx, req)
}
