// Package llm routes generation prompts to a model backend.
//
// A Gateway holds exactly two providers: the default backend, which may run
// in degraded mode when no API key is available, and the alternate backend,
// which refuses to run without one. Resolve picks the provider and the key
// for a request; the resulting Call performs a single round trip.
//
// Example usage:
//
//	gw := llm.NewGateway(
//	    openai.NewProvider(openai.WithName("Gemini"), openai.WithBaseURL(openai.GeminiBaseURL), openai.WithModel(openai.GeminiModel)),
//	    openai.NewProvider(openai.WithName("OpenAI")),
//	    llm.Credentials{Default: os.Getenv("GEMINI_API_KEY")},
//	)
//
//	call, err := gw.Resolve(types.ProviderDefault, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if call.Degraded {
//	    // no key anywhere: serve a placeholder instead
//	}
//	text, err := call.Complete(ctx, prompt)
package llm

import "context"

// Provider is one model backend.
//
// Complete sends prompt as a single user message and returns the text of the
// first choice. apiKey is supplied per call so one Provider can serve callers
// with different credentials. Implementations must not retry or stream.
type Provider interface {
	Complete(ctx context.Context, prompt, apiKey string) (string, error)

	// Name identifies the backend in logs and error messages.
	Name() string

	// Model returns the model the backend calls.
	Model() string
}
