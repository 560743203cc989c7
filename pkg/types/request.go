package types

import (
	"fmt"
	"strings"
)

// ProviderKind selects which model backend serves a generation request.
type ProviderKind string

const (
	ProviderDefault   ProviderKind = "default"   // ProviderDefault is the always-available backend; degrades to a placeholder without a key.
	ProviderAlternate ProviderKind = "alternate" // ProviderAlternate is opt-in and requires a resolvable key.
)

// ParseProviderKind maps a wire value to a ProviderKind. The empty string
// selects the default provider. The vendor names "gemini" and
// "openai" are accepted as aliases.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "gemini":
		return ProviderDefault, nil
	case "alternate", "openai":
		return ProviderAlternate, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unknown provider %q", s))
	}
}

// String implements fmt.Stringer.
func (k ProviderKind) String() string {
	return string(k)
}

// GenerateRequest is the input to one generation call. A refinement is a new
// GenerateRequest carrying the original markup, never a patch of prior output.
type GenerateRequest struct {
	// HTML is the markup of the section being converted.
	HTML string

	// Instructions is optional free text passed to the model verbatim.
	Instructions string

	// Provider selects the model backend.
	Provider ProviderKind

	// Credential optionally overrides the server's configured key for Provider.
	Credential string
}
