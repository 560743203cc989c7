package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/types"
)

// ErrDegraded is returned by Call.Complete when the call resolved to degraded
// mode. Callers are expected to check Call.Degraded first.
var ErrDegraded = errors.New("provider call is degraded: no API key resolved")

// Credentials are the server-side API keys, one per provider kind.
type Credentials struct {
	Default   string
	Alternate string
}

// Gateway selects a provider and credential for each generation.
type Gateway struct {
	defaultProvider   Provider
	alternateProvider Provider
	keys              Credentials
	logger            *logging.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l *logging.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a Gateway over the default and alternate providers.
func NewGateway(defaultProvider, alternateProvider Provider, keys Credentials, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		defaultProvider:   defaultProvider,
		alternateProvider: alternateProvider,
		keys:              keys,
		logger:            logging.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Call is a resolved provider invocation.
type Call struct {
	Kind     types.ProviderKind
	Provider Provider

	// Credential is the key that will be sent. Empty only when Degraded.
	Credential string

	// Degraded is set when the default provider has no key from any source.
	Degraded bool
}

// Resolve picks the provider for kind and the key to call it with: the
// caller's credential when non-empty, otherwise the server key for that
// provider. The caller's credential is used verbatim, the same test the
// access check applies. Without either, the default provider resolves to a
// degraded Call and the alternate provider fails with a missing-credential
// error.
func (g *Gateway) Resolve(kind types.ProviderKind, callerCredential string) (*Call, error) {
	var (
		provider  Provider
		serverKey string
	)
	switch kind {
	case types.ProviderDefault, "":
		kind = types.ProviderDefault
		provider, serverKey = g.defaultProvider, g.keys.Default
	case types.ProviderAlternate:
		provider, serverKey = g.alternateProvider, g.keys.Alternate
	default:
		return nil, types.NewValidationError(fmt.Sprintf("unknown provider %q", kind))
	}

	if provider == nil {
		return nil, fmt.Errorf("no %s provider configured", kind)
	}

	credential := callerCredential
	if credential == "" {
		credential = serverKey
	}

	if credential == "" {
		if kind == types.ProviderAlternate {
			return nil, types.NewMissingCredentialError(providerLabel(provider))
		}
		g.logger.Warnf("No %s API key available, serving placeholder", providerLabel(provider))
		return &Call{Kind: kind, Provider: provider, Degraded: true}, nil
	}

	return &Call{Kind: kind, Provider: provider, Credential: credential}, nil
}

// Complete performs the single provider round trip.
func (c *Call) Complete(ctx context.Context, prompt string) (string, error) {
	if c.Degraded {
		return "", ErrDegraded
	}
	return c.Provider.Complete(ctx, prompt, c.Credential)
}

func providerLabel(p Provider) string {
	if name := p.Name(); name != "" {
		return name
	}
	return "provider"
}
