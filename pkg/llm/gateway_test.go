package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name     string
	response string
	err      error
	calls    int
	lastKey  string
	lastText string
}

func (p *stubProvider) Complete(_ context.Context, prompt, apiKey string) (string, error) {
	p.calls++
	p.lastKey = apiKey
	p.lastText = prompt
	return p.response, p.err
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Model() string { return "stub-model" }

func newGateway(keys Credentials) (*Gateway, *stubProvider, *stubProvider) {
	def := &stubProvider{name: "Gemini", response: "default"}
	alt := &stubProvider{name: "OpenAI", response: "alternate"}
	return NewGateway(def, alt, keys), def, alt
}

func TestResolve_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		kind       types.ProviderKind
		keys       Credentials
		caller     string
		wantKey    string
		wantDegr   bool
		wantName   string
		wantErrKnd types.ErrorKind
	}{
		{name: "default caller wins", kind: types.ProviderDefault, keys: Credentials{Default: "server"}, caller: "caller", wantKey: "caller", wantName: "Gemini"},
		{name: "default server fallback", kind: types.ProviderDefault, keys: Credentials{Default: "server"}, wantKey: "server", wantName: "Gemini"},
		{name: "default blank caller is still the caller's", kind: types.ProviderDefault, keys: Credentials{Default: "server"}, caller: "  ", wantKey: "  ", wantName: "Gemini"},
		{name: "alternate blank caller is still the caller's", kind: types.ProviderAlternate, keys: Credentials{Alternate: "server"}, caller: " ", wantKey: " ", wantName: "OpenAI"},
		{name: "default degraded", kind: types.ProviderDefault, wantDegr: true, wantName: "Gemini"},
		{name: "default ignores alternate key", kind: types.ProviderDefault, keys: Credentials{Alternate: "alt"}, wantDegr: true, wantName: "Gemini"},
		{name: "empty kind is default", kind: "", keys: Credentials{Default: "server"}, wantKey: "server", wantName: "Gemini"},
		{name: "alternate caller wins", kind: types.ProviderAlternate, keys: Credentials{Alternate: "server"}, caller: "caller", wantKey: "caller", wantName: "OpenAI"},
		{name: "alternate server fallback", kind: types.ProviderAlternate, keys: Credentials{Alternate: "server"}, wantKey: "server", wantName: "OpenAI"},
		{name: "alternate missing", kind: types.ProviderAlternate, keys: Credentials{Default: "gem"}, wantErrKnd: types.KindMissingCredential},
		{name: "unknown kind", kind: "claude", wantErrKnd: types.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _, _ := newGateway(tt.keys)

			call, err := gw.Resolve(tt.kind, tt.caller)
			if tt.wantErrKnd != "" {
				require.Error(t, err)
				assert.Nil(t, call)
				assert.Equal(t, tt.wantErrKnd, types.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, call.Credential)
			assert.Equal(t, tt.wantDegr, call.Degraded)
			assert.Equal(t, tt.wantName, call.Provider.Name())
		})
	}
}

func TestResolve_MissingCredentialMessage(t *testing.T) {
	gw, _, _ := newGateway(Credentials{})

	_, err := gw.Resolve(types.ProviderAlternate, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API key is missing")
}

func TestCall_Complete(t *testing.T) {
	gw, def, alt := newGateway(Credentials{Default: "gem-key"})

	call, err := gw.Resolve(types.ProviderDefault, "")
	require.NoError(t, err)

	text, err := call.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "default", text)
	assert.Equal(t, 1, def.calls)
	assert.Equal(t, "gem-key", def.lastKey)
	assert.Equal(t, "prompt", def.lastText)
	assert.Equal(t, 0, alt.calls)
}

func TestCall_CompleteDegraded(t *testing.T) {
	gw, def, _ := newGateway(Credentials{})

	call, err := gw.Resolve(types.ProviderDefault, "")
	require.NoError(t, err)
	require.True(t, call.Degraded)

	_, err = call.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrDegraded)
	assert.Equal(t, 0, def.calls)
}

func TestCall_CompleteProviderError(t *testing.T) {
	cause := errors.New("quota exceeded")
	def := &stubProvider{name: "Gemini", err: cause}
	gw := NewGateway(def, &stubProvider{name: "OpenAI"}, Credentials{Default: "k"})

	call, err := gw.Resolve(types.ProviderDefault, "")
	require.NoError(t, err)

	_, err = call.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, def.calls, "no retry")
}

func TestResolve_NoProviderConfigured(t *testing.T) {
	gw := NewGateway(&stubProvider{name: "Gemini"}, nil, Credentials{Alternate: "k"})

	_, err := gw.Resolve(types.ProviderAlternate, "")
	assert.Error(t, err)
}
