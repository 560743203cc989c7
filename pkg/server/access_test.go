package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		credential string
		header     string
		want       Decision
	}{
		{name: "no secret", want: AllowOpen},
		{name: "no secret ignores header", header: "anything", want: AllowOpen},
		{name: "credential", secret: "s", credential: "k", want: AllowCredential},
		{name: "credential beats wrong header", secret: "s", credential: "k", header: "wrong", want: AllowCredential},
		{name: "header match", secret: "s", header: "s", want: AllowSharedSecret},
		{name: "header mismatch", secret: "s", header: "S", want: DenyAccess},
		{name: "header prefix", secret: "secret", header: "secre", want: DenyAccess},
		{name: "nothing", secret: "s", want: DenyAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.secret, tt.credential, tt.header)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != DenyAccess, got.Allowed())
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "open", AllowOpen.String())
	assert.Equal(t, "credential", AllowCredential.String())
	assert.Equal(t, "shared_secret", AllowSharedSecret.String())
	assert.Equal(t, "denied", DenyAccess.String())
}

func newGuardedEngine(secret string, limit int64) (*gin.Engine, *string) {
	var seenBody string
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.POST("/guarded", AccessControl(secret, "x-api-secret", logging.Nop()), func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		seenBody = string(data)
		c.Status(http.StatusNoContent)
	})
	return r, &seenBody
}

func TestAccessControl(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		body   string
		header string
		want   int
	}{
		{name: "open", body: `{"url":"x"}`, want: http.StatusNoContent},
		{name: "api key in body", secret: "s", body: `{"html":"<p/>","apiKey":"sk"}`, want: http.StatusNoContent},
		{name: "empty api key", secret: "s", body: `{"apiKey":""}`, want: http.StatusUnauthorized},
		{name: "secret header", secret: "s", body: `{}`, header: "s", want: http.StatusNoContent},
		{name: "wrong header", secret: "s", body: `{}`, header: "nope", want: http.StatusUnauthorized},
		{name: "non json body", secret: "s", body: `not json`, want: http.StatusUnauthorized},
		{name: "non json body with header", secret: "s", body: `not json`, header: "s", want: http.StatusNoContent},
		{name: "too large", secret: "s", body: `{"apiKey":"` + strings.Repeat("k", 200) + `"}`, want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seen := newGuardedEngine(tt.secret, 128)

			req := httptest.NewRequest(http.MethodPost, "/guarded", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("X-Api-Secret", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, tt.body, *seen, "body is restored for the handler")
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestAccessControl_UnauthorizedBody(t *testing.T) {
	r, _ := newGuardedEngine("s", 1024)

	req := httptest.NewRequest(http.MethodPost, "/guarded", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestAccessControl_RecordsUnauthorizedKind(t *testing.T) {
	var kind types.ErrorKind
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if last := c.Errors.Last(); last != nil {
			kind = types.KindOf(last.Err)
		}
	})
	r.POST("/guarded", AccessControl("s", "x-api-secret", logging.Nop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/guarded", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, types.KindUnauthorized, kind)
}
