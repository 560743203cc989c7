package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/gin-gonic/gin"
)

// Decision is the outcome of an access check.
type Decision int

const (
	DenyAccess       Decision = iota // DenyAccess rejects the request.
	AllowOpen                        // AllowOpen: no server secret is configured.
	AllowCredential                  // AllowCredential: the caller brought a provider key.
	AllowSharedSecret                // AllowSharedSecret: the secret header matched.
)

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d != DenyAccess
}

func (d Decision) String() string {
	switch d {
	case AllowOpen:
		return "open"
	case AllowCredential:
		return "credential"
	case AllowSharedSecret:
		return "shared_secret"
	default:
		return "denied"
	}
}

// Decide applies the access rules in order: no secret configured, a caller
// credential in the body, the secret header. The first rule that matches
// admits the request.
//
// A caller credential admits the request on every guarded route, including
// routes that never use it.
func Decide(secret, credential, header string) Decision {
	if secret == "" {
		return AllowOpen
	}
	if credential != "" {
		return AllowCredential
	}
	if header != "" && subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1 {
		return AllowSharedSecret
	}
	return DenyAccess
}

// AccessControl guards routes with Decide. The JSON body is read to find the
// caller's apiKey and restored for the handler.
func AccessControl(secret, headerName string, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		credential, err := peekCredential(c.Request)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			respondError(c, http.StatusBadRequest, "failed to read request body")
			return
		}

		decision := Decide(secret, credential, c.GetHeader(headerName))
		if !decision.Allowed() {
			logger.Warnf("Unauthorized request to %s from %s", c.Request.URL.Path, c.ClientIP())
			respondErr(c, types.NewUnauthorizedError("Unauthorized"))
			return
		}

		c.Set(accessDecisionKey, decision)
		c.Next()
	}
}

// peekCredential returns the body's apiKey field and rewinds the body.
// Bodies that are not JSON objects carry no credential.
func peekCredential(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}

	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))

	var body struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", nil
	}
	return body.APIKey, nil
}
