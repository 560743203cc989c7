package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/entrhq/sectionforge/pkg/generate"
	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/gin-gonic/gin"
)

// ScrapeRequest is the body of POST /scrape.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeResponse is the body of a successful scrape.
type ScrapeResponse struct {
	Sections []types.Section `json:"sections"`
}

// GenerateRequest is the body of POST /generate and POST /refine.
type GenerateRequest struct {
	HTML         string `json:"html"`
	Instructions string `json:"instructions,omitempty"`
	Provider     string `json:"provider,omitempty"`
	APIKey       string `json:"apiKey,omitempty"`
}

// GenerateResponse is the body of a successful generation.
type GenerateResponse struct {
	Code string `json:"code"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleScrape(c *gin.Context) {
	var req ScrapeRequest
	if err := bindJSON(c, &req); err != nil {
		respondErr(c, err)
		return
	}

	s.logger.Infof("Scrape request received for URL: %s", req.URL)

	found, err := s.scraper.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		if types.KindOf(err) != types.KindValidation {
			s.metrics.ObserveScrape(OutcomeError, 0)
			s.logger.Errorf("Scrape of %s failed: %v", req.URL, err)
		}
		respondErr(c, err)
		return
	}

	s.metrics.ObserveScrape(OutcomeOK, len(found))
	c.JSON(http.StatusOK, ScrapeResponse{Sections: found})
}

func (s *Server) handleGenerate(c *gin.Context) {
	s.serveGeneration(c, s.generator.Generate)
}

func (s *Server) handleRefine(c *gin.Context) {
	s.serveGeneration(c, s.generator.Refine)
}

type generateFunc func(ctx context.Context, req types.GenerateRequest) (*generate.Result, error)

func (s *Server) serveGeneration(c *gin.Context, run generateFunc) {
	var body GenerateRequest
	if err := bindJSON(c, &body); err != nil {
		respondErr(c, err)
		return
	}

	kind, err := types.ParseProviderKind(body.Provider)
	if err != nil {
		respondErr(c, err)
		return
	}

	s.logger.Infof("Generation request received (%s, %d bytes of HTML)", kind, len(body.HTML))

	start := time.Now()
	res, err := run(c.Request.Context(), types.GenerateRequest{
		HTML:         body.HTML,
		Instructions: body.Instructions,
		Provider:     kind,
		Credential:   body.APIKey,
	})
	if err != nil {
		if types.KindOf(err) != types.KindValidation {
			s.metrics.ObserveGeneration(kind.String(), OutcomeError, time.Since(start))
			s.logger.Errorf("Generation failed: %v", err)
		}
		respondErr(c, err)
		return
	}

	outcome := OutcomeOK
	if res.Degraded {
		outcome = OutcomeDegraded
	}
	s.metrics.ObserveGeneration(kind.String(), outcome, time.Since(start))

	c.JSON(http.StatusOK, GenerateResponse{Code: res.Code})
}

// bindJSON decodes the request body. Decoding failures are validation
// errors; an oversized body keeps its own error.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return types.NewValidationError("invalid request body")
	}
	return nil
}
