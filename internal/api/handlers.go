package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/pipeline"
)

// maxRefineIterations caps client-requested refinement loops
const maxRefineIterations = 5

type checkRequest struct {
	Topic       string     `json:"topic"`
	Content     string     `json:"content" binding:"required"`
	PublishedAt *time.Time `json:"published_at"`
}

func (r checkRequest) input() pipeline.Input {
	return pipeline.Input{Topic: r.Topic, Content: r.Content, PublishedAt: r.PublishedAt}
}

type improveRequest struct {
	checkRequest
	// Report from a previous check; when absent the content is checked first
	Report *model.QualityReport `json:"report"`
}

type improveResponse struct {
	Report      model.QualityReport     `json:"report"`
	Improvement model.ImprovementResult `json:"improvement"`
}

type refineRequest struct {
	checkRequest
	MaxIterations int `json:"max_iterations" binding:"gte=0"`
}

func (s *Server) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) check(c *gin.Context) {
	var req checkRequest
	if !s.bind(c, &req) {
		return
	}

	report := s.checker.ComprehensiveCheck(c.Request.Context(), req.input())
	c.JSON(http.StatusOK, report)
}

func (s *Server) improve(c *gin.Context) {
	var req improveRequest
	if !s.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	in := req.input()

	var report model.QualityReport
	if req.Report != nil {
		if req.Report.Breakdown.Weights == (model.Weights{}) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "report has no score breakdown"})
			return
		}
		report = *req.Report
	} else {
		report = s.checker.ComprehensiveCheck(ctx, in)
	}

	c.JSON(http.StatusOK, improveResponse{
		Report:      report,
		Improvement: s.checker.Improve(ctx, in, report),
	})
}

func (s *Server) refine(c *gin.Context) {
	var req refineRequest
	if !s.bind(c, &req) {
		return
	}
	if req.MaxIterations > maxRefineIterations {
		req.MaxIterations = maxRefineIterations
	}

	result := s.checker.Refine(c.Request.Context(), req.input(), req.MaxIterations)
	c.JSON(http.StatusOK, result)
}
