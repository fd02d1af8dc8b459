package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/contentqc/internal/cache"
	"github.com/ppiankov/contentqc/internal/llm"
	"github.com/ppiankov/contentqc/internal/logging"
	"github.com/ppiankov/contentqc/internal/model"
	"github.com/ppiankov/contentqc/internal/search"
	"github.com/ppiankov/contentqc/internal/validate"
	"github.com/ppiankov/contentqc/internal/worker"
)

// Resources holds configured collaborators plus anything that must be
// released when the caller is done with them.
type Resources struct {
	Collaborators
	closers []io.Closer
}

// Close releases cache connections
func (r *Resources) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewResources builds collaborators from configuration. A collaborator that
// cannot be initialized is logged and left nil so checks degrade instead of
// failing.
func NewResources(cfg model.Config, logger *slog.Logger) *Resources {
	base := logging.OrDiscard(logger)
	logger = base.With("component", "setup")
	r := &Resources{}

	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			logger.Warn("generation provider disabled", "provider", cfg.LLM.Provider, "error", err)
		} else {
			r.Generator = p
		}
	}

	if cfg.Grounded.Provider != "" {
		p, err := llm.NewGroundedProvider(llm.GroundedConfigFromModel(cfg.Grounded, cfg.HTTP))
		if err != nil {
			logger.Warn("grounded provider disabled", "provider", cfg.Grounded.Provider, "error", err)
		} else {
			r.Grounded = p
		}
	}

	if cfg.Search.Provider != "" {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			logger.Warn("search cache disabled", "backend", cfg.Cache.Backend, "error", err)
			c = nil
		}
		if closer, ok := c.(io.Closer); ok {
			r.closers = append(r.closers, closer)
		}

		limiter := worker.NewLimiter(cfg.Search.RequestsPerSecond, 0)
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		s, err := search.New(cfg.Search, cfg.HTTP, limiter, c, ttl)
		if err != nil {
			logger.Warn("search disabled", "provider", cfg.Search.Provider, "error", err)
		} else {
			r.Searcher = s
		}
	}

	if cfg.Sources.Validate {
		limiter := worker.NewLimiter(2, 0)
		r.Validator = validate.NewValidator(cfg.Sources, cfg.HTTP, cfg.Authority, limiter, base)
	}

	return r
}
