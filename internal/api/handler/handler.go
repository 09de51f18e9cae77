package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/api/response"
	"github.com/ucformula/sponsor-scout/internal/discovery"
	"github.com/ucformula/sponsor-scout/internal/filtering"
	"github.com/ucformula/sponsor-scout/internal/logger"
	"github.com/ucformula/sponsor-scout/internal/outreach"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
)

const (
	msgInternal   = "Internal server error"
	msgNoSponsors = "No sponsors found. Please run the scraper first."
)

type Discoverer interface {
	Discover(ctx context.Context) (*sponsor.Candidates, error)
}

type Generator interface {
	GenerateForSponsor(ctx context.Context, query string, p outreach.Params) (*outreach.Result, error)
	GenerateAll(ctx context.Context, p outreach.Params) (map[string]string, error)
}

type Options struct {
	Filters filtering.Config
	// ExposeErrors puts the error text into 500 responses.
	ExposeErrors bool
	// Lifetime cancels discovery runs started by requests. Nil means they always run to completion.
	Lifetime context.Context
}

type SponsorHandler struct {
	discoverer Discoverer
	generator  Generator
	store      store.Store
	opts       Options
	logger     *zap.Logger
}

func NewSponsorHandler(discoverer Discoverer, generator Generator, st store.Store, opts Options, log *zap.Logger) *SponsorHandler {
	return &SponsorHandler{
		discoverer: discoverer,
		generator:  generator,
		store:      st,
		opts:       opts,
		logger:     logger.WithFields(log),
	}
}

func (h *SponsorHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello, World!"})
}

// Scrape runs a discovery and returns the raw candidate list.
// A client that goes away does not stop the run.
func (h *SponsorHandler) Scrape(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	if h.opts.Lifetime != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(h.opts.Lifetime, cancel)
		defer stop()
	}

	list, err := h.discoverer.Discover(ctx)
	if err != nil {
		h.internalError(c, "discovery failed", err)
		return
	}
	c.JSON(http.StatusOK, list.Clone().Items)
}

type generateRequest struct {
	SponsorName string `json:"sponsor_name"`
	outreach.Params
}

func (h *SponsorHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()

	if req.SponsorName != "" {
		result, err := h.generator.GenerateForSponsor(ctx, req.SponsorName, req.Params)
		if errors.Is(err, outreach.ErrSponsorNotFound) {
			response.NotFound(c, fmt.Sprintf("No sponsor found matching '%s'", req.SponsorName))
			return
		}
		if err != nil {
			h.internalError(c, "template generation failed", err)
			return
		}

		response.Success(c, gin.H{
			"message":          fmt.Sprintf("Template generated for %s", result.SponsorName),
			"template_path":    result.Path,
			"template_content": result.Content,
		})
		return
	}

	paths, err := h.generator.GenerateAll(ctx, req.Params)
	if errors.Is(err, outreach.ErrNoSponsors) {
		response.NotFound(c, msgNoSponsors)
		return
	}
	if err != nil {
		h.internalError(c, "template generation failed", err)
		return
	}

	response.Success(c, gin.H{
		"message":        fmt.Sprintf("Generated %d templates", len(paths)),
		"template_paths": paths,
	})
}

func (h *SponsorHandler) Sponsors(c *gin.Context) {
	list, err := h.store.ListSponsors(c.Request.Context())
	if err != nil {
		h.internalError(c, "listing sponsors failed", err)
		return
	}

	h.respondCandidates(c, list, filtering.Configure(&h.opts.Filters, filtering.Projection()))
}

func (h *SponsorHandler) AnalyzedSponsors(c *gin.Context) {
	list, err := h.store.ListAnalyzed(c.Request.Context())
	if err != nil {
		h.internalError(c, "listing analyzed sponsors failed", err)
		return
	}

	h.respondCandidates(c, list, filtering.Configure(&h.opts.Filters, filtering.Analyzed()))
}

// Analyze scores every stored sponsor and returns the analyzed projection.
func (h *SponsorHandler) Analyze(c *gin.Context) {
	list, err := discovery.Analyze(c.Request.Context(), h.store, h.logger)
	if err != nil {
		h.internalError(c, "analysis failed", err)
		return
	}

	h.respondCandidates(c, list, filtering.Configure(&h.opts.Filters, filtering.Analyzed()))
}

func (h *SponsorHandler) Templates(c *gin.Context) {
	templates, err := h.store.ListTemplates(c.Request.Context())
	if err != nil {
		h.internalError(c, "listing templates failed", err)
		return
	}

	visible := make([]*sponsor.Template, 0, len(templates))
	for _, tpl := range templates {
		if sponsor.IsCompanyName(tpl.SponsorName) {
			visible = append(visible, tpl)
		}
	}

	response.Success(c, gin.H{"templates": visible})
}

func (h *SponsorHandler) Template(c *gin.Context) {
	name := c.Param("name")
	notFound := fmt.Sprintf("Template not found for %s", name)

	if !sponsor.IsCompanyName(name) {
		response.NotFound(c, notFound)
		return
	}

	tpl, err := h.store.GetTemplate(c.Request.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(c, notFound)
		return
	}
	if err != nil {
		h.internalError(c, "loading template failed", err)
		return
	}

	response.Success(c, gin.H{"template": tpl})
}

// Filters reports the filters applied to the sponsor projections.
func (h *SponsorHandler) Filters(c *gin.Context) {
	steps := filtering.Configure(&h.opts.Filters, filtering.Analyzed())
	for _, step := range steps {
		if err := step.Validate(&h.opts.Filters); err != nil {
			step.Disable(err.Error())
		}
	}

	response.Success(c, gin.H{"filters": filtering.Describe(steps)})
}

func (h *SponsorHandler) respondCandidates(c *gin.Context, list *sponsor.Candidates, steps []filtering.Filter) {
	filtered, err := filtering.Run(c.Request.Context(), &h.opts.Filters, filtering.Deps{Logger: h.logger}, steps, list.Clone())
	if err != nil {
		h.internalError(c, "filtering sponsors failed", err)
		return
	}

	response.Success(c, gin.H{"sponsors": filtered.Items})
}

func (h *SponsorHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg,
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)

	text := msgInternal
	if h.opts.ExposeErrors {
		text = fmt.Sprintf("Error: %v", err)
	}
	response.Fail(c, http.StatusInternalServerError, text)
}
