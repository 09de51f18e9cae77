// Package outreach renders sponsorship request letters and keeps track of the generated templates.
package outreach

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/logger"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
)

const DefaultOutputDir = "email_templates"

var (
	ErrSponsorNotFound = errors.New("sponsor not found")
	ErrNoSponsors      = errors.New("no sponsors found")
)

// AspectDrafter suggests the company trait a letter should refer to.
type AspectDrafter interface {
	DraftAspect(ctx context.Context, c *sponsor.Candidate) (string, error)
}

type Config struct {
	OutputDir string `mapstructure:"output-dir"`
	// Defaults apply to every request before placeholders do.
	Defaults Params `mapstructure:"defaults"`
}

type Service struct {
	store   store.Store
	cfg     Config
	drafter AspectDrafter
	logger  *zap.Logger
}

// Result describes one generated letter.
type Result struct {
	SponsorName string
	Path        string
	Content     string
}

// NewService wires the renderer to a store. drafter may be nil.
func NewService(st store.Store, cfg Config, drafter AspectDrafter, log *zap.Logger) *Service {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	return &Service{
		store:   st,
		cfg:     cfg,
		drafter: drafter,
		logger:  logger.WithFields(log),
	}
}

// GenerateForSponsor renders the letter for the first stored sponsor whose name
// contains query, ignoring case.
func (s *Service) GenerateForSponsor(ctx context.Context, query string, p Params) (*Result, error) {
	list, err := s.store.ListSponsors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sponsors: %w", err)
	}

	candidate := list.Lookup(query)
	if candidate == nil {
		return nil, fmt.Errorf("%q: %w", query, ErrSponsorNotFound)
	}

	return s.Generate(ctx, candidate, p)
}

// GenerateAll renders a letter for every stored company and returns the file
// path per sponsor name.
func (s *Service) GenerateAll(ctx context.Context, p Params) (map[string]string, error) {
	list, err := s.store.ListSponsors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sponsors: %w", err)
	}
	if list.Len() == 0 {
		return nil, ErrNoSponsors
	}

	paths := make(map[string]string, list.Len())
	for _, candidate := range list.Items {
		if !candidate.IsCompany() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return paths, err
		}

		result, err := s.Generate(ctx, candidate, p)
		if err != nil {
			return paths, err
		}
		paths[result.SponsorName] = result.Path
	}

	s.logger.Info("generated templates", zap.Int("count", len(paths)), zap.String("dir", s.cfg.OutputDir))
	return paths, nil
}

// Generate renders, writes and records the letter for candidate.
func (s *Service) Generate(ctx context.Context, candidate *sponsor.Candidate, p Params) (*Result, error) {
	log := logger.WithSponsor(s.logger, candidate.Name, candidate.Website)

	p = p.Merge(s.cfg.Defaults)
	if p.SpecificAspect == "" && s.drafter != nil {
		aspect, err := s.drafter.DraftAspect(ctx, candidate)
		switch {
		case err != nil:
			log.Warn("drafting specific aspect failed", zap.Error(err))
		case aspect != "":
			p.SpecificAspect = aspect
		}
	}

	content := Render(candidate, p)

	path, err := WriteFile(s.cfg.OutputDir, candidate.Name, content)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertTemplate(ctx, p.Record(candidate.Name, path, content)); err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}

	log.Debug("template generated", zap.String("path", path))
	return &Result{SponsorName: candidate.Name, Path: path, Content: content}, nil
}
