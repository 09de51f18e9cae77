// Package discovery finds sponsor candidates by running a fixed set of search
// queries and optionally enriching every new candidate with contact details.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ucformula/sponsor-scout/internal/logger"
	"github.com/ucformula/sponsor-scout/internal/serper"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
	"github.com/ucformula/sponsor-scout/internal/utils"
)

// DefaultQueries are issued in order on every run.
var DefaultQueries = []string{
	"companies that sponsor formula student teams",
	"automotive companies that sponsor racing teams",
	"electric vehicle companies that sponsor racing",
	"engineering companies that sponsor student competitions",
	"companies that sponsor university racing teams",
	"automotive parts manufacturers that sponsor racing",
	"battery companies that sponsor electric racing",
	"companies that sponsor sustainable racing initiatives",
	"companies that sponsor formula sae electric teams",
	"companies that sponsor student engineering projects",
}

const DefaultDelay = time.Second

type Searcher interface {
	Search(ctx context.Context, query string) *serper.SearchResult
}

type ContactExtractor interface {
	Extract(ctx context.Context, url string) sponsor.ContactInfo
}

type Config struct {
	Queries []string `mapstructure:"queries"`
	// Extract enables website scraping for contact details.
	Extract bool `mapstructure:"extract"`
	// Delay is slept between two queries.
	Delay time.Duration `mapstructure:"delay"`
	// Workers bounds concurrent page fetches within one query. 1 keeps fetching sequential.
	Workers int `mapstructure:"workers"`
}

type Deps struct {
	Searcher  Searcher
	Extractor ContactExtractor
	Sink      store.SponsorSink
	Logger    *zap.Logger
}

type Pipeline struct {
	cfg       Config
	searcher  Searcher
	extractor ContactExtractor
	sink      store.SponsorSink
	logger    *zap.Logger
	newRunID  func() string
}

func New(cfg Config, deps Deps) *Pipeline {
	if len(cfg.Queries) == 0 {
		cfg.Queries = DefaultQueries
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Pipeline{
		cfg:       cfg,
		searcher:  deps.Searcher,
		extractor: deps.Extractor,
		sink:      deps.Sink,
		logger:    logger.WithFields(deps.Logger),
		newRunID:  uuid.NewString,
	}
}

// Discover runs every query, deduplicates candidates by name (first occurrence
// wins), enriches new candidates when extraction is enabled and persists the result.
// A query that fails contributes no candidates. A cancelled run still persists
// what it collected before returning the context error.
func (p *Pipeline) Discover(ctx context.Context) (*sponsor.Candidates, error) {
	if p.searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	runID := p.newRunID()
	log := p.logger.With(zap.String("run_id", runID))

	all := &sponsor.Candidates{Items: []*sponsor.Candidate{}}
	runErr := p.search(ctx, runID, all, log)
	if runErr != nil {
		log.Warn("discovery interrupted", zap.Error(runErr), zap.Int("candidates", all.Len()))
	}

	if p.sink != nil {
		if err := p.sink.UpsertSponsors(context.WithoutCancel(ctx), all); err != nil {
			return all, errors.Join(runErr, fmt.Errorf("saving sponsors: %w", err))
		}
	}
	if runErr != nil {
		return all, runErr
	}

	log.Info("discovery finished", zap.Int("candidates", all.Len()))
	return all, nil
}

// search appends the candidates of every query to all. It stops at the first
// cancellation, keeping candidates collected so far.
func (p *Pipeline) search(ctx context.Context, runID string, all *sponsor.Candidates, log *zap.Logger) error {
	seen := make(map[string]struct{})

	for i, query := range p.cfg.Queries {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Info("searching", zap.String("query", query))

		fresh := p.collect(p.searcher.Search(ctx, query), query, runID, seen, log)

		var err error
		if p.cfg.Extract && p.extractor != nil {
			err = p.enrich(ctx, fresh)
		}
		all.Items = append(all.Items, fresh...)
		if err != nil {
			return err
		}

		log.Info("query done",
			zap.String("query", query),
			zap.Int("new_candidates", len(fresh)),
			zap.Int("total_candidates", all.Len()),
		)

		if i < len(p.cfg.Queries)-1 {
			if err := utils.WaitFor(ctx, p.cfg.Delay); err != nil {
				return err
			}
		}
	}

	return nil
}

// collect turns search results into candidates whose names were not seen yet.
func (p *Pipeline) collect(result *serper.SearchResult, query, runID string, seen map[string]struct{}, log *zap.Logger) []*sponsor.Candidate {
	if result == nil {
		log.Warn("skipping query", zap.String("query", query), zap.String("reason", "search failed"))
		return nil
	}
	if !result.HasOrganic() {
		log.Warn("skipping query", zap.String("query", query), zap.String("reason", "no organic results in response"))
		return nil
	}

	fresh := make([]*sponsor.Candidate, 0, result.Len())
	for _, item := range result.Organic {
		candidate := &sponsor.Candidate{
			Name:        sponsor.NameFromTitle(item.Title),
			Website:     item.Link,
			Description: item.Snippet,
			SearchQuery: query,
			RunID:       runID,
		}

		if _, dup := seen[candidate.Name]; dup {
			log.Debug("dropping duplicate candidate", zap.String("sponsor", candidate.Name), zap.String("query", query))
			continue
		}
		seen[candidate.Name] = struct{}{}
		fresh = append(fresh, candidate)
	}

	return fresh
}

// enrich fetches contact details for candidates with a website using at most
// Workers concurrent fetches. Each goroutine owns one candidate.
func (p *Pipeline) enrich(ctx context.Context, candidates []*sponsor.Candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, candidate := range candidates {
		if candidate.Website == "" {
			continue
		}

		g.Go(func() error {
			p.extractOne(gctx, candidate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pipeline) extractOne(ctx context.Context, candidate *sponsor.Candidate) {
	log := logger.WithSponsor(p.logger, candidate.Name, candidate.Website)

	defer func() {
		if r := recover(); r != nil {
			log.Error("contact extraction panicked", zap.Any("panic", r))
		}
	}()

	info := p.extractor.Extract(ctx, candidate.Website)
	if info.IsEmpty() {
		log.Debug("no contact info extracted")
		return
	}

	candidate.Merge(info)
}
