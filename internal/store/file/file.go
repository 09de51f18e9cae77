// Package file keeps the collections as JSON documents in a data directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
)

const (
	SponsorsFile  = "potential_sponsors.json"
	AnalyzedFile  = "analyzed_sponsors.json"
	TemplatesFile = "templates.json"
)

type Store struct {
	mu     sync.Mutex
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return &Store{dir: dir, logger: logger, now: time.Now}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) UpsertSponsors(_ context.Context, list *sponsor.Candidates) error {
	return s.upsertCandidates(SponsorsFile, list, false)
}

func (s *Store) ListSponsors(_ context.Context) (*sponsor.Candidates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sponsor.FromFile(s.path(SponsorsFile))
}

func (s *Store) UpsertAnalyzed(_ context.Context, list *sponsor.Candidates) error {
	return s.upsertCandidates(AnalyzedFile, list, true)
}

func (s *Store) ListAnalyzed(_ context.Context) (*sponsor.Candidates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := sponsor.FromFile(s.path(AnalyzedFile))
	if err != nil {
		return nil, err
	}
	list.SortByScore()
	return list, nil
}

func (s *Store) upsertCandidates(name string, list *sponsor.Candidates, sorted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := sponsor.FromFile(s.path(name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	merged := store.MergeCandidates(existing, list)
	if sorted {
		merged.SortByScore()
	}

	if err := merged.DumpToFile(s.path(name)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	s.logger.Debug("saved candidates", zap.String("file", s.path(name)), zap.Int("count", merged.Len()))
	return nil
}

func (s *Store) UpsertTemplate(_ context.Context, tpl *sponsor.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.readTemplates()
	if err != nil {
		return err
	}

	record := *tpl
	record.UpdatedAt = s.now().UTC()

	replaced := false
	for i, existing := range templates {
		if existing.SponsorName == record.SponsorName {
			templates[i] = &record
			replaced = true
			break
		}
	}
	if !replaced {
		templates = append(templates, &record)
	}

	return s.writeTemplates(templates)
}

func (s *Store) GetTemplate(_ context.Context, sponsorName string) (*sponsor.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.readTemplates()
	if err != nil {
		return nil, err
	}

	for _, tpl := range templates {
		if tpl.SponsorName == sponsorName {
			return tpl, nil
		}
	}

	return nil, fmt.Errorf("template for %q: %w", sponsorName, store.ErrNotFound)
}

func (s *Store) ListTemplates(_ context.Context) ([]*sponsor.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readTemplates()
}

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) readTemplates() ([]*sponsor.Template, error) {
	data, err := os.ReadFile(s.path(TemplatesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []*sponsor.Template{}, nil
		}
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var templates []*sponsor.Template
	if len(data) > 0 {
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("decode templates: %w", err)
		}
	}
	if templates == nil {
		templates = []*sponsor.Template{}
	}
	return templates, nil
}

func (s *Store) writeTemplates(templates []*sponsor.Template) error {
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}

	// Write to a temp file first so a crash never leaves a truncated collection.
	tmp := s.path(TemplatesFile + ".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write templates: %w", err)
	}
	return os.Rename(tmp, s.path(TemplatesFile))
}
