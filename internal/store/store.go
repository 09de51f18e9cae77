// Package store defines the persistence sink for sponsors, analyzed sponsors and templates.
// Every write is an upsert keyed by sponsor name.
package store

import (
	"context"
	"errors"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const (
	DriverFile     = "file"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

var ErrNotFound = errors.New("not found")

// SponsorSink receives the output of a discovery run.
type SponsorSink interface {
	UpsertSponsors(ctx context.Context, list *sponsor.Candidates) error
}

type Store interface {
	SponsorSink

	ListSponsors(ctx context.Context) (*sponsor.Candidates, error)
	UpsertAnalyzed(ctx context.Context, list *sponsor.Candidates) error
	// ListAnalyzed returns analyzed sponsors ordered by fit score, best first.
	ListAnalyzed(ctx context.Context) (*sponsor.Candidates, error)

	UpsertTemplate(ctx context.Context, tpl *sponsor.Template) error
	GetTemplate(ctx context.Context, sponsorName string) (*sponsor.Template, error)
	ListTemplates(ctx context.Context) ([]*sponsor.Template, error)

	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Driver string `mapstructure:"driver"`
	// Dir is the data directory of the file driver.
	Dir      string `mapstructure:"dir"`
	MongoURI string `mapstructure:"mongo-uri"`
	Database string `mapstructure:"database"`
	// PostgresDSN, e.g. "host=localhost user=postgres dbname=scout port=5432 sslmode=disable".
	PostgresDSN string `mapstructure:"postgres-dsn"`
}

// MergeCandidates upserts incoming into existing by name: known names are
// replaced in place, new names are appended. existing is modified.
func MergeCandidates(existing, incoming *sponsor.Candidates) *sponsor.Candidates {
	index := make(map[string]int, existing.Len())
	for i, c := range existing.Items {
		index[c.Name] = i
	}

	for _, c := range incoming.Items {
		if i, ok := index[c.Name]; ok {
			existing.Items[i] = c
			continue
		}
		index[c.Name] = len(existing.Items)
		existing.Items = append(existing.Items, c)
	}

	return existing
}
