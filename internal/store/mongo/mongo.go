// Package mongo stores the collections in MongoDB, one document per sponsor.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
)

const (
	DefaultDatabase = "ber_scholarship_db"

	SponsorsCollection  = "sponsors"
	AnalyzedCollection  = "analyzed_sponsors"
	TemplatesCollection = "templates"

	connectTimeout = 10 * time.Second
)

type Store struct {
	client    *mongo.Client
	sponsors  *mongo.Collection
	analyzed  *mongo.Collection
	templates *mongo.Collection
	logger    *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects and pings the server. The returned store must be closed.
func Open(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if database == "" {
		database = DefaultDatabase
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	logger.Info("connected to mongodb", zap.String("database", database))

	return &Store{
		client:    client,
		sponsors:  db.Collection(SponsorsCollection),
		analyzed:  db.Collection(AnalyzedCollection),
		templates: db.Collection(TemplatesCollection),
		logger:    logger,
	}, nil
}

func (s *Store) UpsertSponsors(ctx context.Context, list *sponsor.Candidates) error {
	return upsertCandidates(ctx, s.sponsors, list)
}

func (s *Store) ListSponsors(ctx context.Context) (*sponsor.Candidates, error) {
	return findCandidates(ctx, s.sponsors, options.Find())
}

func (s *Store) UpsertAnalyzed(ctx context.Context, list *sponsor.Candidates) error {
	return upsertCandidates(ctx, s.analyzed, list)
}

func (s *Store) ListAnalyzed(ctx context.Context) (*sponsor.Candidates, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fit_analysis.score", Value: -1}})
	return findCandidates(ctx, s.analyzed, opts)
}

func (s *Store) UpsertTemplate(ctx context.Context, tpl *sponsor.Template) error {
	record := *tpl
	record.UpdatedAt = time.Now().UTC()

	_, err := s.templates.ReplaceOne(ctx,
		bson.M{"sponsor_name": record.SponsorName},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert template %q: %w", record.SponsorName, err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, sponsorName string) (*sponsor.Template, error) {
	var tpl sponsor.Template
	err := s.templates.FindOne(ctx,
		bson.M{"sponsor_name": sponsorName},
		options.FindOne().SetProjection(bson.M{"_id": 0}),
	).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("template for %q: %w", sponsorName, store.ErrNotFound)
		}
		return nil, fmt.Errorf("find template %q: %w", sponsorName, err)
	}
	return &tpl, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]*sponsor.Template, error) {
	cur, err := s.templates.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("find templates: %w", err)
	}

	templates := []*sponsor.Template{}
	if err := cur.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return templates, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func upsertCandidates(ctx context.Context, coll *mongo.Collection, list *sponsor.Candidates) error {
	if list.Len() == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, list.Len())
	for _, c := range list.Items {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"name": c.Name}).
			SetReplacement(c).
			SetUpsert(true))
	}

	// Ordered keeps "last write wins" for names repeated within one batch.
	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("upsert %s: %w", coll.Name(), err)
	}
	return nil
}

func findCandidates(ctx context.Context, coll *mongo.Collection, opts *options.FindOptions) (*sponsor.Candidates, error) {
	opts.SetProjection(bson.M{"_id": 0})

	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}

	items := []*sponsor.Candidate{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return &sponsor.Candidates{Items: items}, nil
}
