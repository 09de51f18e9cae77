// Package postgres stores each collection as a table of JSON documents keyed by sponsor name.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
)

const (
	sponsorsTable = "sponsors"
	analyzedTable = "analyzed_sponsors"
)

// candidateRecord is a row of the sponsors and analyzed_sponsors tables. Both tables share
// the struct, so it carries no named indexes that would collide between them.
type candidateRecord struct {
	Name      string `gorm:"column:name;type:text;primaryKey"`
	Score     int    `gorm:"column:score"`
	Payload   string `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type templateRecord struct {
	SponsorName string `gorm:"column:sponsor_name;type:text;primaryKey"`
	Payload     string `gorm:"column:payload;type:jsonb;not null"`
	UpdatedAt   time.Time
}

func (templateRecord) TableName() string {
	return "templates"
}

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects, sizes the pool and creates the tables when missing.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	for _, table := range []string{sponsorsTable, analyzedTable} {
		if err := db.WithContext(ctx).Table(table).AutoMigrate(&candidateRecord{}); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	if err := db.WithContext(ctx).AutoMigrate(&templateRecord{}); err != nil {
		return nil, fmt.Errorf("migrate templates: %w", err)
	}

	logger.Info("postgres connected successfully")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) UpsertSponsors(ctx context.Context, list *sponsor.Candidates) error {
	return s.upsertCandidates(ctx, sponsorsTable, list)
}

func (s *Store) ListSponsors(ctx context.Context) (*sponsor.Candidates, error) {
	return s.listCandidates(ctx, sponsorsTable, "created_at ASC, name ASC")
}

func (s *Store) UpsertAnalyzed(ctx context.Context, list *sponsor.Candidates) error {
	return s.upsertCandidates(ctx, analyzedTable, list)
}

func (s *Store) ListAnalyzed(ctx context.Context) (*sponsor.Candidates, error) {
	return s.listCandidates(ctx, analyzedTable, "score DESC, created_at ASC")
}

func (s *Store) UpsertTemplate(ctx context.Context, tpl *sponsor.Template) error {
	record, err := toTemplateRecord(tpl, time.Now().UTC())
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sponsor_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(record).Error
}

func (s *Store) GetTemplate(ctx context.Context, sponsorName string) (*sponsor.Template, error) {
	var record templateRecord
	err := s.db.WithContext(ctx).
		Where("sponsor_name = ?", sponsorName).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template for %q: %w", sponsorName, store.ErrNotFound)
		}
		return nil, err
	}
	return fromTemplateRecord(&record)
}

func (s *Store) ListTemplates(ctx context.Context) ([]*sponsor.Template, error) {
	var records []templateRecord
	if err := s.db.WithContext(ctx).Order("sponsor_name ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	templates := make([]*sponsor.Template, 0, len(records))
	for i := range records {
		tpl, err := fromTemplateRecord(&records[i])
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) upsertCandidates(ctx context.Context, table string, list *sponsor.Candidates) error {
	if list.Len() == 0 {
		return nil
	}

	records, err := toCandidateRecords(list)
	if err != nil {
		return err
	}

	// Postgres rejects one INSERT touching the same key twice, so write row by row.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			err := tx.Table(table).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "name"}},
					DoUpdates: clause.AssignmentColumns([]string{"score", "payload", "updated_at"}),
				}).
				Create(record).Error
			if err != nil {
				return fmt.Errorf("upsert %s %q: %w", table, record.Name, err)
			}
		}
		return nil
	})
}

func (s *Store) listCandidates(ctx context.Context, table, order string) (*sponsor.Candidates, error) {
	var records []candidateRecord
	if err := s.db.WithContext(ctx).Table(table).Order(order).Find(&records).Error; err != nil {
		return nil, err
	}
	return fromCandidateRecords(records)
}

func toCandidateRecords(list *sponsor.Candidates) ([]*candidateRecord, error) {
	records := make([]*candidateRecord, 0, list.Len())
	for _, c := range list.Items {
		payload, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", c.Name, err)
		}
		records = append(records, &candidateRecord{
			Name:    c.Name,
			Score:   c.Score(),
			Payload: string(payload),
		})
	}
	return records, nil
}

func fromCandidateRecords(records []candidateRecord) (*sponsor.Candidates, error) {
	items := make([]*sponsor.Candidate, 0, len(records))
	for _, record := range records {
		var c sponsor.Candidate
		if err := json.Unmarshal([]byte(record.Payload), &c); err != nil {
			return nil, fmt.Errorf("decode %q: %w", record.Name, err)
		}
		items = append(items, &c)
	}
	return &sponsor.Candidates{Items: items}, nil
}

func toTemplateRecord(tpl *sponsor.Template, now time.Time) (*templateRecord, error) {
	stamped := *tpl
	stamped.UpdatedAt = now

	payload, err := json.Marshal(stamped)
	if err != nil {
		return nil, fmt.Errorf("encode template %q: %w", tpl.SponsorName, err)
	}
	return &templateRecord{SponsorName: tpl.SponsorName, Payload: string(payload), UpdatedAt: now}, nil
}

func fromTemplateRecord(record *templateRecord) (*sponsor.Template, error) {
	var tpl sponsor.Template
	if err := json.Unmarshal([]byte(record.Payload), &tpl); err != nil {
		return nil, fmt.Errorf("decode template %q: %w", record.SponsorName, err)
	}
	return &tpl, nil
}
