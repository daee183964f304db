package events

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"weblytics/internal/database"
)

// Store is the append-only event store. Ingestion appends through the
// storage layer's single-writer discipline; queries are read-only scans.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// AppendPageview persists a pageview that already passed the noise filter.
func (s *Store) AppendPageview(pv *Pageview) error {
	return database.PerformWrite(s.logger, s.db, func(tx *gorm.DB) error {
		return tx.Create(pv).Error
	})
}

// AppendAnchorClick persists an anchor click.
func (s *Store) AppendAnchorClick(ac *AnchorClick) error {
	return database.PerformWrite(s.logger, s.db, func(tx *gorm.DB) error {
		return tx.Create(ac).Error
	})
}

// AppendQueryExecution persists a query execution record.
func (s *Store) AppendQueryExecution(qe *QueryExecution) error {
	return database.PerformWrite(s.logger, s.db, func(tx *gorm.DB) error {
		return tx.Create(qe).Error
	})
}

// PageviewsBetween returns pageviews in [start, end) whose URL contains
// urlFilter, in insertion order. Insertion order is what the
// dedupe-by-session semantics key on.
func (s *Store) PageviewsBetween(start, end time.Time, urlFilter string) ([]Pageview, error) {
	var rows []Pageview
	q := s.db.Where("timestamp >= ? AND timestamp < ?", start, end)
	if urlFilter != "" {
		q = q.Where("url LIKE ?", "%"+urlFilter+"%")
	}
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query pageviews: %w", err)
	}
	return rows, nil
}

// AnchorClicksBetween returns anchor clicks in [start, end) whose source
// URL contains sourceFilter, in insertion order.
func (s *Store) AnchorClicksBetween(start, end time.Time, sourceFilter string) ([]AnchorClick, error) {
	var rows []AnchorClick
	q := s.db.Where("timestamp >= ? AND timestamp < ?", start, end)
	if sourceFilter != "" {
		q = q.Where("source_url LIKE ?", "%"+sourceFilter+"%")
	}
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query anchor clicks: %w", err)
	}
	return rows, nil
}

// DistinctPageviewSessions counts distinct session identifiers among
// pageviews in [start, end) whose URL contains urlFilter. Backs the
// active-user window calculator.
func (s *Store) DistinctPageviewSessions(start, end time.Time, urlFilter string) (int64, error) {
	var count int64
	q := s.db.Model(&Pageview{}).
		Where("timestamp >= ? AND timestamp < ?", start, end)
	if urlFilter != "" {
		q = q.Where("url LIKE ?", "%"+urlFilter+"%")
	}
	if err := q.Distinct("session_id").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count distinct sessions: %w", err)
	}
	return count, nil
}
