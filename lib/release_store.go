package lib

import (
	"context"

	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReleaseStore reads and syncs the scraped release calendar.
type ReleaseStore struct {
	log *zap.Logger
	db  *gorm.DB
}

func NewReleaseStore(log *zap.Logger, db *gorm.DB) *ReleaseStore {
	return &ReleaseStore{log, db}
}

// ListReleases returns every known release ordered by drop time.
func (s *ReleaseStore) ListReleases(ctx context.Context) (models.Releases, error) {
	var releases models.Releases
	tx := s.db.WithContext(ctx).Order("drop_at asc").Find(&releases)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return releases, nil
}

// Sync upserts scraped releases wholesale, keyed by slug.
func (s *ReleaseStore) Sync(ctx context.Context, releases models.Releases) error {
	for _, release := range releases {
		tx := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				UpdateAll: true,
			}).
			Create(release)
		if err := tx.Error; err != nil {
			return err
		}
	}
	s.log.Sugar().Infof("Synced %d releases", len(releases))
	return nil
}
