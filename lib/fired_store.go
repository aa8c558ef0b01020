package lib

import (
	"context"
	"sync"
	"time"

	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FiredKey identifies one (release, stage) reminder.
type FiredKey struct {
	ReleaseSlug string
	Stage       string
}

// FiredStore is the durable record of which reminders already fired. The
// whole set lives in memory, loaded once at construction; marks staged by the
// engine are persisted by Flush at the end of each pass.
type FiredStore struct {
	log *zap.Logger
	db  *gorm.DB

	mu      sync.Mutex
	fired   map[FiredKey]bool
	pending models.FiredReminders
}

func NewFiredStore(log *zap.Logger, db *gorm.DB) (*FiredStore, error) {
	s := &FiredStore{log: log, db: db, fired: make(map[FiredKey]bool)}
	if err := s.load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FiredStore) load(ctx context.Context) error {
	var records models.FiredReminders
	tx := s.db.WithContext(ctx).Find(&records)
	if err := tx.Error; err != nil {
		return err
	}

	for _, record := range records {
		s.fired[FiredKey{record.ReleaseSlug, record.Stage}] = true
	}
	s.log.Sugar().Infof("Loaded %d fired reminders", len(records))
	return nil
}

// Fired reports whether this (release, stage) already produced notification
// attempts, including marks staged but not yet flushed.
func (s *FiredStore) Fired(slug, stage string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired[FiredKey{slug, stage}]
}

// MarkFired stages a write-once fired record for the next Flush. Marking an
// already-fired key is a no-op.
func (s *FiredStore) MarkFired(slug, stage string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := FiredKey{slug, stage}
	if s.fired[key] {
		return
	}
	s.fired[key] = true
	s.pending = append(s.pending, &models.FiredReminder{
		ReleaseSlug: slug,
		Stage:       stage,
		FiredAt:     at.UTC(),
	})
}

// Flush persists the staged records. The mutex scopes the read-modify-write
// as a critical section; the unique index plus on-conflict-do-nothing absorbs
// a second process racing on the same database, preserving at most one record
// per key.
func (s *FiredStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	tx := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s.pending)
	if err := tx.Error; err != nil {
		return err
	}

	s.log.Sugar().Infow("Flushed fired reminders", "count", len(s.pending))
	s.pending = nil
	return nil
}
