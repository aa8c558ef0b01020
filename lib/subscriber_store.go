package lib

import (
	"context"

	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubscriberStore resolves who is watching which release. Read-only to the
// reminder engine; the subscription service owns the writes.
type SubscriberStore struct {
	log *zap.Logger
	db  *gorm.DB
}

func NewSubscriberStore(log *zap.Logger, db *gorm.DB) *SubscriberStore {
	return &SubscriberStore{log, db}
}

// SubscribersFor returns the set of subscribers watching the given release.
func (s *SubscriberStore) SubscribersFor(ctx context.Context, slug string) (models.Subscribers, error) {
	var subscribers models.Subscribers
	tx := s.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.subscriber_id = subscribers.id").
		Where("subscriptions.release_slug = ?", slug).
		Find(&subscribers)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}
