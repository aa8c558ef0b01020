package lib

import (
	"context"
	"errors"
	"fmt"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type manageSubscription struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

// Subscribe adds (subscriber, release) to the watch set. Subscribing twice is
// a no-op.
func (svc *manageSubscription) Subscribe(ctx context.Context, handle, slug string) (*models.Subscription, error) {
	subscriber, err := svc.findSubscriber(ctx, handle)
	if err != nil {
		return nil, err
	}

	var release models.Release
	tx := svc.db.WithContext(ctx).Where("slug = ?", slug).First(&release)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no such release: %s", slug)
	} else if err != nil {
		return nil, err
	}

	subscription := &models.Subscription{
		SubscriberID: subscriber.ID,
		ReleaseSlug:  release.Slug,
	}
	tx = svc.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(subscription)
	if err := tx.Error; err != nil {
		return nil, err
	}

	svc.log.Sugar().Infof("Subscribed %s to %s", handle, slug)
	return subscription, nil
}

// Unsubscribe removes the pair. Removing a pair that is not present is a
// no-op.
func (svc *manageSubscription) Unsubscribe(ctx context.Context, handle, slug string) error {
	subscriber, err := svc.findSubscriber(ctx, handle)
	if err != nil {
		return err
	}

	tx := svc.db.WithContext(ctx).
		Where("subscriber_id = ?", subscriber.ID).
		Where("release_slug = ?", slug).
		Delete(&models.Subscription{})
	if err := tx.Error; err != nil {
		return err
	}

	svc.log.Sugar().Infof("Unsubscribed %s from %s", handle, slug)
	return nil
}

func (svc *manageSubscription) ListSubscriptions(ctx context.Context, handle string) (models.Subscriptions, error) {
	subscriber, err := svc.findSubscriber(ctx, handle)
	if err != nil {
		return nil, err
	}

	var subscriptions models.Subscriptions
	tx := svc.db.WithContext(ctx).
		Where("subscriber_id = ?", subscriber.ID).
		Find(&subscriptions)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (svc *manageSubscription) findSubscriber(ctx context.Context, handle string) (*models.Subscriber, error) {
	subscriber := &models.Subscriber{}
	tx := svc.db.WithContext(ctx).Where("handle = ?", handle).First(subscriber)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no such subscriber: %s", handle)
	} else if err != nil {
		return nil, err
	}
	return subscriber, nil
}
