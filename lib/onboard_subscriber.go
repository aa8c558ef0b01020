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

type onboardSubscriber struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

var supportedPlatforms = map[string]bool{
	"discord": true,
	"email":   true,
}

func (svc *onboardSubscriber) OnboardSubscriber(ctx context.Context, handle, platform, identifier string) (*models.Subscriber, error) {
	if handle == "" {
		return nil, errors.New("handle is required")
	}
	if !supportedPlatforms[platform] {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	if platform == "email" && identifier == "" {
		return nil, errors.New("email subscribers need an address")
	}

	subscriber := &models.Subscriber{
		Handle:             handle,
		Platform:           platform,
		PlatformIdentifier: identifier,
	}
	tx := svc.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(subscriber)
	if err := tx.Error; err != nil {
		return nil, err
	}

	svc.log.Sugar().Infof("Created subscriber %v (%s on %s)", subscriber.ID, handle, platform)
	return subscriber, nil
}
