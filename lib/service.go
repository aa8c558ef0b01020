package lib

import (
	"context"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the subscription-management surface exposed over the API.
type Service struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	releases *ReleaseStore
	*onboardSubscriber
	*manageSubscription
}

func NewService(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, db *gorm.DB, releases *ReleaseStore) *Service {
	return &Service{
		cfg, log, db,
		releases,
		&onboardSubscriber{cfg, log, db},
		&manageSubscription{cfg, log, db},
	}
}

func (svc *Service) ListReleases(ctx context.Context) (models.Releases, error) {
	return svc.releases.ListReleases(ctx)
}
