package senders

import (
	"context"
	"net/http"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Sender interface {
	SendReminder(ctx context.Context, subscriber *models.Subscriber, release *models.Release, stage models.Stage, minutesLeft int) (string, error)
}

// Registry maps a subscriber platform to its sender. Only platforms with a
// configured destination are present.
type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}

	registry := Registry{}
	if cfg.Discord.WebhookURL != "" {
		registry["discord"] = &discordSender{base}
	}
	if cfg.Mailgun.Domain != "" && cfg.Mailgun.APIKey != "" {
		registry["email"] = &mailgunSender{base}
	}
	return registry
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}
