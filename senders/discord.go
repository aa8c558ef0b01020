package senders

import (
	"context"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/dropwatch/lib/models"
	"github.com/google/uuid"
)

type discordSender struct {
	base
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Image       *discordImage  `json:"image,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordImage struct {
	URL string `json:"url"`
}

func (d *discordSender) SendReminder(ctx context.Context, subscriber *models.Subscriber, release *models.Release, stage models.Stage, minutesLeft int) (string, error) {
	// A subscriber may carry its own webhook; otherwise post to the shared
	// channel webhook.
	webhookURL := subscriber.PlatformIdentifier
	if webhookURL == "" {
		webhookURL = d.cfg.Discord.WebhookURL
	}

	format := reminderFormat{release, stage, minutesLeft}
	payload := discordPayload{
		Embeds: []discordEmbed{format.Embed()},
	}

	timeout := time.Duration(d.cfg.Discord.TimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := requests.URL(webhookURL).
		Transport(d.transport).
		BodyJSON(&payload).
		CheckStatus(http.StatusOK, http.StatusNoContent).
		Fetch(ctx)
	if err != nil {
		return "", err
	}

	// Webhooks return no message ID, so mint one for log correlation.
	return uuid.NewString(), nil
}
