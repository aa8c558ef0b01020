package senders

import (
	"testing"
	"time"

	"github.com/fiffu/dropwatch/lib/models"
	"github.com/stretchr/testify/assert"
)

func testRelease(imageURL string) *models.Release {
	return &models.Release{
		Slug:     "air-jordan-1-chicago-2026-03-14",
		Name:     "Air Jordan 1 Chicago",
		Brand:    "Jordan",
		DropAt:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		URL:      "https://example.com/aj1",
		ImageURL: imageURL,
	}
}

func TestEmbedFieldsAndColor(t *testing.T) {
	f := reminderFormat{testRelease(""), models.Stages[4], 3}

	embed := f.Embed()
	assert.Equal(t, "Sneaker Drop Reminder (3 min)", embed.Title)
	assert.Equal(t, "**Air Jordan 1 Chicago** drops in **3 minutes**!", embed.Description)
	assert.Equal(t, 0xFF0000, embed.Color)
	assert.Nil(t, embed.Image)

	if assert.Len(t, embed.Fields, 3) {
		assert.Equal(t, discordField{Name: "Brand", Value: "Jordan", Inline: true}, embed.Fields[0])
		assert.Equal(t, discordField{Name: "Drop Time", Value: "Mar 14, 2026 10:00 AM", Inline: true}, embed.Fields[1])
		assert.Equal(t, discordField{Name: "Minutes Left", Value: "3 min", Inline: true}, embed.Fields[2])
	}
}

func TestEmbedColorsTrackUrgency(t *testing.T) {
	for _, tc := range []struct {
		stage models.Stage
		color int
	}{
		{models.Stages[0], 0x00FF00}, // 24h
		{models.Stages[3], 0xFFA500}, // 15m
		{models.Stages[4], 0xFF0000}, // 5m
	} {
		f := reminderFormat{testRelease(""), tc.stage, tc.stage.LeadMinutes}
		assert.Equal(t, tc.color, f.Embed().Color, tc.stage.Label)
	}
}

func TestEmbedIncludesImageWhenPresent(t *testing.T) {
	f := reminderFormat{testRelease("https://example.com/aj1.jpg"), models.Stages[0], 1440}

	embed := f.Embed()
	if assert.NotNil(t, embed.Image) {
		assert.Equal(t, "https://example.com/aj1.jpg", embed.Image.URL)
	}
}

func TestEmailSubjectAndBody(t *testing.T) {
	f := reminderFormat{testRelease("https://example.com/aj1.jpg"), models.Stages[1], 61}

	assert.Equal(t, "Dropwatch: Air Jordan 1 Chicago drops in 61 minutes", f.Subject())

	body := f.Body()
	assert.Contains(t, body, `<a href="https://example.com/aj1">Air Jordan 1 Chicago</a>`)
	assert.Contains(t, body, "Brand: Jordan")
	assert.Contains(t, body, "Drop time: Mar 14, 2026 10:00 AM")
	assert.Contains(t, body, `<img src="https://example.com/aj1.jpg"`)
}
