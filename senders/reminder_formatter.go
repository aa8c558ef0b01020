package senders

import (
	"fmt"
	"strings"

	"github.com/fiffu/dropwatch/lib/models"
)

type reminderFormat struct {
	release     *models.Release
	stage       models.Stage
	minutesLeft int
}

func (f reminderFormat) Title() string {
	return fmt.Sprintf("Sneaker Drop Reminder (%d min)", f.minutesLeft)
}

func (f reminderFormat) Description() string {
	return fmt.Sprintf("**%s** drops in **%d minutes**!", f.release.Name, f.minutesLeft)
}

func (f reminderFormat) DropTime() string {
	return f.release.DropAt.Format("Jan 2, 2006 3:04 PM")
}

func (f reminderFormat) Embed() discordEmbed {
	embed := discordEmbed{
		Title:       f.Title(),
		Description: f.Description(),
		URL:         f.release.URL,
		Color:       f.stage.Color,
		Fields: []discordField{
			{Name: "Brand", Value: f.release.Brand, Inline: true},
			{Name: "Drop Time", Value: f.DropTime(), Inline: true},
			{Name: "Minutes Left", Value: fmt.Sprintf("%d min", f.minutesLeft), Inline: true},
		},
	}
	if f.release.ImageURL != "" {
		embed.Image = &discordImage{URL: f.release.ImageURL}
	}
	return embed
}

func (f reminderFormat) Subject() string {
	return fmt.Sprintf("Dropwatch: %s drops in %d minutes", f.release.Name, f.minutesLeft)
}

func (f reminderFormat) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<h3><a href="%s">%s</a> drops in %d minutes</h3>`, f.release.URL, f.release.Name, f.minutesLeft)
	fmt.Fprintf(&b, "<p>Brand: %s<br>Drop time: %s</p>", f.release.Brand, f.DropTime())
	if f.release.ImageURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, f.release.ImageURL, f.release.Name)
	}
	return b.String()
}
