package models

import (
	"time"

	"gorm.io/gorm"
)

// Release is one scraped sneaker drop. Slug is the merge key: a re-scrape
// overwrites the row wholesale.
type Release struct {
	gorm.Model
	Slug     string `gorm:"uniqueIndex"`
	Name     string
	Brand    string
	DropAt   time.Time
	URL      string
	ImageURL string
}

type Releases []*Release

// Subscriber is a reminder destination: a handle plus the platform it is
// reached on ("discord" or "email") and the platform-specific identifier
// (webhook URL, address).
type Subscriber struct {
	gorm.Model
	Handle             string `gorm:"uniqueIndex"`
	Platform           string
	PlatformIdentifier string

	Subscriptions []Subscription
}

type Subscribers []*Subscriber

// Subscription pairs a subscriber with a release slug. Set semantics: the
// composite unique index plus on-conflict-do-nothing keeps duplicates out.
type Subscription struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	SubscriberID uint   `gorm:"uniqueIndex:idx_subscriber_release"`
	ReleaseSlug  string `gorm:"uniqueIndex:idx_subscriber_release"`

	Subscriber Subscriber
}

type Subscriptions []*Subscription

// FiredReminder records that a stage of a release already produced its
// notification attempts. Write-once per (slug, stage); the engine never
// updates or deletes these.
type FiredReminder struct {
	ReleaseSlug string `gorm:"uniqueIndex:idx_release_stage"`
	Stage       string `gorm:"uniqueIndex:idx_release_stage"`
	FiredAt     time.Time
}

type FiredReminders []*FiredReminder
