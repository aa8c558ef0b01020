package app

import (
	"time"

	"github.com/fiffu/dropwatch/lib/models"
)

type ReleaseView struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	DropAt   string `json:"drop_at"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}

func (view ReleaseView) From(entity *models.Release) ReleaseView {
	return ReleaseView{
		Slug:     entity.Slug,
		Name:     entity.Name,
		Brand:    entity.Brand,
		DropAt:   entity.DropAt.Format(time.RFC3339),
		URL:      entity.URL,
		ImageURL: entity.ImageURL,
	}
}

type SubscriberView struct {
	Handle   string `json:"handle"`
	Platform string `json:"platform"`
}

func (view SubscriberView) From(entity *models.Subscriber) SubscriberView {
	return SubscriberView{
		Handle:   entity.Handle,
		Platform: entity.Platform,
	}
}

type SubscriptionView struct {
	ID          uint   `json:"id"`
	ReleaseSlug string `json:"release_slug"`
}

func (view SubscriptionView) From(entity *models.Subscription) SubscriptionView {
	return SubscriptionView{
		ID:          entity.ID,
		ReleaseSlug: entity.ReleaseSlug,
	}
}

type Fromable[Entity any, Repr any] interface {
	From(Entity) Repr
}

func FromMany[T any, U Fromable[T, U]](elems []T) []U {
	out := make([]U, len(elems))
	for i, t := range elems {
		var u U
		out[i] = u.From(t)
	}
	return out
}
