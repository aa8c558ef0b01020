package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/fiffu/dropwatch/lib/models"
)

// RunPass computes and delivers every reminder due at the given instant, then
// flushes the fired log. Only a release-list load or flush failure fails the
// pass; bad records and delivery errors are contained per release and per
// subscriber.
func (r *Reminderer) RunPass(ctx context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := time.Now()

	releases, err := r.events.ListReleases(ctx)
	if err != nil {
		return fmt.Errorf("listing releases: %w", err)
	}

	m := &passMetrics{}
	for _, release := range releases {
		r.checkRelease(ctx, release, now, m)
	}

	if err := r.fired.Flush(ctx); err != nil {
		return fmt.Errorf("flushing fired reminders: %w", err)
	}

	if m.due > 0 || m.errored > 0 {
		r.log.Sugar().Infow(
			fmt.Sprintf("Processed %d releases", len(releases)),
			"due", m.due, "delivered", m.delivered, "silent", m.silent, "errored", m.errored,
		)
	}

	elapsed := time.Now().UTC().Sub(started)
	r.log.Sugar().Infow("Reminder pass completed", "elapsed_msecs", int(elapsed.Milliseconds()))
	return nil
}

func (r *Reminderer) checkRelease(ctx context.Context, release *models.Release, now time.Time, m *passMetrics) {
	if release.Slug == "" || release.DropAt.IsZero() {
		r.log.Sugar().Warnf("Skipping malformed release id:%v (%s)", release.ID, release.Name)
		return
	}
	if !r.cfg.AllowsBrand(release.Brand) {
		return
	}

	stage, ok := dueStage(now, release.DropAt, r.tolerance)
	if !ok {
		return
	}
	if r.fired.Fired(release.Slug, stage.Label) {
		return
	}
	m.due += 1

	subscribers, err := r.subs.SubscribersFor(ctx, release.Slug)
	if err != nil {
		// The stage stays unfired; the next pass retries while the window
		// still covers it.
		r.log.Sugar().Warnw("Failed to resolve subscribers", "release", release.Slug, "err", err)
		m.errored += 1
		return
	}

	minutesLeft := minutesUntil(now, release.DropAt)
	for _, subscriber := range subscribers {
		if err := r.deliver(ctx, subscriber, release, stage, minutesLeft); err != nil {
			r.log.Sugar().Errorw("Failed to deliver reminder",
				"release", release.Slug, "stage", stage.Label, "subscriber", subscriber.Handle, "err", err)
			m.errored += 1
		} else {
			m.delivered += 1
		}
	}
	if len(subscribers) == 0 {
		m.silent += 1
	}

	// Fired even when nobody is subscribed or a delivery failed: the stage
	// must not come up due again on the next pass.
	r.fired.MarkFired(release.Slug, stage.Label, now)
}

func (r *Reminderer) deliver(ctx context.Context, subscriber *models.Subscriber, release *models.Release, stage models.Stage, minutesLeft int) error {
	sender, ok := r.senders[subscriber.Platform]
	if !ok {
		return fmt.Errorf("unsupported subscriber platform: %s", subscriber.Platform)
	}

	ctx, cancel := context.WithTimeout(ctx, r.deliveryTimeout)
	defer cancel()

	id, err := sender.SendReminder(ctx, subscriber, release, stage, minutesLeft)
	if err == nil {
		r.log.Sugar().Infow("Sent reminder",
			"release", release.Slug, "stage", stage.Label, "subscriber", subscriber.Handle, "delivery_id", id)
	}
	return err
}
