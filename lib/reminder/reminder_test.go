package reminder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib"
	"github.com/fiffu/dropwatch/lib/models"
	"github.com/fiffu/dropwatch/senders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dropAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dropwatch.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Release{},
		&models.Subscriber{},
		&models.Subscription{},
		&models.FiredReminder{},
	))
	return db
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("TIMEZONE", "UTC")
	cfg, err := config.NewConfig(zap.NewNop())
	require.NoError(t, err)
	return cfg
}

type fakeSender struct {
	deliveries []string
	failFor    map[string]bool
}

func (f *fakeSender) SendReminder(ctx context.Context, subscriber *models.Subscriber, release *models.Release, stage models.Stage, minutesLeft int) (string, error) {
	if f.failFor[subscriber.Handle] {
		return "", errors.New("send failed")
	}
	f.deliveries = append(f.deliveries, fmt.Sprintf("%s/%s/%s", release.Slug, stage.Label, subscriber.Handle))
	return "fake-delivery-id", nil
}

type world struct {
	db     *gorm.DB
	fired  *lib.FiredStore
	sender *fakeSender
	r      *Reminderer
}

func newWorld(t *testing.T) *world {
	return newWorldWithDB(t, newTestDB(t))
}

func newWorldWithDB(t *testing.T, db *gorm.DB) *world {
	t.Helper()

	cfg := newTestConfig(t)
	logger := zap.NewNop()

	fired, err := lib.NewFiredStore(logger, db)
	require.NoError(t, err)

	sender := &fakeSender{failFor: map[string]bool{}}
	r := New(
		cfg, logger,
		lib.NewReleaseStore(logger, db),
		lib.NewSubscriberStore(logger, db),
		fired,
		senders.Registry{"discord": sender},
	)
	return &world{db, fired, sender, r}
}

func (w *world) seedRelease(t *testing.T, slug, brand string) {
	t.Helper()
	release := &models.Release{Slug: slug, Name: slug, Brand: brand, DropAt: dropAt, URL: "https://example.com/" + slug}
	require.NoError(t, w.db.Create(release).Error)
}

func (w *world) seedSubscriber(t *testing.T, handle string, slugs ...string) {
	t.Helper()
	subscriber := &models.Subscriber{Handle: handle, Platform: "discord"}
	require.NoError(t, w.db.Create(subscriber).Error)
	for _, slug := range slugs {
		sub := &models.Subscription{SubscriberID: subscriber.ID, ReleaseSlug: slug}
		require.NoError(t, w.db.Create(sub).Error)
	}
}

func (w *world) firedCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, w.db.Model(&models.FiredReminder{}).Count(&count).Error)
	return count
}

func TestTwoPassScenario(t *testing.T) {
	w := newWorld(t)
	w.seedRelease(t, "aj1-001", "Jordan")
	w.seedSubscriber(t, "alice", "aj1-001")
	ctx := context.Background()

	// Inside the 24h window.
	now := dropAt.Add(-24*time.Hour - 4*time.Minute)
	require.NoError(t, w.r.RunPass(ctx, now))
	assert.Equal(t, []string{"aj1-001/24h/alice"}, w.sender.deliveries)

	// One minute later the window still covers the stage, but it already fired.
	require.NoError(t, w.r.RunPass(ctx, now.Add(time.Minute)))
	assert.Equal(t, []string{"aj1-001/24h/alice"}, w.sender.deliveries)

	// Everyone subscribed by then gets the 5m stage.
	w.seedSubscriber(t, "bob", "aj1-001")
	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-5*time.Minute)))
	assert.Equal(t, []string{
		"aj1-001/24h/alice",
		"aj1-001/5m/alice",
		"aj1-001/5m/bob",
	}, w.sender.deliveries)
}

func TestEveryStageFiresExactlyOnce(t *testing.T) {
	w := newWorld(t)
	w.seedRelease(t, "dunk-low", "Nike")
	w.seedSubscriber(t, "alice", "dunk-low")
	ctx := context.Background()

	// Simulate the 60s polling loop across the entire day before the drop.
	for minutes := 1445; minutes >= 0; minutes-- {
		now := dropAt.Add(-time.Duration(minutes) * time.Minute)
		require.NoError(t, w.r.RunPass(ctx, now))
	}

	assert.Equal(t, []string{
		"dunk-low/24h/alice",
		"dunk-low/1h/alice",
		"dunk-low/30m/alice",
		"dunk-low/15m/alice",
		"dunk-low/5m/alice",
	}, w.sender.deliveries)
	assert.EqualValues(t, 5, w.firedCount(t))
}

func TestZeroSubscribersStillMarksFired(t *testing.T) {
	w := newWorld(t)
	w.seedRelease(t, "yeezy-350", "Adidas")
	ctx := context.Background()

	now := dropAt.Add(-16 * time.Minute)
	require.NoError(t, w.r.RunPass(ctx, now))

	assert.Empty(t, w.sender.deliveries)
	assert.True(t, w.fired.Fired("yeezy-350", "15m"))
	assert.EqualValues(t, 1, w.firedCount(t))
}

func TestLateSubscriberGetsNoRetroactiveStage(t *testing.T) {
	w := newWorld(t)
	w.seedRelease(t, "aj1-001", "Jordan")
	ctx := context.Background()

	// The 30m stage fires with nobody subscribed.
	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-34*time.Minute)))
	require.Empty(t, w.sender.deliveries)

	// Alice subscribes while the window still covers the stage.
	w.seedSubscriber(t, "alice", "aj1-001")
	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-33*time.Minute)))
	assert.Empty(t, w.sender.deliveries)
}

func TestBrandFilterExcludesRelease(t *testing.T) {
	t.Setenv("BRAND_FILTERS", "Nike,Jordan")
	w := newWorld(t)
	w.seedRelease(t, "yeezy-350", "Adidas")
	w.seedRelease(t, "dunk-low", "nike") // case-insensitive match
	w.seedSubscriber(t, "alice", "yeezy-350", "dunk-low")
	ctx := context.Background()

	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-30*time.Minute)))

	assert.Equal(t, []string{"dunk-low/30m/alice"}, w.sender.deliveries)
	assert.False(t, w.fired.Fired("yeezy-350", "30m"))
}

func TestFiredStoreRoundTripReplay(t *testing.T) {
	db := newTestDB(t)
	w := newWorldWithDB(t, db)
	w.seedRelease(t, "aj1-001", "Jordan")
	w.seedSubscriber(t, "alice", "aj1-001")
	ctx := context.Background()

	now := dropAt.Add(-32 * time.Minute)
	require.NoError(t, w.r.RunPass(ctx, now))
	require.Len(t, w.sender.deliveries, 1)

	// A fresh process over the same database replays the same instant.
	restarted := newWorldWithDB(t, db)
	require.NoError(t, restarted.r.RunPass(ctx, now))
	assert.Empty(t, restarted.sender.deliveries)
}

func TestDeliveryFailureDoesNotBlockOthers(t *testing.T) {
	w := newWorld(t)
	w.seedRelease(t, "aj1-001", "Jordan")
	w.seedSubscriber(t, "alice", "aj1-001")
	w.seedSubscriber(t, "bob", "aj1-001")
	w.sender.failFor["alice"] = true
	ctx := context.Background()

	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-17*time.Minute)))

	assert.Equal(t, []string{"aj1-001/15m/bob"}, w.sender.deliveries)
	assert.True(t, w.fired.Fired("aj1-001", "15m"))

	// The failed delivery is not retried on the next pass.
	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-16*time.Minute)))
	assert.Equal(t, []string{"aj1-001/15m/bob"}, w.sender.deliveries)
}

func TestFlushFailureFailsPass(t *testing.T) {
	w := newWorld(t)
	w.seedRelease(t, "aj1-001", "Jordan")
	w.seedSubscriber(t, "alice", "aj1-001")
	require.NoError(t, w.db.Migrator().DropTable(&models.FiredReminder{}))
	ctx := context.Background()

	err := w.r.RunPass(ctx, dropAt.Add(-32*time.Minute))
	assert.Error(t, err)

	// Delivery precedes persistence, so the attempt went out; the next pass
	// may duplicate it rather than lose coverage.
	assert.Equal(t, []string{"aj1-001/30m/alice"}, w.sender.deliveries)
}

func TestMalformedReleaseIsSkipped(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.db.Create(&models.Release{Slug: "no-date", Name: "No Date", Brand: "Nike"}).Error)
	w.seedRelease(t, "aj1-001", "Jordan")
	w.seedSubscriber(t, "alice", "aj1-001")
	ctx := context.Background()

	require.NoError(t, w.r.RunPass(ctx, dropAt.Add(-30*time.Minute)))
	assert.Equal(t, []string{"aj1-001/30m/alice"}, w.sender.deliveries)
}
