package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib/models"
	"github.com/fiffu/dropwatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EventSource yields the current set of scraped releases.
type EventSource interface {
	ListReleases(ctx context.Context) (models.Releases, error)
}

// SubscriberSource resolves who is watching a release.
type SubscriberSource interface {
	SubscribersFor(ctx context.Context, slug string) (models.Subscribers, error)
}

// FiredLog durably records which (release, stage) reminders already fired.
type FiredLog interface {
	Fired(slug, stage string) bool
	MarkFired(slug, stage string, at time.Time)
	Flush(ctx context.Context) error
}

// Options select between a single pass and an endless loop.
type Options struct {
	Once     bool
	Interval time.Duration // zero means the configured poll interval
}

type Reminderer struct {
	cfg     *config.Config
	log     *zap.Logger
	events  EventSource
	subs    SubscriberSource
	fired   FiredLog
	senders senders.Registry

	mu     sync.Mutex
	cancel context.CancelFunc

	interval        time.Duration
	tolerance       time.Duration
	deliveryTimeout time.Duration
}

func New(cfg *config.Config, log *zap.Logger, events EventSource, subs SubscriberSource, fired FiredLog, registry senders.Registry) *Reminderer {
	return &Reminderer{
		cfg:     cfg,
		log:     log,
		events:  events,
		subs:    subs,
		fired:   fired,
		senders: registry,

		interval:        cfg.PollInterval(),
		tolerance:       cfg.Tolerance(),
		deliveryTimeout: 10 * time.Second,
	}
}

func NewReminderer(
	lc fx.Lifecycle, sd fx.Shutdowner, cfg *config.Config, log *zap.Logger,
	events EventSource, subs SubscriberSource, fired FiredLog,
	registry senders.Registry, opts Options,
) (*Reminderer, error) {
	if len(registry) == 0 {
		return nil, errors.New("no notification destination configured, set DISCORD_WEBHOOK_URL or MAILGUN_DOMAIN/MAILGUN_API_KEY")
	}

	r := New(cfg, log, events, subs, fired, registry)
	if opts.Interval > 0 {
		r.interval = opts.Interval
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if opts.Once {
				go func() {
					if err := r.RunPass(context.Background(), r.now()); err != nil {
						r.log.Sugar().Errorw("Reminder pass failed", "err", err)
					}
					sd.Shutdown()
				}()
			} else {
				go r.Start()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Trying to stop reminderer")
			r.Stop()
			return nil
		},
	})

	return r, nil
}

func (r *Reminderer) now() time.Time {
	return time.Now().In(r.cfg.Location())
}

// Start runs one pass immediately, then one per tick until Stop. A failed
// pass is logged and the loop carries on to the next tick.
func (r *Reminderer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Sugar().Infof("Reminder loop started, checking every %s", r.interval)
	for {
		if err := r.RunPass(ctx, r.now()); err != nil {
			r.log.Sugar().Errorw("Reminder pass failed", "err", err)
		}

		select {
		case <-ctx.Done():
			r.log.Sugar().Info("Reminder loop stopped")
			return
		case <-ticker.C:
		}
	}
}

func (r *Reminderer) Stop() {
	if r.cancel != nil {
		r.cancel()
	}

	// Wait for an in-flight pass before reporting stopped.
	r.mu.Lock()
	defer r.mu.Unlock()
}
