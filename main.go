package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fiffu/dropwatch/app"
	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib"
	"github.com/fiffu/dropwatch/lib/reminder"
	"github.com/fiffu/dropwatch/lib/scrape"
	"github.com/fiffu/dropwatch/senders"
	"github.com/urfave/cli"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() (*zap.Logger, error) {
	switch os.Getenv("ENVIRONMENT") {
	default:
		return zap.NewDevelopment()

	case "production":
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			t = t.UTC()
			zapcore.ISO8601TimeEncoder(t, enc)
		}
		return logCfg.Build()
	}
}

func baseOptions() fx.Option {
	return fx.Options(
		fx.Provide(NewLogger),
		fx.Provide(config.NewConfig),

		fx.Provide(app.NewDatabase),
		fx.Provide(app.NewTransport),

		fx.Provide(lib.NewReleaseStore),
		fx.Provide(lib.NewSubscriberStore),
		fx.Provide(lib.NewFiredStore),
		fx.Provide(func(s *lib.ReleaseStore) reminder.EventSource { return s }),
		fx.Provide(func(s *lib.SubscriberStore) reminder.SubscriberSource { return s }),
		fx.Provide(func(s *lib.FiredStore) reminder.FiredLog { return s }),
		fx.Provide(func(s *lib.ReleaseStore) scrape.ReleaseSink { return s }),

		fx.Provide(senders.NewSenderRegistry),
		fx.Provide(scrape.NewScraper),
		fx.Provide(lib.NewService),
		fx.Provide(reminder.NewReminderer),
	)
}

func runApp(opts ...fx.Option) error {
	fxApp := fx.New(opts...)
	if err := fxApp.Err(); err != nil {
		return err
	}
	fxApp.Run()
	return nil
}

func main() {
	cliApp := cli.App{
		Name:  "dropwatch",
		Usage: "Sneaker release reminders.",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "loop",
				Usage: "keep checking at the poll interval, optionally given in seconds",
			},
		},
		Action: remind,
		Commands: []cli.Command{
			{
				Name:   "scrape",
				Usage:  "refresh the release calendar once",
				Action: scrapeOnce,
			},
			{
				Name:   "serve",
				Usage:  "run the API server together with the reminder loop",
				Action: serve,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func remind(c *cli.Context) error {
	opts := reminder.Options{Once: !c.Bool("loop")}
	if arg := c.Args().First(); c.Bool("loop") && arg != "" {
		secs, err := strconv.Atoi(arg)
		if err != nil || secs <= 0 {
			return fmt.Errorf("invalid loop interval: '%s'", arg)
		}
		opts.Interval = time.Duration(secs) * time.Second
	}

	return runApp(
		baseOptions(),
		fx.Supply(opts),
		fx.Invoke(func(*reminder.Reminderer) {}),
	)
}

func scrapeOnce(c *cli.Context) error {
	return runApp(
		baseOptions(),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, log *zap.Logger, scraper *scrape.Scraper) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if err := scraper.Run(context.Background()); err != nil {
							log.Sugar().Errorw("Scrape failed", "err", err)
						}
						sd.Shutdown()
					}()
					return nil
				},
			})
		}),
	)
}

func serve(c *cli.Context) error {
	return runApp(
		baseOptions(),
		fx.Supply(reminder.Options{}),
		fx.Provide(app.NewAPI),
		fx.Invoke(func(*http.Server) {}),
		fx.Invoke(func(*reminder.Reminderer) {}),
	)
}
