package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fiffu/dropwatch/config"
	"github.com/fiffu/dropwatch/lib"
	"github.com/fiffu/dropwatch/lib/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go srv.ListenAndServe()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service) http.Handler {
	ctrl := &controller{log, svc}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if creds := cfg.GetCreds(); len(creds) > 0 {
			r.Use(middleware.BasicAuth("dropwatch", creds))
		} else {
			log.Sugar().Info("Auth is disabled since no credentials are defined")
		}

		r.Get("/releases", ctrl.listReleases)
		r.Route("/subscribers", func(r chi.Router) {
			r.Post("/", ctrl.onboardSubscriber)
			r.Get("/{handle}/subscriptions", ctrl.listSubscriptions)
			r.Put("/{handle}/subscriptions/{slug}", ctrl.subscribe)
			r.Delete("/{handle}/subscriptions/{slug}", ctrl.unsubscribe)
		})
	})

	return r
}

type controller struct {
	log *zap.Logger
	svc *lib.Service
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	if b, err := json.Marshal(body); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		ctrl.log.Sugar().Error("Request failed", "error", err)
		return
	} else {
		w.WriteHeader(status)
		if b != nil {
			w.Write(b)
		}
	}
}

func (ctrl *controller) listReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := ctrl.svc.ListReleases(r.Context())
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, 200, FromMany[*models.Release, ReleaseView](releases))
}

func (ctrl *controller) onboardSubscriber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := r.FormValue("handle")
	platform := r.FormValue("platform")
	identifier := r.FormValue("identifier")

	if handle == "" {
		ctrl.reject(w, 400, errors.New("Handle is required"))
		return
	}
	if platform == "" {
		ctrl.reject(w, 400, errors.New("Platform is required"))
		return
	}

	subscriber, err := ctrl.svc.OnboardSubscriber(ctx, handle, platform, identifier)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, http.StatusCreated, SubscriberView{}.From(subscriber))
}

func (ctrl *controller) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := chi.URLParam(r, "handle")
	slug := chi.URLParam(r, "slug")

	subscription, err := ctrl.svc.Subscribe(ctx, handle, slug)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, SubscriptionView{}.From(subscription))
}

func (ctrl *controller) unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := chi.URLParam(r, "handle")
	slug := chi.URLParam(r, "slug")

	if err := ctrl.svc.Unsubscribe(ctx, handle, slug); err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.reject(w, http.StatusNoContent, nil)
}

func (ctrl *controller) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := chi.URLParam(r, "handle")

	subscriptions, err := ctrl.svc.ListSubscriptions(ctx, handle)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, 200, FromMany[*models.Subscription, SubscriptionView](subscriptions))
}
