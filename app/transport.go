package app

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewTransport is the shared RoundTripper behind the scraper and every
// sender, so tests can swap the process's HTTP egress in one place.
func NewTransport(lc fx.Lifecycle, log *zap.Logger) http.RoundTripper {
	return &transport{http.DefaultTransport, log}
}

type transport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (tpt *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tpt.log.Sugar().Debugw("Outbound request", "method", req.Method, "host", req.URL.Host)
	return tpt.base.RoundTrip(req)
}
