package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bridgeid/internal/platform/health"
	"bridgeid/internal/platform/metrics"
	verificationhandler "bridgeid/internal/verification/handler"
	"bridgeid/pkg/platform/middleware/caller"
	request "bridgeid/pkg/platform/middleware/request"
)

type routerDeps struct {
	logger       *slog.Logger
	verification *verificationhandler.Handler
	health       *health.Handler
	tokens       caller.TokenValidator
	owners       caller.OwnerReader
	httpMetrics  *metrics.HTTP
	timeout      time.Duration
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(d.logger))
	r.Use(d.httpMetrics.Middleware)

	d.health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(d.timeout))

		d.verification.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(caller.RequireCaller(d.tokens, d.logger))
			d.verification.RegisterCaller(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(caller.RequireCaller(d.tokens, d.logger))
			r.Use(caller.RequireOwner(d.owners, d.logger))
			d.verification.RegisterAdmin(r)
		})
	})

	return r
}
