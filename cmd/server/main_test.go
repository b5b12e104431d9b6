package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"bridgeid/internal/platform/config"
	"bridgeid/internal/verification/dispatch"
	verificationmetrics "bridgeid/internal/verification/metrics"
)

func TestBuildDispatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := verificationmetrics.New(prometheus.NewRegistry())

	t.Run("no responder URL leaves no dispatcher", func(t *testing.T) {
		cfg := &config.Config{Responder: config.Responder{MockMode: true}}
		assert.Nil(t, buildDispatcher(cfg, logger, m))
	})

	t.Run("responder URL gets a guarded HTTP dispatcher", func(t *testing.T) {
		cfg := &config.Config{Responder: config.Responder{
			URL:             "http://responder.local",
			DispatchTimeout: time.Second,
			BreakerFailures: 3,
			BreakerCooldown: time.Second,
		}}
		assert.IsType(t, &dispatch.Guarded{}, buildDispatcher(cfg, logger, m))
	})
}
