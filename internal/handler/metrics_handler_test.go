package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/terreiro-erp-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{"database": ok})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{"database": ok, "redis": down})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, _ := newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())

	metrics := service.NewMetricsService()
	metrics.RecordMeasure("WARNING", false)
	handler = NewMetricsHandler(metrics, nil)
	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "discipline_measures_total")
}

func TestMetricsHandlerHealth(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, w := newGinContext(http.MethodGet, "/health", nil)
	handler.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uptime_seconds":0`)
}
