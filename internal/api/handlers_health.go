// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status string          `json:"status"`
	Uptime float64         `json:"uptime"`
	Engine recommend.Stats `json:"engine"`
}

// Health handles health check requests. It always answers 200 and reports
// "degraded" until a catalog has been published.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()

	status := "healthy"
	if !stats.Ready {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status: status,
		Uptime: time.Since(h.startTime).Seconds(),
		Engine: stats,
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of the catalog.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK once a catalog is published, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()
	if !stats.Ready {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeCatalogNotReady,
			"catalog is not loaded yet", map[string]bool{"ready_to_serve": false})
		return
	}

	NewResponseWriter(w, r).Success(map[string]interface{}{
		"ready_to_serve":  true,
		"catalog_version": stats.CatalogVersion,
		"items":           stats.Items,
		"uptime":          time.Since(h.startTime).Seconds(),
	})
}
