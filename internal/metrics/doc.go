// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and are
exposed at /metrics by the API router:

	curl http://localhost:8080/metrics

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Recommendations:
  - recommend_requests_total{mode,outcome}
  - recommend_duration_seconds{mode}
  - recommend_results{mode}

Catalog:
  - catalog_items, catalog_embedded_items
  - catalog_reloads_total{result}
  - catalog_reload_duration_seconds
  - catalog_last_reload_timestamp_seconds

Embedding:
  - embedding_requests_total{result}
  - embedding_duration_seconds
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

# Usage

Packages call the Record* helpers rather than touching collectors directly:

	start := time.Now()
	items, err := engine.Similar(ctx, id, limit)
	metrics.RecordRecommendation("similar", "success", len(items), time.Since(start))
*/
package metrics
