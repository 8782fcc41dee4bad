// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP interface of the recommendation engine.

Routes are served by a Chi router (SetupChi). Every JSON response uses the
same envelope:

	{
	  "success": true,
	  "data":    {...},
	  "error":   {"code": "UNKNOWN_ITEM", "message": "...", "details": {...}},
	  "meta":    {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

# Endpoints

	GET  /api/v1/recommendations/initial?limit=
	POST /api/v1/recommendations/preferences
	GET  /api/v1/recommendations/similar/{itemID}?limit=
	GET  /api/v1/recommendations/search?q=&limit=&exclude=a,b
	GET  /api/v1/recommendations/genres?genres=Action,Drama&limit=
	GET  /api/v1/genres
	GET  /api/v1/items/{itemID}
	GET  /api/v1/health, /api/v1/health/live, /api/v1/health/ready
	GET  /metrics

An omitted limit uses the engine's default limit; larger limits are clamped
to its maximum. Engine errors are translated by classifyError.
*/
package api
