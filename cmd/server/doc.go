// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the Cinematch server.

Cinematch serves content-based movie recommendations from a catalog of items
described by genre and feature vectors, with optional free-text search over
precomputed text embeddings.

# Application Architecture

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── Catalog reloader (file watch and/or interval)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Catalog: CSV or JSONL file, with an optional BadgerDB snapshot fallback
 4. Embedder: OpenAI-compatible embeddings API (optional)
 5. Engine: similarity ranking over the published catalog
 6. Supervisor Tree: Suture v4 process supervision
 7. HTTP Server: Chi router with rate limiting, CORS and Prometheus metrics

# Configuration

Common environment variables:

	HTTP_PORT=8080
	CATALOG_PATH=/data/catalog.csv
	CATALOG_WATCH=true
	CATALOG_SNAPSHOT_DIR=/data/snapshot
	RECOMMEND_METRIC=cosine            # or euclidean
	RECOMMEND_COLD_START=popularity    # or mean_features
	EMBEDDING_PROVIDER=openai
	EMBEDDING_BASE_URL=http://localhost:11434/v1
	OPENAI_API_KEY=...

A config file can be given with CONFIG_PATH.

# Signal Handling

SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains in-flight
requests for up to 10 seconds.
*/
package main
