// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config provides centralized configuration management for Cinematch.

Configuration is loaded with Koanf v2 in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, else config.yaml, config.yml,
    /etc/cinematch/config.yaml, /etc/cinematch/config.yml
 3. Environment variables, through an explicit name map

# Sections

  - server: HTTP_HOST, HTTP_PORT (8080), HTTP_TIMEOUT (30s), ENVIRONMENT
  - logging: LOG_LEVEL (info), LOG_FORMAT (json), LOG_CALLER
  - catalog: CATALOG_PATH, CATALOG_FORMAT, CATALOG_WATCH,
    CATALOG_RELOAD_INTERVAL, CATALOG_SNAPSHOT_DIR
  - recommend: RECOMMEND_MAX_RESULTS (100), RECOMMEND_DEFAULT_LIMIT (20),
    RECOMMEND_DISLIKE_WEIGHT (1.0), RECOMMEND_METRIC (cosine),
    RECOMMEND_COLD_START (popularity)
  - embedding: EMBEDDING_PROVIDER (none), EMBEDDING_BASE_URL,
    EMBEDDING_API_KEY (or OPENAI_API_KEY), EMBEDDING_MODEL,
    EMBEDDING_DIMENSIONS, EMBEDDING_TIMEOUT (5s), and limiter/cache knobs
  - security: RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT,
    CORS_ORIGINS (comma separated)

Unmapped environment variables are ignored.

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
