// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package embedding turns free-text queries into vectors in the catalog's text
embedding space.

The Embedder wraps an injected Model with the resilience layers an external
call needs:

  - input normalisation (trim, lower-case, collapse whitespace, rune cap)
  - a per-call timeout
  - a token bucket limiter on outgoing model calls (golang.org/x/time/rate)
  - a circuit breaker around the model (sony/gobreaker)
  - singleflight collapsing of concurrent identical queries
  - an LRU cache of recent vectors keyed by normalised text

Every failure to produce a vector is reported as *UnavailableError, which
matches ErrUnavailable under errors.Is. The caller's own cancellation is
returned as the context error instead.

OpenAIModel is the production Model. It calls any OpenAI-compatible
/embeddings endpoint through github.com/sashabaranov/go-openai.
*/
package embedding
