// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package catalog holds the movie catalog the recommendation engine retrieves from.
//
// A Catalog is an immutable snapshot: once built by New or one of the loaders it
// is never mutated, so any number of goroutines may read it without locking.
// Refreshing the data means building a complete replacement and publishing it
// through Store.Swap, which is a single atomic pointer store. Readers take one
// snapshot per request and keep using it even if a reload lands mid-request.
//
// # Integrity
//
// Loading fails fast with a *DataIntegrityError when any record has a missing or
// duplicate id, a feature vector whose length differs from the first record, a
// non-finite value, or a text embedding whose length differs from the other
// embeddings. Nothing is repaired at query time.
//
// # File formats
//
// CSV files carry a header row. The id column is required; title and popularity
// are optional. Columns prefixed genre_ or f_ form the feature vector in header
// order and columns prefixed emb_ form the optional text embedding:
//
//	id,title,popularity,genre_Action,genre_Comedy,emb_0,emb_1
//	tt0133093,The Matrix,9.1,1,0,0.12,-0.40
//
// JSON lines files carry one object per line with an optional leading header
// object naming the features:
//
//	{"feature_names":["genre_Action","genre_Comedy"]}
//	{"id":"tt0133093","title":"The Matrix","popularity":9.1,"features":[1,0]}
//
// # Snapshots
//
// SnapshotStore persists the last good catalog in BadgerDB so the service can
// still start when the source file is temporarily unreachable. Integrity errors
// are never masked by a snapshot.
package catalog
