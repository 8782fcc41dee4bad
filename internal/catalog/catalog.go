// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenrePrefix marks feature columns that encode a genre.
const GenrePrefix = "genre_"

// Item is one movie in the catalog.
type Item struct {
	// ID is the stable external key (an IMDb id such as tt0133093).
	ID string `json:"id"`

	// Title is display metadata only; it never influences ranking.
	Title string `json:"title,omitempty"`

	// Popularity drives the cold-start ordering. Higher is more popular.
	Popularity float64 `json:"popularity,omitempty"`

	// Features is the fixed-dimension vector used for similarity.
	Features []float64 `json:"features"`

	// Embedding is the optional text embedding used by free-text search.
	Embedding []float64 `json:"embedding,omitempty"`
}

// HasEmbedding reports whether the item can be matched by text queries.
func (it *Item) HasEmbedding() bool {
	return len(it.Embedding) > 0
}

// Catalog is an immutable snapshot of the movie catalog.
type Catalog struct {
	items        []Item
	index        map[string]int
	featureNames []string
	genreIndex   map[string]int
	dim          int
	embeddingDim int
	embedded     int

	popular []int
	mean    []float64

	version  string
	source   string
	loadedAt time.Time
}

// New validates items and builds a catalog snapshot.
// featureNames may be nil; when present it must have one name per feature.
// The input slices are copied, so the caller may reuse them.
func New(items []Item, featureNames []string, source string) (*Catalog, error) {
	if len(items) == 0 {
		return nil, &DataIntegrityError{Source: source, Reason: "catalog is empty"}
	}

	dim := len(items[0].Features)
	if dim == 0 {
		return nil, &DataIntegrityError{Source: source, Record: 1, ID: items[0].ID, Reason: "feature vector is empty"}
	}
	if len(featureNames) > 0 && len(featureNames) != dim {
		return nil, &DataIntegrityError{
			Source: source,
			Reason: fmt.Sprintf("%d feature names for %d features", len(featureNames), dim),
		}
	}

	c := &Catalog{
		items:        make([]Item, 0, len(items)),
		index:        make(map[string]int, len(items)),
		featureNames: slices.Clone(featureNames),
		dim:          dim,
		version:      uuid.NewString(),
		source:       source,
		loadedAt:     time.Now(),
	}

	seen := make(map[string]struct{}, len(items))
	for i := range items {
		it := items[i]
		record := i + 1

		if strings.TrimSpace(it.ID) == "" {
			return nil, &DataIntegrityError{Source: source, Record: record, Reason: "missing id"}
		}
		if _, dup := seen[it.ID]; dup {
			return nil, &DataIntegrityError{Source: source, Record: record, ID: it.ID, Reason: "duplicate id"}
		}
		seen[it.ID] = struct{}{}

		if len(it.Features) != dim {
			return nil, &DataIntegrityError{
				Source: source, Record: record, ID: it.ID,
				Reason: fmt.Sprintf("feature vector has %d components, want %d", len(it.Features), dim),
			}
		}
		if !finite(it.Features) {
			return nil, &DataIntegrityError{Source: source, Record: record, ID: it.ID, Reason: "feature vector contains a non-finite value"}
		}
		if math.IsNaN(it.Popularity) || math.IsInf(it.Popularity, 0) {
			return nil, &DataIntegrityError{Source: source, Record: record, ID: it.ID, Reason: "popularity is not finite"}
		}

		if len(it.Embedding) > 0 {
			if c.embeddingDim == 0 {
				c.embeddingDim = len(it.Embedding)
			} else if len(it.Embedding) != c.embeddingDim {
				return nil, &DataIntegrityError{
					Source: source, Record: record, ID: it.ID,
					Reason: fmt.Sprintf("text embedding has %d components, want %d", len(it.Embedding), c.embeddingDim),
				}
			}
			if !finite(it.Embedding) {
				return nil, &DataIntegrityError{Source: source, Record: record, ID: it.ID, Reason: "text embedding contains a non-finite value"}
			}
			c.embedded++
		}

		it.Features = slices.Clone(it.Features)
		it.Embedding = slices.Clone(it.Embedding)
		c.items = append(c.items, it)
	}

	slices.SortFunc(c.items, func(a, b Item) int {
		return strings.Compare(a.ID, b.ID)
	})
	for i := range c.items {
		c.index[c.items[i].ID] = i
	}

	c.buildGenreIndex()
	c.buildPopularity()
	c.buildMean()

	return c, nil
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (c *Catalog) buildGenreIndex() {
	c.genreIndex = make(map[string]int)
	for i, name := range c.featureNames {
		if genre, ok := strings.CutPrefix(name, GenrePrefix); ok && genre != "" {
			c.genreIndex[strings.ToLower(genre)] = i
		}
	}
}

// buildPopularity orders items by popularity descending, then id ascending.
// Items are already in id order so a stable sort keeps the tie-break.
func (c *Catalog) buildPopularity() {
	c.popular = make([]int, len(c.items))
	for i := range c.popular {
		c.popular[i] = i
	}
	slices.SortStableFunc(c.popular, func(a, b int) int {
		pa, pb := c.items[a].Popularity, c.items[b].Popularity
		switch {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		default:
			return 0
		}
	})
}

func (c *Catalog) buildMean() {
	c.mean = make([]float64, c.dim)
	for i := range c.items {
		for j, x := range c.items[i].Features {
			c.mean[j] += x
		}
	}
	n := float64(len(c.items))
	for j := range c.mean {
		c.mean[j] /= n
	}
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// All yields every item in id order. The sequence may be ranged over any
// number of times.
func (c *Catalog) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for i := range c.items {
			if !yield(c.items[i]) {
				return
			}
		}
	}
}

// PopularityOrder yields items by popularity descending, ties by id.
func (c *Catalog) PopularityOrder() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, i := range c.popular {
			if !yield(c.items[i]) {
				return
			}
		}
	}
}

// MeanFeatures returns a copy of the mean feature vector across all items.
func (c *Catalog) MeanFeatures() []float64 {
	return slices.Clone(c.mean)
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Dimensions returns the feature vector dimension D.
func (c *Catalog) Dimensions() int { return c.dim }

// EmbeddingDimensions returns the text embedding dimension E, or 0 when no
// item carries an embedding.
func (c *Catalog) EmbeddingDimensions() int { return c.embeddingDim }

// EmbeddedCount returns how many items carry a text embedding.
func (c *Catalog) EmbeddedCount() int { return c.embedded }

// HasEmbeddings reports whether any item can be matched by text queries.
func (c *Catalog) HasEmbeddings() bool { return c.embedded > 0 }

// FeatureNames returns a copy of the feature column names.
func (c *Catalog) FeatureNames() []string { return slices.Clone(c.featureNames) }

// Genres returns the genre names encoded in the feature columns, sorted.
func (c *Catalog) Genres() []string {
	genres := make([]string, 0, len(c.genreIndex))
	for _, i := range c.genreIndex {
		genres = append(genres, strings.TrimPrefix(c.featureNames[i], GenrePrefix))
	}
	slices.Sort(genres)
	return genres
}

// GenreFeature returns the feature index for a genre name, ignoring case.
func (c *Catalog) GenreFeature(genre string) (int, bool) {
	i, ok := c.genreIndex[strings.ToLower(strings.TrimSpace(genre))]
	return i, ok
}

// ItemGenres returns the genres whose feature is non-zero for the item.
func (c *Catalog) ItemGenres(it *Item) []string {
	var genres []string
	for _, i := range c.genreIndex {
		if i < len(it.Features) && it.Features[i] != 0 {
			genres = append(genres, strings.TrimPrefix(c.featureNames[i], GenrePrefix))
		}
	}
	slices.Sort(genres)
	return genres
}

// Version identifies this snapshot. Every build gets a new version.
func (c *Catalog) Version() string { return c.version }

// Source names where the snapshot was loaded from.
func (c *Catalog) Source() string { return c.source }

// LoadedAt returns when the snapshot was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }
