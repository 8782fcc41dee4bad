// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Format selects the catalog file parser.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// Column prefixes recognised in CSV headers.
const (
	featurePrefix   = "f_"
	embeddingPrefix = "emb_"
)

// ParseFormat converts a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "jsonl", "ndjson", "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown catalog format %q", s)
	}
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("cannot detect catalog format from %q", path)
	}
}

// LoadFile opens path and loads it. I/O failures are returned wrapped and are
// never *DataIntegrityError, so callers can tell "unreachable" from "malformed".
func LoadFile(path string, format Format) (*Catalog, error) {
	if format == FormatAuto || format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Load(f, format, path)
}

// Load parses a catalog from r.
func Load(r io.Reader, format Format, source string) (*Catalog, error) {
	switch format {
	case FormatCSV:
		return loadCSV(r, source)
	case FormatJSONL:
		return loadJSONL(r, source)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

type csvLayout struct {
	id         int
	title      int
	popularity int
	features   []int
	names      []string
	embedding  []int
}

func parseHeader(header []string) (*csvLayout, error) {
	layout := &csvLayout{id: -1, title: -1, popularity: -1}
	for i, col := range header {
		name := strings.TrimSpace(col)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		lower := strings.ToLower(name)
		switch {
		case lower == "id":
			layout.id = i
		case lower == "title":
			layout.title = i
		case lower == "popularity":
			layout.popularity = i
		case strings.HasPrefix(name, GenrePrefix), strings.HasPrefix(name, featurePrefix):
			layout.features = append(layout.features, i)
			layout.names = append(layout.names, name)
		case strings.HasPrefix(name, embeddingPrefix):
			layout.embedding = append(layout.embedding, i)
		}
	}
	if layout.id < 0 {
		return nil, errors.New("header has no id column")
	}
	if len(layout.features) == 0 {
		return nil, errors.New("header has no feature columns")
	}
	return layout, nil
}

func loadCSV(r io.Reader, source string) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataIntegrityError{Source: source, Reason: "catalog is empty"}
	}
	if err != nil {
		return nil, &DataIntegrityError{Source: source, Reason: "read header: " + err.Error()}
	}
	layout, err := parseHeader(header)
	if err != nil {
		return nil, &DataIntegrityError{Source: source, Reason: err.Error()}
	}

	var items []Item
	for record := 1; ; record++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataIntegrityError{Source: source, Record: record, Reason: err.Error()}
		}

		it, err := layout.item(row)
		if err != nil {
			return nil, &DataIntegrityError{Source: source, Record: record, ID: strings.TrimSpace(row[layout.id]), Reason: err.Error()}
		}
		items = append(items, it)
	}

	return New(items, layout.names, source)
}

func (l *csvLayout) item(row []string) (Item, error) {
	it := Item{ID: strings.TrimSpace(row[l.id])}
	if l.title >= 0 {
		it.Title = strings.TrimSpace(row[l.title])
	}
	if l.popularity >= 0 {
		if cell := strings.TrimSpace(row[l.popularity]); cell != "" {
			p, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return it, fmt.Errorf("popularity %q is not a number", cell)
			}
			it.Popularity = p
		}
	}

	it.Features = make([]float64, len(l.features))
	for j, col := range l.features {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			return it, fmt.Errorf("feature %d is empty", j)
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return it, fmt.Errorf("feature %d value %q is not a number", j, cell)
		}
		it.Features[j] = v
	}

	empty := 0
	for _, col := range l.embedding {
		if strings.TrimSpace(row[col]) == "" {
			empty++
		}
	}
	switch empty {
	case len(l.embedding):
		// no embedding for this item
	case 0:
		it.Embedding = make([]float64, len(l.embedding))
		for j, col := range l.embedding {
			cell := strings.TrimSpace(row[col])
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return it, fmt.Errorf("embedding %d value %q is not a number", j, cell)
			}
			it.Embedding[j] = v
		}
	default:
		return it, fmt.Errorf("text embedding is partially empty (%d of %d components missing)", empty, len(l.embedding))
	}

	return it, nil
}

// jsonRecord is one line of a JSON lines catalog. A line that only carries
// FeatureNames is the header.
type jsonRecord struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	ID           *string   `json:"id"`
	Title        string    `json:"title"`
	Popularity   float64   `json:"popularity"`
	Features     []float64 `json:"features"`
	Embedding    []float64 `json:"embedding"`
}

func loadJSONL(r io.Reader, source string) (*Catalog, error) {
	dec := json.NewDecoder(r)

	var (
		items []Item
		names []string
	)
	for record := 1; ; {
		var rec jsonRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataIntegrityError{Source: source, Record: record, Reason: "decode: " + err.Error()}
		}

		if rec.ID == nil && len(rec.FeatureNames) > 0 {
			if len(items) > 0 || names != nil {
				return nil, &DataIntegrityError{Source: source, Record: record, Reason: "feature_names header must be the first line"}
			}
			names = rec.FeatureNames
			continue
		}

		it := Item{
			Title:      rec.Title,
			Popularity: rec.Popularity,
			Features:   rec.Features,
			Embedding:  rec.Embedding,
		}
		if rec.ID != nil {
			it.ID = strings.TrimSpace(*rec.ID)
		}
		items = append(items, it)
		record++
	}

	return New(items, names, source)
}
