// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleCSV = `id,title,popularity,genre_Action,genre_Comedy,emb_0,emb_1
tt0133093,The Matrix,9.1,1,0,0.5,0.5
tt0114709,Toy Story,8.3,0,1,,
tt1375666,Inception,8.8,1,0,0.7,0.1
`

const sampleJSONL = `{"feature_names":["genre_Action","genre_Comedy"]}
{"id":"tt0133093","title":"The Matrix","popularity":9.1,"features":[1,0],"embedding":[0.5,0.5]}
{"id":"tt0114709","title":"Toy Story","popularity":8.3,"features":[0,1]}
`

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	c, err := Load(strings.NewReader(sampleCSV), FormatCSV, "sample.csv")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if got := c.FeatureNames(); !slices.Equal(got, []string{"genre_Action", "genre_Comedy"}) {
		t.Errorf("FeatureNames() = %v", got)
	}
	if c.EmbeddedCount() != 2 {
		t.Errorf("EmbeddedCount() = %d, want 2", c.EmbeddedCount())
	}

	matrix, ok := c.Get("tt0133093")
	if !ok {
		t.Fatal("tt0133093 missing")
	}
	if matrix.Title != "The Matrix" || matrix.Popularity != 9.1 {
		t.Errorf("matrix = %+v", matrix)
	}
	if !slices.Equal(matrix.Embedding, []float64{0.5, 0.5}) {
		t.Errorf("matrix embedding = %v", matrix.Embedding)
	}

	toy, _ := c.Get("tt0114709")
	if toy.HasEmbedding() {
		t.Errorf("toy story should have no embedding, got %v", toy.Embedding)
	}
}

func TestLoadCSV_IntegrityErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"header only", "id,genre_Action\n"},
		{"no id column", "title,genre_Action\nx,1\n"},
		{"no feature columns", "id,title\na,x\n"},
		{"non numeric feature", "id,genre_Action\na,yes\n"},
		{"empty feature", "id,genre_Action,genre_Drama\na,1,\n"},
		{"ragged row", "id,genre_Action\na,1,2\n"},
		{"duplicate id", "id,genre_Action\na,1\na,0\n"},
		{"missing id", "id,genre_Action\n,1\n"},
		{"partial embedding", "id,genre_Action,emb_0,emb_1\na,1,0.1,\n"},
		{"bad popularity", "id,popularity,genre_Action\na,hot,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(strings.NewReader(tt.input), FormatCSV, "test.csv")
			if !errors.Is(err, ErrDataIntegrity) {
				t.Errorf("Load() error = %v, want ErrDataIntegrity", err)
			}
		})
	}
}

func TestLoadJSONL(t *testing.T) {
	t.Parallel()

	c, err := Load(strings.NewReader(sampleJSONL), FormatJSONL, "sample.jsonl")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got := c.Genres(); !slices.Equal(got, []string{"Action", "Comedy"}) {
		t.Errorf("Genres() = %v", got)
	}
	if c.EmbeddingDimensions() != 2 {
		t.Errorf("EmbeddingDimensions() = %d, want 2", c.EmbeddingDimensions())
	}
}

func TestLoadJSONL_IntegrityErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"id":"a","features":[1,}`},
		{"missing id", `{"features":[1,0]}`},
		{"dimension mismatch", "{\"id\":\"a\",\"features\":[1,0]}\n{\"id\":\"b\",\"features\":[1]}"},
		{"late header", "{\"id\":\"a\",\"features\":[1]}\n{\"feature_names\":[\"genre_Action\"]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(strings.NewReader(tt.input), FormatJSONL, "test.jsonl")
			if !errors.Is(err, ErrDataIntegrity) {
				t.Errorf("Load() error = %v, want ErrDataIntegrity", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path, FormatAuto)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if c.Source() != path {
		t.Errorf("Source() = %q, want %q", c.Source(), path)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.csv"), FormatAuto)
	if err == nil {
		t.Fatal("LoadFile(missing) succeeded")
	}
	if errors.Is(err, ErrDataIntegrity) {
		t.Error("missing file reported as integrity error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want os.ErrNotExist", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "movies.parquet"), FormatAuto); err == nil {
		t.Error("LoadFile(.parquet) succeeded")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"CSV", FormatCSV, false},
		{"jsonl", FormatJSONL, false},
		{"ndjson", FormatJSONL, false},
		{"parquet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
