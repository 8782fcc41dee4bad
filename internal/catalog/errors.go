// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrDataIntegrity matches every *DataIntegrityError.
	ErrDataIntegrity = errors.New("catalog data integrity violation")

	// ErrUnknownItem matches every *UnknownItemError.
	ErrUnknownItem = errors.New("unknown catalog item")

	// ErrNoSnapshot is returned by SnapshotStore.Load when nothing was saved yet.
	ErrNoSnapshot = errors.New("no catalog snapshot available")
)

// DataIntegrityError reports a malformed catalog record.
// Record is the 1-based position of the data record in the source (0 when the
// problem is not tied to one record, e.g. a missing header column).
type DataIntegrityError struct {
	Source string
	Record int
	ID     string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	var b strings.Builder
	b.WriteString("catalog data integrity")
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	if e.Record > 0 {
		fmt.Fprintf(&b, ": record %d", e.Record)
		if e.ID != "" {
			fmt.Fprintf(&b, " id %q", e.ID)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Is reports whether target is ErrDataIntegrity.
func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// UnknownItemError lists ids that are not present in the catalog.
type UnknownItemError struct {
	IDs []string
}

// NewUnknownItemError returns an error listing ids sorted and without repeats.
func NewUnknownItemError(ids ...string) *UnknownItemError {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return &UnknownItemError{IDs: slices.Compact(sorted)}
}

func (e *UnknownItemError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("unknown item id %q", e.IDs[0])
	}
	return "unknown item ids: " + strings.Join(e.IDs, ", ")
}

// Is reports whether target is ErrUnknownItem.
func (e *UnknownItemError) Is(target error) bool {
	return target == ErrUnknownItem
}
