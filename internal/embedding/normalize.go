// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package embedding

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputRunes caps the normalised query length.
const DefaultMaxInputRunes = 512

// Normalize prepares query text for the model: surrounding whitespace is
// trimmed, letters are lower-cased, internal whitespace runs collapse to one
// space and the result is cut to maxRunes runes. maxRunes <= 0 disables the
// cap.
func Normalize(text string, maxRunes int) string {
	s := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if maxRunes > 0 && utf8.RuneCountInString(s) > maxRunes {
		s = strings.TrimSpace(string([]rune(s)[:maxRunes]))
	}
	return s
}
