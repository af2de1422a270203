// Package grading holds the pure score computations behind the gradebook and
// quiz endpoints: score-string parsing, late-policy deductions and curve
// scaling. Everything here is deterministic and side-effect free.
package grading

import (
	"strconv"
	"strings"
	"time"
)

// ScoreKind discriminates the parsed form of a stored score string.
type ScoreKind int

const (
	// ScoreUnset means no score has been recorded.
	ScoreUnset ScoreKind = iota
	// ScoreNumeric means the score parsed as a number.
	ScoreNumeric
	// ScoreLetter means a non-numeric grade such as "A-" or "Pass".
	ScoreLetter
)

// Score is the tagged value a submission's score string parses into. Keeping
// the three cases explicit avoids treating "ungraded" and "non-numeric" as
// the same silent parse failure.
type Score struct {
	Kind    ScoreKind
	Value   float64
	Letter  string
}

// ParseScore converts a stored score string into a Score. A nil or blank
// string is Unset; anything that does not parse as a float is a letter grade.
func ParseScore(raw *string) Score {
	if raw == nil {
		return Score{Kind: ScoreUnset}
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return Score{Kind: ScoreUnset}
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Score{Kind: ScoreLetter, Letter: trimmed}
	}

	return Score{Kind: ScoreNumeric, Value: value}
}

// Numeric returns the numeric value and whether one exists.
func (s Score) Numeric() (float64, bool) {
	if s.Kind != ScoreNumeric {
		return 0, false
	}
	return s.Value, true
}

// ParseTime parses an ISO-8601 timestamp leniently, accepting RFC 3339 and
// the zone-less variant clients commonly send. A malformed value yields nil
// so one bad row never fails a whole gradebook view.
func ParseTime(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}

	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return &parsed
		}
	}

	return nil
}
