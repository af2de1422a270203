package grading

import "time"

const (
	secondsPerDay = 86400.0
	minutesPerDay = 1440.0
)

// LatePolicy is an assignment's per-day deduction configuration.
type LatePolicy struct {
	PercentPerDay float64
	GraceMinutes  int
}

// Enabled reports whether the policy deducts anything at all.
func (p LatePolicy) Enabled() bool {
	return p.PercentPerDay > 0
}

// LateResult describes the outcome of applying a late policy to a raw score.
type LateResult struct {
	AdjustedScore float64
	Deduction     float64
	DaysLate      float64
}

// DaysLate returns the fractional days between the due date and the
// submission. Missing timestamps or on-time submissions yield zero; late
// evaluation never fails a request.
func DaysLate(due, submitted *time.Time) float64 {
	if due == nil || submitted == nil {
		return 0
	}

	delta := submitted.Sub(*due).Seconds() / secondsPerDay
	if delta < 0 {
		return 0
	}
	return delta
}

// Apply deducts points for a late submission. The grace window shifts the
// deduction start, the deduction grows linearly per day, and it is capped at
// the raw score so the adjusted score never goes negative.
func (p LatePolicy) Apply(rawScore, ceiling, daysLate float64) LateResult {
	result := LateResult{AdjustedScore: rawScore, DaysLate: daysLate}
	if !p.Enabled() || daysLate <= 0 {
		return result
	}

	graceDays := float64(p.GraceMinutes) / minutesPerDay
	effectiveDays := daysLate - graceDays
	if effectiveDays <= 0 {
		return result
	}

	deduction := ceiling * (effectiveDays * p.PercentPerDay) / 100.0
	if deduction > rawScore {
		deduction = rawScore
	}

	result.Deduction = deduction
	result.AdjustedScore = rawScore - deduction
	return result
}
