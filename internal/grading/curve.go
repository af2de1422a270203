package grading

import "math"

// CurveFactor returns the multiplier that maps the maximum of the observed
// numeric scores onto the target ceiling. The second return is false when
// curving is a no-op: no numeric scores, or a non-positive maximum.
func CurveFactor(scores []float64, target float64) (float64, bool) {
	if len(scores) == 0 {
		return 1, false
	}

	maxScore := scores[0]
	for _, score := range scores[1:] {
		if score > maxScore {
			maxScore = score
		}
	}

	if maxScore <= 0 {
		return 1, false
	}

	return target / maxScore, true
}

// CurveScore rescales one score by the curve factor, rounded to one decimal
// place to keep the response stable across float noise.
func CurveScore(score, factor float64) float64 {
	return math.Round(score*factor*10) / 10
}
