package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurveFactorNoScoresIsNoop(t *testing.T) {
	_, ok := CurveFactor(nil, 100)
	require.False(t, ok)
}

func TestCurveFactorZeroMaxIsNoop(t *testing.T) {
	_, ok := CurveFactor([]float64{0, 0}, 100)
	require.False(t, ok)
}

func TestCurveFactorScalesMaxToCeiling(t *testing.T) {
	factor, ok := CurveFactor([]float64{42, 80, 61.5}, 100)
	require.True(t, ok)
	require.InDelta(t, 1.25, factor, 1e-9)

	require.Equal(t, 100.0, CurveScore(80, factor))
	require.Equal(t, 75.0, CurveScore(60, factor))
}

func TestCurveScoreRoundsToOneDecimal(t *testing.T) {
	factor, ok := CurveFactor([]float64{90}, 100)
	require.True(t, ok)
	require.Equal(t, 74.1, CurveScore(66.7, factor))
}
