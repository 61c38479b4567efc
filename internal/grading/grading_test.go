package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeTheoryBrackets(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		wantGrade string
		wantPoint int
	}{
		{"S lower bound", 90, "S", 10},
		{"just below S", 89.99, "A", 9},
		{"A band", 85, "A", 9},
		{"B lower bound", 70, "B", 8},
		{"C lower bound", 60, "C", 7},
		{"D lower bound", 50, "D", 6},
		{"E band", 49, "E", 5},
		{"E lower bound", 40, "E", 5},
		{"just below E", 39, "F", 0},
		{"zero", 0, "F", 0},
		{"perfect", 100, "S", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(tt.total, false)
			assert.Equal(t, tt.wantGrade, got.Grade)
			assert.Equal(t, tt.wantPoint, got.GradePoint)
		})
	}
}

func TestGradePracticalBrackets(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		wantGrade string
		wantPoint int
	}{
		{"S lower bound", 90, "S", 10},
		{"D lower bound", 55, "D", 6},
		{"E band", 54, "E", 5},
		{"E lower bound", 50, "E", 5},
		{"just below E", 49, "F", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(tt.total, true)
			assert.Equal(t, tt.wantGrade, got.Grade)
			assert.Equal(t, tt.wantPoint, got.GradePoint)
		})
	}
}

func TestExternalMarks(t *testing.T) {
	assert.Equal(t, 49.0, ExternalMarks(70, 100))
	assert.Equal(t, 70.0, ExternalMarks(100, 100))
	assert.Equal(t, 0.0, ExternalMarks(0, 100))
	// rounding at the midpoint: 55/100*70 = 38.5 -> 39
	assert.Equal(t, 39.0, ExternalMarks(55, 100))
}

func TestPointAverage(t *testing.T) {
	assert.Equal(t, 7.0, PointAverage(140, 20))
	assert.Equal(t, 7.0, PointAverage(266, 38))
	assert.Equal(t, 7.37, PointAverage(140.1, 19))
	// zero graded credit never divides
	assert.Equal(t, 0.0, PointAverage(0, 0))
	assert.Equal(t, 0.0, PointAverage(42, 0))
}

func TestQualityPoint(t *testing.T) {
	assert.Equal(t, 40.0, QualityPoint(4, 10))
	assert.Equal(t, 0.0, QualityPoint(4, 0))
	assert.Equal(t, 13.5, QualityPoint(1.5, 9))
}
