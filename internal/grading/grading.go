// Package grading holds the pure mark-to-grade arithmetic shared by the
// grade-card pipeline: external-mark rescaling, letter-grade threshold
// tables and credit-weighted grade-point aggregation.
package grading

import "math"

// ExternalMarksCeiling is the ceiling external marks are rescaled to.
// Internal marks carry the remaining 30 of the 100-point total.
const ExternalMarksCeiling = 70

// Result pairs a letter grade with its grade point.
type Result struct {
	Grade      string
	GradePoint int
}

// theory brackets: inclusive lower bounds, highest match wins.
var theoryBrackets = []struct {
	min    float64
	result Result
}{
	{90, Result{"S", 10}},
	{80, Result{"A", 9}},
	{70, Result{"B", 8}},
	{60, Result{"C", 7}},
	{50, Result{"D", 6}},
	{40, Result{"E", 5}},
}

// practical brackets are narrower at the D/E band than theory.
var practicalBrackets = []struct {
	min    float64
	result Result
}{
	{90, Result{"S", 10}},
	{80, Result{"A", 9}},
	{70, Result{"B", 8}},
	{60, Result{"C", 7}},
	{55, Result{"D", 6}},
	{50, Result{"E", 5}},
}

// Grade maps a total mark to a letter grade and grade point using the
// class-type specific bracket table. Anything below the lowest bracket
// fails with grade point 0. BOTH subjects use the theory table.
func Grade(total float64, practical bool) Result {
	brackets := theoryBrackets
	if practical {
		brackets = practicalBrackets
	}
	for _, b := range brackets {
		if total >= b.min {
			return b.result
		}
	}
	return Result{"F", 0}
}

// ExternalMarks rescales a raw achieved score to the 70-point external
// contribution, rounded to the nearest integer.
func ExternalMarks(achieved, totalMarks float64) float64 {
	return math.Round(achieved / totalMarks * ExternalMarksCeiling)
}

// QualityPoint is the credit-weighted grade point for one subject.
func QualityPoint(credit float64, gradePoint int) float64 {
	return credit * float64(gradePoint)
}

// PointAverage computes a credit-weighted grade-point average rounded to
// two decimals, guarding the zero-credit case.
func PointAverage(qualityPoint, gradedCredit float64) float64 {
	if gradedCredit <= 0 {
		return 0
	}
	return Round2(qualityPoint / gradedCredit)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
