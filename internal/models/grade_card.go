package models

import "time"

// StudentGradeCard holds a student's per-semester aggregates. Cards are
// created by the admissions flow ahead of grading; the grading pipeline
// only ever mutates existing cards.
type StudentGradeCard struct {
	ID                string     `db:"id" json:"id"`
	StudentID         string     `db:"student_id" json:"student_id"`
	BatchID           string     `db:"batch_id" json:"batch_id"`
	SemesterID        string     `db:"semester_id" json:"semester_id"`
	TotalGradedCredit *float64   `db:"total_graded_credit" json:"total_graded_credit,omitempty"`
	TotalQualityPoint *float64   `db:"total_quality_point" json:"total_quality_point,omitempty"`
	GPA               *float64   `db:"gpa" json:"gpa,omitempty"`
	CGPA              *float64   `db:"cgpa" json:"cgpa,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`

	SemesterName     string `db:"semester_name" json:"semester_name,omitempty"`
	SemesterNumber   int    `db:"semester_number" json:"semester_number,omitempty"`
	StudentName      string `db:"student_name" json:"student_name,omitempty"`
	EnrollmentNumber string `db:"enrollment_number" json:"enrollment_number,omitempty"`
}

// SubjectGradeDetail is one per-subject row under a grade card. Internal
// marks are populated by the internal-assessment flow before derivation;
// external marks, grade, grade point and quality point are written by the
// grading pipeline.
type SubjectGradeDetail struct {
	ID                 string   `db:"id" json:"id"`
	StudentGradeCardID string   `db:"student_grade_card_id" json:"student_grade_card_id"`
	BatchSubjectID     string   `db:"batch_subject_id" json:"batch_subject_id"`
	Credit             float64  `db:"credit" json:"credit"`
	InternalMarks      *float64 `db:"internal_marks" json:"internal_marks,omitempty"`
	ExternalMarks      *float64 `db:"external_marks" json:"external_marks,omitempty"`
	Grade              *string  `db:"grade" json:"grade,omitempty"`
	GradePoint         *int     `db:"grade_point" json:"grade_point,omitempty"`
	QualityPoint       *float64 `db:"quality_point" json:"quality_point,omitempty"`

	ClassType   ClassType `db:"class_type" json:"class_type,omitempty"`
	SubjectName string    `db:"subject_name" json:"subject_name,omitempty"`
}

// ExternalMarkUpdate is a computed external-mark write staged during the
// validation phase of calculate-external.
type ExternalMarkUpdate struct {
	DetailID      string
	ExternalMarks float64
}

// GradeDetailResult stages a per-subject grade computation for commit.
type GradeDetailResult struct {
	DetailID     string
	Grade        string
	GradePoint   int
	QualityPoint float64
}

// GradeCardResult stages a card's aggregate computation for commit. CGPA
// is nil for first-semester cards, which never receive one.
type GradeCardResult struct {
	CardID            string
	TotalGradedCredit float64
	TotalQualityPoint float64
	GPA               float64
	CGPA              *float64
}

// StudentGradeCardView is the read model returned by the card endpoint
// and consumed by the grade-sheet exporters.
type StudentGradeCardView struct {
	Card     StudentGradeCard     `json:"card"`
	Subjects []SubjectGradeDetail `json:"subjects"`
}
