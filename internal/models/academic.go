package models

import "time"

// College is the tenant boundary; every academic entity hangs off one.
type College struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Semester is an academic term within a college's program calendar.
// Number is the ordinal position (1-based) used for CGPA roll-ups.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Number    int       `db:"number" json:"number"`
	CollegeID string    `db:"college_id" json:"college_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Student is an enrolled learner belonging to a college.
type Student struct {
	ID               string    `db:"id" json:"id"`
	FullName         string    `db:"full_name" json:"full_name"`
	EnrollmentNumber string    `db:"enrollment_number" json:"enrollment_number"`
	CollegeID        string    `db:"college_id" json:"college_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Batch is a cohort of students enrolled together for a term.
type Batch struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CollegeID  string    `db:"college_id" json:"college_id"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	SemesterName   string `db:"semester_name" json:"semester_name,omitempty"`
	SemesterNumber int    `db:"semester_number" json:"semester_number,omitempty"`
}

// StudentBatch records a student's membership in a batch.
type StudentBatch struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`

	StudentName      string `db:"student_name" json:"student_name,omitempty"`
	EnrollmentNumber string `db:"enrollment_number" json:"enrollment_number,omitempty"`
}

// ClassType distinguishes the grading threshold table a subject uses.
type ClassType string

const (
	ClassTypeTheory    ClassType = "THEORY"
	ClassTypePractical ClassType = "PRACTICAL"
	ClassTypeBoth      ClassType = "BOTH"
)

// Subject is a course of study offered by a college.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CollegeID string    `db:"college_id" json:"college_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BatchSubject is a subject as offered within a specific batch, carrying
// its own credit and class type.
type BatchSubject struct {
	ID          string    `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	ClassType   ClassType `db:"class_type" json:"class_type"`
	CreditScore float64   `db:"credit_score" json:"credit_score"`

	SubjectName string `db:"subject_name" json:"subject_name,omitempty"`
	SubjectCode string `db:"subject_code" json:"subject_code,omitempty"`
}
