package models

import "time"

// ExamType categorises an assessment (e.g. "Semester Exam") with a
// total-marks ceiling raw scores are rescaled against.
type ExamType struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	TotalMarks float64   `db:"total_marks" json:"total_marks"`
	CollegeID  string    `db:"college_id" json:"college_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ExamMark is a student's raw achieved score for a batch subject under a
// given exam type. Unique per (exam_type, student, batch_subject).
type ExamMark struct {
	ID             string    `db:"id" json:"id"`
	ExamTypeID     string    `db:"exam_type_id" json:"exam_type_id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	BatchSubjectID string    `db:"batch_subject_id" json:"batch_subject_id"`
	AchievedMarks  float64   `db:"achieved_marks" json:"achieved_marks"`
	WasAbsent      bool      `db:"was_absent" json:"was_absent"`
	Debarred       bool      `db:"debarred" json:"debarred"`
	Malpractice    bool      `db:"malpractice" json:"malpractice"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
