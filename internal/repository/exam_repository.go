package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-portal-api/internal/models"
)

// ExamRepository reads exam types and raw exam marks. The grading
// pipeline never writes either; exam entry owns them.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindExamType returns an exam type by id, scoped to a college.
func (r *ExamRepository) FindExamType(ctx context.Context, id, collegeID string) (*models.ExamType, error) {
	const query = `SELECT id, name, total_marks, college_id, created_at
        FROM exam_types WHERE id = $1 AND college_id = $2`
	var examType models.ExamType
	if err := r.db.GetContext(ctx, &examType, query, id, collegeID); err != nil {
		return nil, fmt.Errorf("find exam type: %w", err)
	}
	return &examType, nil
}

// LatestSemesterExamType returns the most recently created exam type
// whose name contains "semester". Creation-time ties break on id so the
// selection stays deterministic.
func (r *ExamRepository) LatestSemesterExamType(ctx context.Context, collegeID string) (*models.ExamType, error) {
	const query = `SELECT id, name, total_marks, college_id, created_at
        FROM exam_types
        WHERE college_id = $1 AND name ILIKE '%semester%'
        ORDER BY created_at DESC, id DESC
        LIMIT 1`
	var examType models.ExamType
	if err := r.db.GetContext(ctx, &examType, query, collegeID); err != nil {
		return nil, fmt.Errorf("latest semester exam type: %w", err)
	}
	return &examType, nil
}

// ListMarks returns every mark recorded for a batch subject under an exam type.
func (r *ExamRepository) ListMarks(ctx context.Context, examTypeID, batchSubjectID string) ([]models.ExamMark, error) {
	const query = `SELECT id, exam_type_id, student_id, batch_subject_id, achieved_marks,
        was_absent, debarred, malpractice, created_at
        FROM exam_marks
        WHERE exam_type_id = $1 AND batch_subject_id = $2`
	var marks []models.ExamMark
	if err := r.db.SelectContext(ctx, &marks, query, examTypeID, batchSubjectID); err != nil {
		return nil, fmt.Errorf("list exam marks: %w", err)
	}
	return marks, nil
}
