package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-portal-api/internal/models"
)

// BatchRepository reads batch cohorts, their subjects and memberships.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new batch repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByID returns the batch with its semester, scoped to a college.
func (r *BatchRepository) FindByID(ctx context.Context, batchID, collegeID string) (*models.Batch, error) {
	const query = `SELECT b.id, b.name, b.college_id, b.semester_id, b.created_at,
        s.name AS semester_name, s.number AS semester_number
        FROM batches b
        JOIN semesters s ON s.id = b.semester_id
        WHERE b.id = $1 AND b.college_id = $2`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, batchID, collegeID); err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	return &batch, nil
}

// ListSubjects returns every batch subject with its subject info.
func (r *BatchRepository) ListSubjects(ctx context.Context, batchID string) ([]models.BatchSubject, error) {
	const query = `SELECT bs.id, bs.batch_id, bs.subject_id, bs.class_type, bs.credit_score,
        sub.name AS subject_name, sub.code AS subject_code
        FROM batch_subjects bs
        JOIN subjects sub ON sub.id = bs.subject_id
        WHERE bs.batch_id = $1
        ORDER BY sub.code ASC`
	var subjects []models.BatchSubject
	if err := r.db.SelectContext(ctx, &subjects, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch subjects: %w", err)
	}
	return subjects, nil
}

// ListMembers returns every student enrolled in the batch.
func (r *BatchRepository) ListMembers(ctx context.Context, batchID string) ([]models.StudentBatch, error) {
	const query = `SELECT sb.id, sb.student_id, sb.batch_id, sb.joined_at,
        st.full_name AS student_name, st.enrollment_number
        FROM student_batches sb
        JOIN students st ON st.id = sb.student_id
        WHERE sb.batch_id = $1
        ORDER BY st.enrollment_number ASC`
	var members []models.StudentBatch
	if err := r.db.SelectContext(ctx, &members, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch members: %w", err)
	}
	return members, nil
}
