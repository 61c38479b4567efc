package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/college-portal-api/internal/models"
)

// GradeCardRepository persists grade cards and their subject detail rows.
// Cards are created by the admissions flow; this repository only reads
// and mutates them.
type GradeCardRepository struct {
	db *sqlx.DB
}

// NewGradeCardRepository creates a new grade card repository.
func NewGradeCardRepository(db *sqlx.DB) *GradeCardRepository {
	return &GradeCardRepository{db: db}
}

// ListByBatch returns every grade card for a batch, scoped to the
// caller's college through the owning student.
func (r *GradeCardRepository) ListByBatch(ctx context.Context, batchID, collegeID string) ([]models.StudentGradeCard, error) {
	const query = `SELECT gc.id, gc.student_id, gc.batch_id, gc.semester_id,
        gc.total_graded_credit, gc.total_quality_point, gc.gpa, gc.cgpa, gc.created_at, gc.updated_at,
        s.name AS semester_name, s.number AS semester_number,
        st.full_name AS student_name, st.enrollment_number
        FROM student_grade_cards gc
        JOIN semesters s ON s.id = gc.semester_id
        JOIN students st ON st.id = gc.student_id
        WHERE gc.batch_id = $1 AND st.college_id = $2
        ORDER BY st.enrollment_number ASC`
	var cards []models.StudentGradeCard
	if err := r.db.SelectContext(ctx, &cards, query, batchID, collegeID); err != nil {
		return nil, fmt.Errorf("list grade cards: %w", err)
	}
	return cards, nil
}

// GetCard returns a single student's card for a semester.
func (r *GradeCardRepository) GetCard(ctx context.Context, studentID, semesterID, collegeID string) (*models.StudentGradeCard, error) {
	const query = `SELECT gc.id, gc.student_id, gc.batch_id, gc.semester_id,
        gc.total_graded_credit, gc.total_quality_point, gc.gpa, gc.cgpa, gc.created_at, gc.updated_at,
        s.name AS semester_name, s.number AS semester_number,
        st.full_name AS student_name, st.enrollment_number
        FROM student_grade_cards gc
        JOIN semesters s ON s.id = gc.semester_id
        JOIN students st ON st.id = gc.student_id
        WHERE gc.student_id = $1 AND gc.semester_id = $2 AND st.college_id = $3`
	var card models.StudentGradeCard
	if err := r.db.GetContext(ctx, &card, query, studentID, semesterID, collegeID); err != nil {
		return nil, fmt.Errorf("get grade card: %w", err)
	}
	return &card, nil
}

// ListDetails returns the subject detail rows for the given cards along
// with each row's class type and subject name.
func (r *GradeCardRepository) ListDetails(ctx context.Context, cardIDs []string) ([]models.SubjectGradeDetail, error) {
	if len(cardIDs) == 0 {
		return []models.SubjectGradeDetail{}, nil
	}
	placeholders := make([]string, len(cardIDs))
	args := make([]interface{}, len(cardIDs))
	for i, id := range cardIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT d.id, d.student_grade_card_id, d.batch_subject_id, d.credit,
        d.internal_marks, d.external_marks, d.grade, d.grade_point, d.quality_point,
        bs.class_type, sub.name AS subject_name
        FROM subject_grade_details d
        JOIN batch_subjects bs ON bs.id = d.batch_subject_id
        JOIN subjects sub ON sub.id = bs.subject_id
        WHERE d.student_grade_card_id IN (%s)`, strings.Join(placeholders, ","))
	var details []models.SubjectGradeDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list grade details: %w", err)
	}
	return details, nil
}

// PriorCardTotals sums graded credit and quality point across a
// student's earlier-semester cards that already carry finalized totals.
func (r *GradeCardRepository) PriorCardTotals(ctx context.Context, studentID string, beforeSemester int) (credit, quality float64, err error) {
	const query = `SELECT COALESCE(SUM(gc.total_graded_credit), 0) AS credit,
        COALESCE(SUM(gc.total_quality_point), 0) AS quality
        FROM student_grade_cards gc
        JOIN semesters s ON s.id = gc.semester_id
        WHERE gc.student_id = $1 AND s.number < $2
          AND gc.total_graded_credit IS NOT NULL AND gc.total_quality_point IS NOT NULL`
	row := r.db.QueryRowxContext(ctx, query, studentID, beforeSemester)
	if err := row.Scan(&credit, &quality); err != nil {
		return 0, 0, fmt.Errorf("prior card totals: %w", err)
	}
	return credit, quality, nil
}

// ApplyExternalMarks writes every staged external mark in one transaction.
// Callers only reach this once the whole batch validated cleanly.
func (r *GradeCardRepository) ApplyExternalMarks(ctx context.Context, updates []models.ExternalMarkUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `UPDATE subject_grade_details SET external_marks = $1 WHERE id = $2`
	for _, u := range updates {
		if _, err := tx.ExecContext(ctx, query, u.ExternalMarks, u.DetailID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply external marks: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit external marks: %w", err)
	}
	return nil
}

// ApplyGradeResults commits a batch's computed grades atomically: every
// detail row's grade fields and every card's aggregates land together or
// not at all. A nil CGPA leaves the stored value untouched, which is how
// first-semester cards never receive one.
func (r *GradeCardRepository) ApplyGradeResults(ctx context.Context, details []models.GradeDetailResult, cards []models.GradeCardResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const detailQuery = `UPDATE subject_grade_details
        SET grade = $1, grade_point = $2, quality_point = $3 WHERE id = $4`
	for _, d := range details {
		if _, err := tx.ExecContext(ctx, detailQuery, d.Grade, d.GradePoint, d.QualityPoint, d.DetailID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply grade detail: %w", err)
		}
	}
	const cardQuery = `UPDATE student_grade_cards
        SET total_graded_credit = $1, total_quality_point = $2, gpa = $3,
            cgpa = COALESCE($4, cgpa), updated_at = $5
        WHERE id = $6`
	now := time.Now().UTC()
	for _, c := range cards {
		if _, err := tx.ExecContext(ctx, cardQuery, c.TotalGradedCredit, c.TotalQualityPoint, c.GPA, c.CGPA, now, c.CardID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply grade card: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade results: %w", err)
	}
	return nil
}
