package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-portal-api/internal/models"
)

func TestGradeCardRepositoryListByBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "batch_id", "semester_id",
		"total_graded_credit", "total_quality_point", "gpa", "cgpa", "created_at", "updated_at",
		"semester_name", "semester_number", "student_name", "enrollment_number"}).
		AddRow("gc-1", "stu-1", "batch-1", "sem-2", nil, nil, nil, nil, time.Now(), nil, "Semester II", 2, "Asha Verma", "EN-001")
	mock.ExpectQuery("SELECT gc.id, gc.student_id, gc.batch_id, gc.semester_id").
		WithArgs("batch-1", "college-1").
		WillReturnRows(rows)

	cards, err := repo.ListByBatch(context.Background(), "batch-1", "college-1")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 2, cards[0].SemesterNumber)
	assert.Nil(t, cards[0].GPA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCardRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_grade_card_id", "batch_subject_id", "credit",
		"internal_marks", "external_marks", "grade", "grade_point", "quality_point", "class_type", "subject_name"}).
		AddRow("d-1", "gc-1", "bs-1", 4.0, 24.0, 49.0, nil, nil, nil, "THEORY", "Data Structures")
	mock.ExpectQuery("SELECT d.id, d.student_grade_card_id, d.batch_subject_id").
		WithArgs("gc-1").
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), []string{"gc-1"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].InternalMarks)
	assert.Equal(t, 24.0, *details[0].InternalMarks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCardRepositoryListDetailsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	details, err := repo.ListDetails(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestGradeCardRepositoryPriorCardTotals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	rows := sqlmock.NewRows([]string{"credit", "quality"}).AddRow(20.0, 140.0)
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("stu-1", 2).
		WillReturnRows(rows)

	credit, quality, err := repo.PriorCardTotals(context.Background(), "stu-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, credit)
	assert.Equal(t, 140.0, quality)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCardRepositoryApplyExternalMarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subject_grade_details SET external_marks").
		WithArgs(49.0, "d-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subject_grade_details SET external_marks").
		WithArgs(56.0, "d-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyExternalMarks(context.Background(), []models.ExternalMarkUpdate{
		{DetailID: "d-1", ExternalMarks: 49},
		{DetailID: "d-2", ExternalMarks: 56},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCardRepositoryApplyGradeResults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	cgpa := 7.0
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subject_grade_details").
		WithArgs("B", 8, 32.0, "d-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_grade_cards").
		WithArgs(18.0, 126.0, 7.0, cgpa, sqlmock.AnyArg(), "gc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyGradeResults(context.Background(),
		[]models.GradeDetailResult{{DetailID: "d-1", Grade: "B", GradePoint: 8, QualityPoint: 32}},
		[]models.GradeCardResult{{CardID: "gc-1", TotalGradedCredit: 18, TotalQualityPoint: 126, GPA: 7.0, CGPA: &cgpa}},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCardRepositoryApplyGradeResultsRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeCardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subject_grade_details").
		WithArgs("B", 8, 32.0, "d-1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ApplyGradeResults(context.Background(),
		[]models.GradeDetailResult{{DetailID: "d-1", Grade: "B", GradePoint: 8, QualityPoint: 32}},
		nil,
	)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
