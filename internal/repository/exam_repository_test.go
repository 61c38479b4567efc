package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamRepositoryLatestSemesterExamType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "total_marks", "college_id", "created_at"}).
		AddRow("et-2", "Semester Exam 2024", 100.0, "college-1", time.Now())
	mock.ExpectQuery("SELECT id, name, total_marks, college_id, created_at").
		WithArgs("college-1").
		WillReturnRows(rows)

	examType, err := repo.LatestSemesterExamType(context.Background(), "college-1")
	require.NoError(t, err)
	assert.Equal(t, "et-2", examType.ID)
	assert.Equal(t, 100.0, examType.TotalMarks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListMarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "exam_type_id", "student_id", "batch_subject_id", "achieved_marks", "was_absent", "debarred", "malpractice", "created_at"}).
		AddRow("em-1", "et-2", "stu-1", "bs-1", 70.0, false, false, false, time.Now()).
		AddRow("em-2", "et-2", "stu-2", "bs-1", 45.5, false, false, false, time.Now())
	mock.ExpectQuery("SELECT id, exam_type_id, student_id, batch_subject_id").
		WithArgs("et-2", "bs-1").
		WillReturnRows(rows)

	marks, err := repo.ListMarks(context.Background(), "et-2", "bs-1")
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, 45.5, marks[1].AchievedMarks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
