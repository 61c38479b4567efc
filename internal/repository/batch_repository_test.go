package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBatchRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "college_id", "semester_id", "created_at", "semester_name", "semester_number"}).
		AddRow("batch-1", "CSE 2023", "college-1", "sem-3", time.Now(), "Semester III", 3)
	mock.ExpectQuery("SELECT b.id, b.name, b.college_id, b.semester_id").
		WithArgs("batch-1", "college-1").
		WillReturnRows(rows)

	batch, err := repo.FindByID(context.Background(), "batch-1", "college-1")
	require.NoError(t, err)
	assert.Equal(t, "CSE 2023", batch.Name)
	assert.Equal(t, 3, batch.SemesterNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryListSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	rows := sqlmock.NewRows([]string{"id", "batch_id", "subject_id", "class_type", "credit_score", "subject_name", "subject_code"}).
		AddRow("bs-1", "batch-1", "sub-1", "THEORY", 4.0, "Data Structures", "CS201").
		AddRow("bs-2", "batch-1", "sub-2", "PRACTICAL", 2.0, "Data Structures Lab", "CS201L")
	mock.ExpectQuery("SELECT bs.id, bs.batch_id, bs.subject_id, bs.class_type").
		WithArgs("batch-1").
		WillReturnRows(rows)

	subjects, err := repo.ListSubjects(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, models.ClassTypeTheory, subjects[0].ClassType)
	assert.Equal(t, 2.0, subjects[1].CreditScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryListMembers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "batch_id", "joined_at", "student_name", "enrollment_number"}).
		AddRow("sb-1", "stu-1", "batch-1", time.Now(), "Asha Verma", "EN-001")
	mock.ExpectQuery("SELECT sb.id, sb.student_id, sb.batch_id").
		WithArgs("batch-1").
		WillReturnRows(rows)

	members, err := repo.ListMembers(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "EN-001", members[0].EnrollmentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
