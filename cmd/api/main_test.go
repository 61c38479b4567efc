package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/college-portal-api/internal/handler"
	"github.com/campushq/college-portal-api/internal/models"
	"github.com/campushq/college-portal-api/internal/service"
)

type stubGradeCardOperator struct{}

func (stubGradeCardOperator) CalculateExternal(ctx context.Context, collegeID string, req service.CalculateExternalRequest) error {
	return nil
}
func (stubGradeCardOperator) GenerateGradeDetails(ctx context.Context, collegeID string, req service.GenerateGradeDetailsRequest) error {
	return nil
}
func (stubGradeCardOperator) StudentCard(ctx context.Context, collegeID, studentID, semesterID string) (*models.StudentGradeCardView, error) {
	return &models.StudentGradeCardView{}, nil
}

type stubExportOperator struct {
	resultPath string
}

func (s *stubExportOperator) CreateJob(ctx context.Context, req service.ExportJobRequest, collegeID, actorID string) (*service.ExportJobResponse, error) {
	return &service.ExportJobResponse{}, nil
}
func (s *stubExportOperator) GetStatus(ctx context.Context, id, collegeID string) (*service.ExportStatusResponse, error) {
	return &service.ExportStatusResponse{}, nil
}
func (s *stubExportOperator) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	file, err := os.Open(s.resultPath)
	if err != nil {
		return nil, err
	}
	return &service.ExportDownload{
		File:      file,
		Filename:  filepath.Base(s.resultPath),
		Format:    models.ExportFormatCSV,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resultPath := filepath.Join(t.TempDir(), "grade_sheet.csv")
	require.NoError(t, os.WriteFile(resultPath, []byte("Enrollment No,Student\n"), 0o600))

	tokenSvc := service.NewTokenService("test-secret", nil)
	gradeCardHandler := handler.NewGradeCardHandler(stubGradeCardOperator{}, nil)
	exportHandler := handler.NewExportHandler(&stubExportOperator{resultPath: resultPath})

	r := gin.New()
	registerRoutes(r, "/api/v1", tokenSvc, gradeCardHandler, exportHandler)
	return r
}

func TestDownloadRouteSkipsBearerAuth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/grade-card/exports/download/some-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Enrollment No")
}

func TestGradeCardRoutesRequireBearerAuth(t *testing.T) {
	r := newTestRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/grade-card/calculate-external"},
		{http.MethodPost, "/api/v1/grade-card/generate-grade-details"},
		{http.MethodPost, "/api/v1/grade-card/exports"},
		{http.MethodGet, "/api/v1/grade-card/exports/job-1"},
		{http.MethodGet, "/api/v1/grade-card/stu-1"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}
