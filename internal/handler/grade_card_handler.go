package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/college-portal-api/internal/models"
	"github.com/campushq/college-portal-api/internal/service"
	appErrors "github.com/campushq/college-portal-api/pkg/errors"
	"github.com/campushq/college-portal-api/pkg/response"
)

type gradeCardOperator interface {
	CalculateExternal(ctx context.Context, collegeID string, req service.CalculateExternalRequest) error
	GenerateGradeDetails(ctx context.Context, collegeID string, req service.GenerateGradeDetailsRequest) error
	StudentCard(ctx context.Context, collegeID, studentID, semesterID string) (*models.StudentGradeCardView, error)
}

// GradeCardHandler exposes the grade-card pipeline endpoints.
type GradeCardHandler struct {
	gradeCards gradeCardOperator
	metrics    *service.MetricsService
}

// NewGradeCardHandler constructs handler. Metrics may be nil in tests.
func NewGradeCardHandler(gradeCards gradeCardOperator, metrics *service.MetricsService) *GradeCardHandler {
	return &GradeCardHandler{gradeCards: gradeCards, metrics: metrics}
}

func (h *GradeCardHandler) observeRun(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrValidation.Code {
			outcome = "validation_failed"
		}
	}
	h.metrics.ObserveGradingRun(operation, outcome, time.Since(start))
}

// CalculateExternal godoc
// @Summary Derive external marks for a batch
// @Tags GradeCards
// @Accept json
// @Produce json
// @Param payload body service.CalculateExternalRequest true "Batch scope"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grade-card/calculate-external [post]
func (h *GradeCardHandler) CalculateExternal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CalculateExternalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	start := time.Now()
	err := h.gradeCards.CalculateExternal(c.Request.Context(), claims.CollegeID, req)
	h.observeRun("calculate_external", start, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "External marks calculated successfully")
}

// GenerateGradeDetails godoc
// @Summary Compute grades, GPA and CGPA for a batch
// @Tags GradeCards
// @Accept json
// @Produce json
// @Param payload body service.GenerateGradeDetailsRequest true "Batch scope"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grade-card/generate-grade-details [post]
func (h *GradeCardHandler) GenerateGradeDetails(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.GenerateGradeDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	start := time.Now()
	err := h.gradeCards.GenerateGradeDetails(c.Request.Context(), claims.CollegeID, req)
	h.observeRun("generate_grade_details", start, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Grade details generated successfully")
}

// StudentCard godoc
// @Summary Fetch a student's grade card with subject rows
// @Tags GradeCards
// @Produce json
// @Param studentId path string true "Student ID"
// @Param semester_id query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grade-card/{studentId} [get]
func (h *GradeCardHandler) StudentCard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.gradeCards.StudentCard(c.Request.Context(), claims.CollegeID, c.Param("studentId"), c.Query("semester_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
