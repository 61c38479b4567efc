package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/college-portal-api/internal/grading"
	"github.com/campushq/college-portal-api/internal/models"
	appErrors "github.com/campushq/college-portal-api/pkg/errors"
)

type batchReader interface {
	FindByID(ctx context.Context, batchID, collegeID string) (*models.Batch, error)
	ListSubjects(ctx context.Context, batchID string) ([]models.BatchSubject, error)
	ListMembers(ctx context.Context, batchID string) ([]models.StudentBatch, error)
}

type examReader interface {
	FindExamType(ctx context.Context, id, collegeID string) (*models.ExamType, error)
	LatestSemesterExamType(ctx context.Context, collegeID string) (*models.ExamType, error)
	ListMarks(ctx context.Context, examTypeID, batchSubjectID string) ([]models.ExamMark, error)
}

type gradeCardStore interface {
	ListByBatch(ctx context.Context, batchID, collegeID string) ([]models.StudentGradeCard, error)
	GetCard(ctx context.Context, studentID, semesterID, collegeID string) (*models.StudentGradeCard, error)
	ListDetails(ctx context.Context, cardIDs []string) ([]models.SubjectGradeDetail, error)
	PriorCardTotals(ctx context.Context, studentID string, beforeSemester int) (float64, float64, error)
	ApplyExternalMarks(ctx context.Context, updates []models.ExternalMarkUpdate) error
	ApplyGradeResults(ctx context.Context, details []models.GradeDetailResult, cards []models.GradeCardResult) error
}

type batchLocker interface {
	Acquire(ctx context.Context, batchID string) (func(), error)
}

// CalculateExternalRequest scopes an external-mark derivation run.
// ExamTypeID pins the semester exam explicitly; when empty the most
// recently created "semester"-named exam type is used.
type CalculateExternalRequest struct {
	BatchID    string `json:"batch_id" validate:"required"`
	ExamTypeID string `json:"exam_type_id"`
}

// GenerateGradeDetailsRequest scopes a grade computation run.
type GenerateGradeDetailsRequest struct {
	BatchID string `json:"batch_id" validate:"required"`
}

// GradeCardService owns the grade-card pipeline: deriving external marks
// from raw exam scores, computing per-subject grades and per-card GPA,
// and rolling earlier semesters up into CGPA. Every batch operation is
// two-phase: all validation errors are collected up front and nothing is
// written unless the whole batch validates.
type GradeCardService struct {
	batches   batchReader
	exams     examReader
	cards     gradeCardStore
	locks     batchLocker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeCardService constructs GradeCardService.
func NewGradeCardService(batches batchReader, exams examReader, cards gradeCardStore, locks batchLocker, validate *validator.Validate, logger *zap.Logger) *GradeCardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeCardService{
		batches:   batches,
		exams:     exams,
		cards:     cards,
		locks:     locks,
		validator: validate,
		logger:    logger,
	}
}

// CalculateExternal derives the 70-point external mark for every
// (student, subject) pair in the batch and writes it onto the matching
// subject detail rows. Any missing prerequisite anywhere in the batch
// aborts the whole run with the full error list and zero writes.
func (s *GradeCardService) CalculateExternal(ctx context.Context, collegeID string, req CalculateExternalRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	release, err := s.locks.Acquire(ctx, req.BatchID)
	if err != nil {
		return err
	}
	defer release()

	batch, err := s.batches.FindByID(ctx, req.BatchID, collegeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	subjects, err := s.batches.ListSubjects(ctx, req.BatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch subjects")
	}
	if len(subjects) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no subjects found for batch")
	}

	examType, err := s.resolveExamType(ctx, collegeID, req.ExamTypeID)
	if err != nil {
		return err
	}

	members, err := s.batches.ListMembers(ctx, req.BatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch members")
	}

	cards, err := s.cards.ListByBatch(ctx, req.BatchID, collegeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade cards")
	}
	// a student can hold cards from earlier terms of the same batch;
	// only the card on the batch's current semester is a valid target
	cardByStudent := make(map[string]models.StudentGradeCard, len(cards))
	cardIDs := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.SemesterID != batch.SemesterID {
			continue
		}
		cardByStudent[card.StudentID] = card
		cardIDs = append(cardIDs, card.ID)
	}
	details, err := s.cards.ListDetails(ctx, cardIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade details")
	}
	detailByKey := make(map[string]models.SubjectGradeDetail, len(details))
	for _, d := range details {
		detailByKey[d.StudentGradeCardID+"/"+d.BatchSubjectID] = d
	}

	var validationErrs []string
	var updates []models.ExternalMarkUpdate

	for _, subject := range subjects {
		if examType == nil {
			validationErrs = append(validationErrs, fmt.Sprintf("No semester exam found for %s", subject.SubjectName))
			continue
		}
		if examType.TotalMarks <= 0 {
			validationErrs = append(validationErrs, fmt.Sprintf("Exam type %s has no total marks configured for %s", examType.Name, subject.SubjectName))
			continue
		}
		marks, err := s.exams.ListMarks(ctx, examType.ID, subject.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam marks")
		}
		markByStudent := make(map[string]models.ExamMark, len(marks))
		for _, m := range marks {
			markByStudent[m.StudentID] = m
		}
		for _, member := range members {
			mark, ok := markByStudent[member.StudentID]
			if !ok {
				validationErrs = append(validationErrs,
					fmt.Sprintf("Missing semester exam marks for student %s %s in %s", member.StudentName, member.EnrollmentNumber, subject.SubjectName))
				continue
			}
			card, ok := cardByStudent[member.StudentID]
			if !ok {
				validationErrs = append(validationErrs,
					fmt.Sprintf("Grade card not found for student %s %s for %s, %s", member.StudentName, member.EnrollmentNumber, batch.SemesterName, subject.SubjectName))
				continue
			}
			detail, ok := detailByKey[card.ID+"/"+subject.ID]
			if !ok || detail.InternalMarks == nil {
				validationErrs = append(validationErrs,
					fmt.Sprintf("Internal mark missing for student %s %s for Batch Subject %s", member.StudentName, member.EnrollmentNumber, subject.SubjectName))
				continue
			}
			updates = append(updates, models.ExternalMarkUpdate{
				DetailID:      detail.ID,
				ExternalMarks: grading.ExternalMarks(mark.AchievedMarks, examType.TotalMarks),
			})
		}
	}

	if len(validationErrs) > 0 {
		return appErrors.WithDetails(appErrors.ErrValidation, "external mark derivation failed", validationErrs)
	}
	if err := s.cards.ApplyExternalMarks(ctx, updates); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply external marks")
	}
	s.logger.Sugar().Infow("external marks derived", "batch_id", req.BatchID, "updates", len(updates))
	return nil
}

// GenerateGradeDetails computes grade, grade point and quality point for
// every subject detail row under the batch's grade cards, aggregates
// each card's GPA, and rolls prior semesters up into CGPA for cards
// beyond semester one. All-or-nothing: one bad row anywhere blocks the
// entire batch.
func (s *GradeCardService) GenerateGradeDetails(ctx context.Context, collegeID string, req GenerateGradeDetailsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	release, err := s.locks.Acquire(ctx, req.BatchID)
	if err != nil {
		return err
	}
	defer release()

	cards, err := s.cards.ListByBatch(ctx, req.BatchID, collegeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade cards")
	}
	if len(cards) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no grade cards found for batch")
	}
	cardIDs := make([]string, 0, len(cards))
	for _, card := range cards {
		cardIDs = append(cardIDs, card.ID)
	}
	details, err := s.cards.ListDetails(ctx, cardIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade details")
	}
	detailsByCard := make(map[string][]models.SubjectGradeDetail, len(cards))
	for _, d := range details {
		detailsByCard[d.StudentGradeCardID] = append(detailsByCard[d.StudentGradeCardID], d)
	}

	var validationErrs []string
	var detailResults []models.GradeDetailResult
	var cardResults []models.GradeCardResult

	for _, card := range cards {
		totalCredit := 0.0
		totalQuality := 0.0
		for _, detail := range detailsByCard[card.ID] {
			if detail.InternalMarks == nil || detail.ExternalMarks == nil {
				validationErrs = append(validationErrs,
					fmt.Sprintf("Missing internal or external marks for student %s in subject %s", card.StudentName, detail.SubjectName))
				continue
			}
			total := *detail.InternalMarks + *detail.ExternalMarks
			result := grading.Grade(total, detail.ClassType == models.ClassTypePractical)
			quality := grading.QualityPoint(detail.Credit, result.GradePoint)
			detailResults = append(detailResults, models.GradeDetailResult{
				DetailID:     detail.ID,
				Grade:        result.Grade,
				GradePoint:   result.GradePoint,
				QualityPoint: quality,
			})
			totalCredit += detail.Credit
			totalQuality += quality
		}

		cardResult := models.GradeCardResult{
			CardID:            card.ID,
			TotalGradedCredit: totalCredit,
			TotalQualityPoint: totalQuality,
			GPA:               grading.PointAverage(totalQuality, totalCredit),
		}
		if card.SemesterNumber > 1 {
			priorCredit, priorQuality, err := s.cards.PriorCardTotals(ctx, card.StudentID, card.SemesterNumber)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prior semester totals")
			}
			cgpa := grading.PointAverage(totalQuality+priorQuality, totalCredit+priorCredit)
			cardResult.CGPA = &cgpa
		}
		cardResults = append(cardResults, cardResult)
	}

	if len(validationErrs) > 0 {
		return appErrors.WithDetails(appErrors.ErrValidation, "grade computation failed", validationErrs)
	}
	if err := s.cards.ApplyGradeResults(ctx, detailResults, cardResults); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply grade results")
	}
	s.logger.Sugar().Infow("grade details generated", "batch_id", req.BatchID, "cards", len(cardResults))
	return nil
}

// StudentCard returns a student's grade card with its subject rows.
func (s *GradeCardService) StudentCard(ctx context.Context, collegeID, studentID, semesterID string) (*models.StudentGradeCardView, error) {
	if semesterID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester_id is required")
	}
	card, err := s.cards.GetCard(ctx, studentID, semesterID, collegeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade card not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade card")
	}
	subjects, err := s.cards.ListDetails(ctx, []string{card.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade details")
	}
	return &models.StudentGradeCardView{Card: *card, Subjects: subjects}, nil
}

// BatchGradeSheet assembles the computed grade rows for a whole batch,
// used by the export pipeline.
func (s *GradeCardService) BatchGradeSheet(ctx context.Context, collegeID, batchID string) ([]models.StudentGradeCardView, error) {
	cards, err := s.cards.ListByBatch(ctx, batchID, collegeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade cards")
	}
	if len(cards) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no grade cards found for batch")
	}
	cardIDs := make([]string, 0, len(cards))
	for _, card := range cards {
		cardIDs = append(cardIDs, card.ID)
	}
	details, err := s.cards.ListDetails(ctx, cardIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade details")
	}
	detailsByCard := make(map[string][]models.SubjectGradeDetail, len(cards))
	for _, d := range details {
		detailsByCard[d.StudentGradeCardID] = append(detailsByCard[d.StudentGradeCardID], d)
	}
	views := make([]models.StudentGradeCardView, 0, len(cards))
	for _, card := range cards {
		views = append(views, models.StudentGradeCardView{Card: card, Subjects: detailsByCard[card.ID]})
	}
	return views, nil
}

func (s *GradeCardService) resolveExamType(ctx context.Context, collegeID, examTypeID string) (*models.ExamType, error) {
	if examTypeID != "" {
		examType, err := s.exams.FindExamType(ctx, examTypeID, collegeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "exam type not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam type")
		}
		return examType, nil
	}
	examType, err := s.exams.LatestSemesterExamType(ctx, collegeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// no exam type is a per-subject validation error, not a hard stop
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve semester exam type")
	}
	return examType, nil
}
