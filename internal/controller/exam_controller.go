package controller

import (
	"errors"

	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService    *service.ExamService
	SessionService *service.SessionService
}

func NewExamController(examService *service.ExamService, sessionService *service.SessionService) *ExamController {
	return &ExamController{ExamService: examService, SessionService: sessionService}
}

// CreateExam godoc
// @Summary Create an exam with its questions
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamInput true "exam definition"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/teacher/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var in service.ExamInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.CreateExam(claims.UserID, &in)
	if err != nil {
		if errors.Is(err, util.ErrLevelNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, exam)
}

// UpdateExam godoc
// @Summary Update exam metadata and publication state
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.ExamInput true "exam definition"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	var in service.ExamInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.UpdateExam(examID, &in)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// GetExam godoc
// @Summary Exam with questions and answer keys
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	detail, err := c.ExamService.GetExam(examID, false)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ListByLevel godoc
// @Summary Exams of a curriculum level
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "level id"
// @Success 200 {object} util.Response
// @Router /api/teacher/levels/{id}/exams [get]
func (c *ExamController) ListByLevel(ctx *gin.Context) {
	levelID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid level id")
		return
	}
	exams, err := c.ExamService.ListByLevel(levelID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// AddQuestion godoc
// @Summary Append a question to an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.QuestionInput true "question definition"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams/{id}/questions [post]
func (c *ExamController) AddQuestion(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ExamService.AddQuestion(examID, &in)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Edit a question
// @Description Recorded grades do not move until a recalculation is requested explicitly.
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "question id"
// @Param body body service.QuestionInput true "question definition"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{questionId} [put]
func (c *ExamController) UpdateQuestion(ctx *gin.Context) {
	questionID, ok := util.ParseID(ctx.Param("questionId"))
	if !ok {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ExamService.UpdateQuestion(questionID, &in)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{questionId} [delete]
func (c *ExamController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := util.ParseID(ctx.Param("questionId"))
	if !ok {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	if err := c.ExamService.DeleteQuestion(questionID); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": questionID})
}

// Recalculate godoc
// @Summary Re-grade every session of an exam
// @Description Applies the current keys and point values to all recorded answers. Manual grades are preserved.
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/recalculate [post]
func (c *ExamController) Recalculate(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	count, err := c.SessionService.RecalculateSessions(examID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sessionsRecalculated": count})
}

// Stats godoc
// @Summary Attempt statistics of an exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/stats [get]
func (c *ExamController) Stats(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	stats, err := c.ExamService.Stats(examID)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
