package controller

import (
	"errors"

	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	ExamService *service.ExamService
}

func NewGradeController(examService *service.ExamService) *GradeController {
	return &GradeController{ExamService: examService}
}

// ListPendingManual godoc
// @Summary Sessions of an exam with answers awaiting manual grading
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/pending-grading [get]
func (c *GradeController) ListPendingManual(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	sessions, err := c.ExamService.PendingManual(examID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// swagger:model ManualGradeRequest
type ManualGradeRequest struct {
	Points  float64 `json:"points"`
	Comment string  `json:"comment"`
}

// GradeAnswer godoc
// @Summary Record a manual grade for the human-graded portion of an answer
// @Tags grading
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "answer id"
// @Param body body ManualGradeRequest true "awarded points and optional comment"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/answers/{answerId}/grade [post]
func (c *GradeController) GradeAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	answerID, ok := util.ParseID(ctx.Param("answerId"))
	if !ok {
		util.BadRequest(ctx, "invalid answer id")
		return
	}
	var req ManualGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.ExamService.ManualGradeAnswer(claims.UserID, answerID, req.Points, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAnswerNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAnswerNotGradable):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, answer)
}
