package controller

import (
	"errors"
	"time"

	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const assetURLExpiry = 15 * time.Minute

type SessionController struct {
	SessionService *service.SessionService
	ExamService    *service.ExamService
	Storage        *service.StorageService
}

func NewSessionController(sessionService *service.SessionService, examService *service.ExamService, storage *service.StorageService) *SessionController {
	return &SessionController{
		SessionService: sessionService,
		ExamService:    examService,
		Storage:        storage,
	}
}

func (c *SessionController) owned(ctx *gin.Context) (uint, uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, 0, false
	}
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid session id")
		return 0, 0, false
	}
	return claims.UserID, id, true
}

// GetSession godoc
// @Summary Session with server-computed timer state
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/placement/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	userID, sessionID, ok := c.owned(ctx)
	if !ok {
		return
	}
	view, err := c.SessionService.GetSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetExam godoc
// @Summary Exam payload for an open session
// @Description Questions without answer keys; audio and PDF references come back as signed download URLs.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/placement/sessions/{id}/exam [get]
func (c *SessionController) GetExam(ctx *gin.Context) {
	userID, sessionID, ok := c.owned(ctx)
	if !ok {
		return
	}
	view, err := c.SessionService.GetSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	detail, err := c.ExamService.GetExam(view.Session.ExamID, true)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if url, err := c.Storage.PresignAsset(ctx.Request.Context(), detail.Exam.AudioURL, assetURLExpiry); err == nil {
		detail.Exam.AudioURL = url
	}
	if url, err := c.Storage.PresignAsset(ctx.Request.Context(), detail.Exam.PDFURL, assetURLExpiry); err == nil {
		detail.Exam.PDFURL = url
	}
	util.Success(ctx, detail)
}

// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	QuestionNumber int    `json:"questionNumber" binding:"required"`
	Answer         string `json:"answer"`
}

// SubmitAnswer godoc
// @Summary Submit or overwrite one answer
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Param body body SubmitAnswerRequest true "question number and raw answer"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/placement/sessions/{id}/answers [post]
func (c *SessionController) SubmitAnswer(ctx *gin.Context) {
	userID, sessionID, ok := c.owned(ctx)
	if !ok {
		return
	}
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.SessionService.SubmitAnswer(userID, sessionID, req.QuestionNumber, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidQuestion):
			util.BadRequest(ctx, "question number out of range")
		case errors.Is(err, util.ErrSessionClosed):
			util.Conflict(ctx, "session no longer accepts answers")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, answer)
}

// swagger:model CompleteSessionRequest
type CompleteSessionRequest struct {
	TimerExpired       bool `json:"timerExpired"`
	UnsavedAnswerCount int  `json:"unsavedAnswerCount"`
}

// Complete godoc
// @Summary Complete the session and score it
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Param body body CompleteSessionRequest false "client-side timer state, recorded for audit"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/placement/sessions/{id}/complete [post]
func (c *SessionController) Complete(ctx *gin.Context) {
	userID, sessionID, ok := c.owned(ctx)
	if !ok {
		return
	}
	var req CompleteSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	summary, err := c.SessionService.CompleteSession(userID, sessionID, req.TimerExpired, req.UnsavedAnswerCount)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSessionAlreadyCompleted):
			util.Conflict(ctx, "session already completed")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, summary)
}

// Result godoc
// @Summary Score summary of a completed session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/placement/sessions/{id}/result [get]
func (c *SessionController) Result(ctx *gin.Context) {
	userID, sessionID, ok := c.owned(ctx)
	if !ok {
		return
	}
	summary, err := c.SessionService.GetResult(userID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// Abandon godoc
// @Summary Abandon an in-progress session
// @Description Completed sessions are left untouched; abandoning is idempotent.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/placement/sessions/{id}/abandon [post]
func (c *SessionController) Abandon(ctx *gin.Context) {
	userID, sessionID, ok := c.owned(ctx)
	if !ok {
		return
	}
	if err := c.SessionService.Abandon(userID, sessionID); err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"abandoned": true})
}
