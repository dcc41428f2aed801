package controller

import (
	"errors"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DifficultyController struct {
	DifficultyService *service.DifficultyService
}

func NewDifficultyController(difficultyService *service.DifficultyService) *DifficultyController {
	return &DifficultyController{DifficultyService: difficultyService}
}

// swagger:model DifficultyChangeRequest
type DifficultyChangeRequest struct {
	Delta         int    `json:"delta" binding:"required,oneof=-1 1"`
	DecisionPoint string `json:"decisionPoint" binding:"required,oneof=mid_test post_submit post_result"`
}

// RequestChange godoc
// @Summary Request an easier or harder exam
// @Description Steps one level along the difficulty ordering and opens a replacement session. Every request is audited, including ones that cannot be satisfied.
// @Tags difficulty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Param body body DifficultyChangeRequest true "direction and decision point"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/placement/sessions/{id}/difficulty [post]
func (c *DifficultyController) RequestChange(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	sessionID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid session id")
		return
	}
	var req DifficultyChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.DifficultyService.RequestChange(claims.UserID, sessionID, req.Delta, model.DecisionPoint(req.DecisionPoint))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNoAlternateAvailable):
			// The audit row is still written; the client learns nothing
			// was available.
			util.Error(ctx, 409, "no alternate exam available")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// History godoc
// @Summary Difficulty adjustment audit trail of a session
// @Tags difficulty
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Router /api/teacher/sessions/{id}/adjustments [get]
func (c *DifficultyController) History(ctx *gin.Context) {
	sessionID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid session id")
		return
	}
	adjustments, err := c.DifficultyService.History(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, adjustments)
}
