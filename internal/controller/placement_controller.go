package controller

import (
	"errors"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlacementController struct {
	PlacementService *service.PlacementService
	SessionService   *service.SessionService
}

func NewPlacementController(placementService *service.PlacementService, sessionService *service.SessionService) *PlacementController {
	return &PlacementController{
		PlacementService: placementService,
		SessionService:   sessionService,
	}
}

// swagger:model CreateSessionRequest
type CreateSessionRequest struct {
	GradeValue int    `json:"gradeValue"`
	RankBucket string `json:"rankBucket"`
	ExamID     uint   `json:"examId"` // staff override, skips rule matching
}

// CreateSession godoc
// @Summary Place the student and open a test session
// @Tags placement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSessionRequest true "grade and rank bucket, or an exam override"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/placement/sessions [post]
func (c *PlacementController) CreateSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.ExamID > 0 && claims.Role == model.Student {
		util.Forbidden(ctx)
		return
	}
	if req.ExamID == 0 && !model.RankBucket(req.RankBucket).Valid() {
		util.BadRequest(ctx, "invalid rankBucket")
		return
	}

	session, err := c.PlacementService.CreateSession(claims.UserID, req.GradeValue, model.RankBucket(req.RankBucket), req.ExamID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrExamNotPublished):
			util.BadRequest(ctx, "exam is not published")
		case errors.Is(err, util.ErrLevelNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	view, err := c.SessionService.GetSession(claims.UserID, session.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// swagger:model MatchRequest
type MatchRequest struct {
	GradeValue int    `json:"gradeValue" binding:"required"`
	RankBucket string `json:"rankBucket" binding:"required"`
}

// Match godoc
// @Summary Dry-run the placement rule matcher
// @Description Resolves (grade, rank bucket) to a level without opening a session.
// @Tags placement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MatchRequest true "grade and rank bucket"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/placement/match [post]
func (c *PlacementController) Match(ctx *gin.Context) {
	var req MatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	bucket := model.RankBucket(req.RankBucket)
	if !bucket.Valid() {
		util.BadRequest(ctx, "invalid rankBucket")
		return
	}

	level, err := c.PlacementService.Match(req.GradeValue, bucket)
	if err != nil {
		if errors.Is(err, util.ErrNoMatchingRule) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, level)
}
