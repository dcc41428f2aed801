package controller

import (
	"errors"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// ListPrograms godoc
// @Summary All programs
// @Tags curriculum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/curriculum/programs [get]
func (c *CurriculumController) ListPrograms(ctx *gin.Context) {
	programs, err := c.CurriculumService.ListPrograms()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, programs)
}

// ListSubPrograms godoc
// @Summary Sub-programs of a program
// @Tags curriculum
// @Produce json
// @Security BearerAuth
// @Param id path int true "program id"
// @Success 200 {object} util.Response
// @Router /api/curriculum/programs/{id}/subprograms [get]
func (c *CurriculumController) ListSubPrograms(ctx *gin.Context) {
	programID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid program id")
		return
	}
	subs, err := c.CurriculumService.ListSubPrograms(programID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// ListLevels godoc
// @Summary All levels in difficulty order
// @Tags curriculum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/curriculum/levels [get]
func (c *CurriculumController) ListLevels(ctx *gin.Context) {
	levels, err := c.CurriculumService.ListLevels()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

// CreateLevel godoc
// @Summary Create a curriculum level
// @Tags curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CurriculumLevel true "level"
// @Success 201 {object} util.Response
// @Router /api/admin/levels [post]
func (c *CurriculumController) CreateLevel(ctx *gin.Context) {
	var level model.CurriculumLevel
	if err := ctx.ShouldBindJSON(&level); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CurriculumService.CreateLevel(ctx.Request.Context(), &level); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, level)
}

// CreateProgram godoc
// @Summary Create a program
// @Tags curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.Program true "program"
// @Success 201 {object} util.Response
// @Router /api/admin/programs [post]
func (c *CurriculumController) CreateProgram(ctx *gin.Context) {
	var program model.Program
	if err := ctx.ShouldBindJSON(&program); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CurriculumService.CreateProgram(ctx.Request.Context(), &program); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, program)
}

// CreateSubProgram godoc
// @Summary Create a sub-program
// @Tags curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.SubProgram true "sub-program"
// @Success 201 {object} util.Response
// @Router /api/admin/subprograms [post]
func (c *CurriculumController) CreateSubProgram(ctx *gin.Context) {
	var sp model.SubProgram
	if err := ctx.ShouldBindJSON(&sp); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CurriculumService.CreateSubProgram(ctx.Request.Context(), &sp); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, sp)
}

// ListRules godoc
// @Summary All placement rules in match order
// @Tags curriculum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/placement/rules [get]
func (c *CurriculumController) ListRules(ctx *gin.Context) {
	rules, err := c.CurriculumService.ListRules()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rules)
}

// CreateRule godoc
// @Summary Append a placement rule
// @Description Rules are append-only; to correct one, add a new rule at a higher priority.
// @Tags curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.PlacementRule true "rule"
// @Success 201 {object} util.Response
// @Router /api/admin/placement/rules [post]
func (c *CurriculumController) CreateRule(ctx *gin.Context) {
	var rule model.PlacementRule
	if err := ctx.ShouldBindJSON(&rule); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.CurriculumService.CreateRule(ctx.Request.Context(), &rule); err != nil {
		switch {
		case errors.Is(err, util.ErrLevelNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNoMatchingRule):
			util.BadRequest(ctx, "invalid rankBucket")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, rule)
}

// InvalidateCache godoc
// @Summary Force a reference-data cache reload on all instances
// @Tags curriculum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/cache/invalidate [post]
func (c *CurriculumController) InvalidateCache(ctx *gin.Context) {
	c.CurriculumService.InvalidateCache(ctx.Request.Context())
	util.Success(ctx, gin.H{"invalidated": true})
}
