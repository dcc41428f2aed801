package app

import (
	"edu_placement_backend/docs"
	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/middleware"
	"edu_placement_backend/internal/model"
	"edu_placement_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/me", c.auth.Me)

	curriculum := api.Group("/curriculum")
	{
		curriculum.GET("/programs", c.curriculum.ListPrograms)
		curriculum.GET("/programs/:id/subprograms", c.curriculum.ListSubPrograms)
		curriculum.GET("/levels", c.curriculum.ListLevels)
	}

	placement := api.Group("/placement")
	{
		placement.POST("/sessions", c.placement.CreateSession)
		placement.GET("/sessions/:id", c.session.GetSession)
		placement.GET("/sessions/:id/exam", c.session.GetExam)
		placement.POST("/sessions/:id/answers", c.session.SubmitAnswer)
		placement.POST("/sessions/:id/complete", c.session.Complete)
		placement.POST("/sessions/:id/abandon", c.session.Abandon)
		placement.GET("/sessions/:id/result", c.session.Result)
		placement.POST("/sessions/:id/difficulty", c.difficulty.RequestChange)
	}
}

func (a *App) registerTeacherRoutes(api *gin.RouterGroup, c *controllers) {
	teacher := api.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/placement/match", c.placement.Match)
		teacher.GET("/placement/rules", c.curriculum.ListRules)

		teacher.POST("/exams", c.exam.CreateExam)
		teacher.GET("/exams/:id", c.exam.GetExam)
		teacher.PUT("/exams/:id", c.exam.UpdateExam)
		teacher.GET("/levels/:id/exams", c.exam.ListByLevel)
		teacher.POST("/exams/:id/questions", c.exam.AddQuestion)
		teacher.PUT("/questions/:questionId", c.exam.UpdateQuestion)
		teacher.DELETE("/questions/:questionId", c.exam.DeleteQuestion)
		teacher.POST("/exams/:id/recalculate", c.exam.Recalculate)
		teacher.GET("/exams/:id/stats", c.exam.Stats)

		teacher.GET("/exams/:id/pending-grading", c.grade.ListPendingManual)
		teacher.POST("/answers/:answerId/grade", c.grade.GradeAnswer)
		teacher.GET("/sessions/:id/adjustments", c.difficulty.History)
	}
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers) {
	admin := api.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/programs", c.curriculum.CreateProgram)
		admin.POST("/subprograms", c.curriculum.CreateSubProgram)
		admin.POST("/levels", c.curriculum.CreateLevel)
		admin.POST("/placement/rules", c.curriculum.CreateRule)
		admin.POST("/cache/invalidate", c.curriculum.InvalidateCache)
	}
}
