package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/controller"
	"edu_placement_backend/internal/repository"
	"edu_placement_backend/internal/service"
	"edu_placement_backend/internal/util"
	"edu_placement_backend/pkg/configwatcher"
	"edu_placement_backend/pkg/database"
	"edu_placement_backend/pkg/logger"
	"edu_placement_backend/pkg/monitoring"
	"edu_placement_backend/pkg/security"
	"edu_placement_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	cancelWatchers  context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	curriculum *repository.CurriculumRepository
	rule       *repository.PlacementRuleRepository
	exam       *repository.ExamRepository
	session    *repository.SessionRepository
	adjustment *repository.AdjustmentRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	refCache   *service.ReferenceCache
	curriculum *service.CurriculumService
	placement  *service.PlacementService
	session    *service.SessionService
	difficulty *service.DifficultyService
	exam       *service.ExamService
}

type controllers struct {
	auth       *controller.AuthController
	placement  *controller.PlacementController
	session    *controller.SessionController
	difficulty *controller.DifficultyController
	exam       *controller.ExamController
	grade      *controller.GradeController
	curriculum *controller.CurriculumController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		curriculum: repository.NewCurriculumRepository(db),
		rule:       repository.NewPlacementRuleRepository(db),
		exam:       repository.NewExamRepository(db),
		session:    repository.NewSessionRepository(db),
		adjustment: repository.NewAdjustmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.refCache = service.NewReferenceCache(repos.curriculum, repos.rule)
	s.curriculum = service.NewCurriculumService(repos.curriculum, repos.rule, s.refCache, rdb)
	s.placement = service.NewPlacementService(repos.session, repos.exam, s.refCache, cfg)
	s.session = service.NewSessionService(repos.session, repos.exam, cfg)
	s.difficulty = service.NewDifficultyService(repos.session, repos.exam, repos.adjustment, s.refCache)
	s.exam = service.NewExamService(repos.exam, repos.session, s.refCache, cfg)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		placement:  controller.NewPlacementController(s.placement, s.session),
		session:    controller.NewSessionController(s.session, s.exam, s.storage),
		difficulty: controller.NewDifficultyController(s.difficulty),
		exam:       controller.NewExamController(s.exam, s.session),
		grade:      controller.NewGradeController(s.exam),
		curriculum: controller.NewCurriculumController(s.curriculum),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	// Reference-data invalidations from other instances.
	go s.refCache.WatchInvalidations(ctx, a.Redis)

	// Live reload of policy knobs (grace period, default level, rate
	// limits). Connection settings only apply on restart.
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(raw interface{}) {
		newCfg, ok := raw.(*config.Config)
		if !ok {
			return
		}
		a.Config.Engine = newCfg.Engine
		a.Config.RateLimit = newCfg.RateLimit
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
		logger.Log.Info("Config reloaded",
			zap.Int("gracePeriodMinutes", newCfg.Engine.GracePeriodMinutes),
			zap.Uint("defaultLevelId", newCfg.Engine.DefaultLevelID))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("placement-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	app.cancelWatchers = cancel
	app.startBackgroundTasks(watchCtx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.cancelWatchers != nil {
		a.cancelWatchers()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
