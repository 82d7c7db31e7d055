package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/controller"
	"qa_forum_backend/internal/middleware"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/pkg/configwatcher"
	"qa_forum_backend/pkg/database"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/mailer"
	"qa_forum_backend/pkg/monitoring"
	"qa_forum_backend/pkg/security"
	"qa_forum_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	// ConfigFile enables hot reload of SMTP and AI settings when set.
	ConfigFile      string
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

// Deps are the outbound collaborators that tests replace with fakes.
type Deps struct {
	Mailer    mailer.Mailer
	Generator service.Generator
}

type repositories struct {
	user         *repository.UserRepository
	question     *repository.QuestionRepository
	answer       *repository.AnswerRepository
	comment      *repository.CommentRepository
	content      *repository.ContentRepository
	bookmark     *repository.BookmarkRepository
	follow       *repository.FollowRepository
	friendship   *repository.FriendshipRepository
	report       *repository.ReportRepository
	notification *repository.NotificationRepository
	stats        *repository.StatsRepository
}

type services struct {
	notification *service.NotificationService
	auth         *service.AuthService
	question     *service.QuestionService
	answer       *service.AnswerService
	comment      *service.CommentService
	bookmark     *service.BookmarkService
	user         *service.UserService
	friendship   *service.FriendshipService
	report       *service.ReportService
	admin        *service.AdminService
	ai           *service.AIService
	storage      *service.StorageService
	upload       *service.UploadService
	hub          *service.NotificationHub
}

type controllers struct {
	auth         *controller.AuthController
	question     *controller.QuestionController
	answer       *controller.AnswerController
	comment      *controller.CommentController
	bookmark     *controller.BookmarkController
	user         *controller.UserController
	friend       *controller.FriendController
	notification *controller.NotificationController
	report       *controller.ReportController
	admin        *controller.AdminController
	ai           *controller.AIController
	upload       *controller.UploadController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		question:     repository.NewQuestionRepository(db),
		answer:       repository.NewAnswerRepository(db),
		comment:      repository.NewCommentRepository(db),
		content:      repository.NewContentRepository(db),
		bookmark:     repository.NewBookmarkRepository(db),
		follow:       repository.NewFollowRepository(db),
		friendship:   repository.NewFriendshipRepository(db, rdb),
		report:       repository.NewReportRepository(db),
		notification: repository.NewNotificationRepository(db),
		stats:        repository.NewStatsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, deps Deps) *services {
	s := &services{}

	s.notification = service.NewNotificationService(repos.notification)
	s.hub = service.NewNotificationHub(rdb, repos.friendship)
	s.hub.Reader = s.notification
	s.notification.Pusher = s.hub
	go s.hub.Run()

	s.storage = service.NewStorageService(cfg)

	limiter := service.NewAttemptLimiter(rdb, "forum:reset", cfg.JWT.ResetAttempts, time.Hour)
	s.auth = service.NewAuthService(repos.user, s.notification, deps.Mailer, limiter, cfg)

	s.question = service.NewQuestionService(
		repos.question,
		repos.answer,
		repos.comment,
		repos.content,
		s.notification,
		rdb,
	)
	s.answer = service.NewAnswerService(repos.answer, repos.question, repos.content, s.notification)
	s.comment = service.NewCommentService(repos.comment, repos.content, s.notification)
	s.bookmark = service.NewBookmarkService(repos.bookmark, repos.content)
	s.user = service.NewUserService(repos.user, repos.follow, repos.question, repos.answer, s.notification)
	s.friendship = service.NewFriendshipService(repos.friendship, repos.user, s.notification)
	s.report = service.NewReportService(repos.report, repos.content)

	s.admin = service.NewAdminService(
		repos.user,
		repos.question,
		repos.report,
		repos.content,
		repos.stats,
		s.notification,
		deps.Mailer,
	)

	s.ai = service.NewAIService(deps.Generator)
	s.upload = service.NewUploadService(s.storage, repos.user, cfg.Upload.MaxBytes())

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		question:     controller.NewQuestionController(s.question),
		answer:       controller.NewAnswerController(s.answer),
		comment:      controller.NewCommentController(s.comment),
		bookmark:     controller.NewBookmarkController(s.bookmark),
		user:         controller.NewUserController(s.user),
		friend:       controller.NewFriendController(s.friendship, s.hub),
		notification: controller.NewNotificationController(s.notification, s.hub),
		report:       controller.NewReportController(s.report),
		admin:        controller.NewAdminController(s.admin),
		ai:           controller.NewAIController(s.ai),
		upload:       controller.NewUploadController(s.upload),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery(cfg.Server.IsRelease()))
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = 15 * time.Minute
	}
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New assembles the router on top of an already opened database. Redis may be
// nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *App {
	if deps.Mailer == nil {
		deps.Mailer = mailer.NewSMTPMailer(cfg.SMTP)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	app.services = app.initServices(repos, cfg, rdb, deps)
	controllers := app.initControllers(app.services, db)

	monitoring.Init()

	if cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	router.NoRoute(middleware.NotFoundHandler)

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || !cfg.Server.IsRelease()
	db, err := database.InitDB(&cfg.Database, migrate, cfg.Server.Mode == "debug")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	smtp := mailer.NewSMTPMailer(cfg.SMTP)
	generator := service.NewOpenAIGenerator(cfg.AI)

	app := New(cfg, db, rdb, Deps{Mailer: smtp, Generator: generator})

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		smtp.SetConfig(newCfg.SMTP)
		generator.SetConfig(newCfg.AI)
		logger.Log.Info("Applied reloaded SMTP and AI settings")
	})

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	if a.ConfigFile == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.ConfigFile, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stopBackground := context.WithCancel(context.Background())
	a.startBackgroundTasks(ctx)

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for an interrupt and give in-flight requests 5 seconds to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopBackground()
	if a.services != nil {
		a.services.hub.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
