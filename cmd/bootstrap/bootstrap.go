package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"clinic-scheduling/config"
	deliveryHttp "clinic-scheduling/internal/delivery/http"
	"clinic-scheduling/internal/delivery/http/handler"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/infrastructure/cache"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/repository"
	"clinic-scheduling/internal/seed"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/internal/workflow"
	"clinic-scheduling/pkg/jwt"
	"clinic-scheduling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New loads configuration and opens the database. Redis and the HTTP server
// are only set up by Serve.
func New() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected successfully")

	return &App{Config: cfg, Log: log, DB: db}, nil
}

// setupLogger configures the logrus logger: JSON in production, text elsewhere.
func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Log.Level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func (app *App) Migrate(down bool, steps int) error {
	migrator, err := database.NewMigrator(app.DB, app.Log)
	if err != nil {
		return err
	}
	if down {
		return migrator.Down(steps)
	}
	return migrator.Up()
}

func (app *App) Seed(ctx context.Context, doctors, patients int, fakerSeed uint64) (*seed.Result, error) {
	auditService := service.NewAuditService(app.Log, repository.NewAuditLogRepository())
	seeder := seed.NewSeeder(
		database.NewTransactor(app.DB),
		app.Log,
		repository.NewPatientRepository(),
		repository.NewDoctorRepository(),
		auditService,
		fakerSeed,
	)
	return seeder.Run(ctx, doctors, patients)
}

// Serve connects to Redis, starts the HTTP server and blocks until ctx is
// cancelled and the server has drained.
func (app *App) Serve(ctx context.Context) error {
	redisClient, err := cache.NewRedisClient(ctx, app.Config.Redis, app.Log)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	server, err := app.initializeServer()
	if err != nil {
		return err
	}
	app.Server = server

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Log.WithFields(logrus.Fields{
			"port": app.Config.App.Port,
			"env":  app.Config.App.Env,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.App.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Log.Errorf("Server forced to shutdown: %v", err)
			return err
		}
		app.Log.Info("Server shutdown complete")
		return nil
	})

	return g.Wait()
}

// initializeServer wires every layer and returns the HTTP server
func (app *App) initializeServer() (*http.Server, error) {
	cfg := app.Config
	log := app.Log

	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	sqlDB, err := app.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	tokenStore := cache.NewRedisTokenStore(app.RedisClient)
	transactor := database.NewTransactor(app.DB)

	// Repositories
	patientRepo := repository.NewPatientRepository()
	doctorRepo := repository.NewDoctorRepository()
	requestRepo := repository.NewAppointmentRequestRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(log, auditLogRepo)

	// Usecases
	schedulingUsecase := usecase.NewSchedulingUsecase(transactor, log, patientRepo, doctorRepo, requestRepo, appointmentRepo, auditService)
	authUsecase := usecase.NewAuthUsecase(transactor, log, patientRepo, auditService, jwtService, tokenStore, adminHash)
	patientUsecase := usecase.NewPatientUsecase(transactor, log, patientRepo, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(transactor, log, doctorRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(transactor, log, auditLogRepo)
	orchestrator := workflow.NewOrchestrator(schedulingUsecase, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(log, map[string]handler.Pinger{
		"postgres": handler.PingerFunc(sqlDB.PingContext),
		"redis": handler.PingerFunc(func(ctx context.Context) error {
			return app.RedisClient.Ping(ctx).Err()
		}),
	})
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	requestHandler := handler.NewAppointmentRequestHandler(orchestrator, schedulingUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(orchestrator, schedulingUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	router := deliveryHttp.NewRouter(
		healthHandler,
		authHandler,
		patientHandler,
		doctorHandler,
		requestHandler,
		appointmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
	)

	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.App.Port),
		Handler: router.Setup(),
	}, nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
