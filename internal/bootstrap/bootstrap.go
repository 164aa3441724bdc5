// Package bootstrap wires configuration, storage, services and routes into a
// runnable application.
package bootstrap

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/surgitrack/surgitrack/internal/app/controllers"
	appRepos "github.com/surgitrack/surgitrack/internal/app/repositories"
	appRoutes "github.com/surgitrack/surgitrack/internal/app/routes"
	appServices "github.com/surgitrack/surgitrack/internal/app/services"
	"github.com/surgitrack/surgitrack/internal/config"
	"github.com/surgitrack/surgitrack/internal/db"
	appMiddleware "github.com/surgitrack/surgitrack/internal/middleware"
	"github.com/surgitrack/surgitrack/internal/notify"
	pkgAuth "github.com/surgitrack/surgitrack/internal/pkg/auth"
	"github.com/surgitrack/surgitrack/internal/pkg/email"
	"github.com/surgitrack/surgitrack/internal/pkg/helpers"
	"github.com/surgitrack/surgitrack/internal/pkg/logger"
	"github.com/surgitrack/surgitrack/internal/tenant"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService           appServices.AuthService
	SubmissionService     appServices.SubmissionService
	ClinicalSubService    appServices.ClinicalSubService
	EventService          appServices.EventService
	AuthController        *appControllers.AuthController
	SubmissionController  *appControllers.SubmissionController
	ClinicalSubController *appControllers.ClinicalSubController
	EventController       *appControllers.EventController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	JWTService            *pkgAuth.JWTService
	Users                 appRepos.UserRepository
	Tenants               *tenant.Registry
	Notifier              *notify.AsyncNotifier
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupPrimaryDatabase opens the primary (account) database and applies the
// pending migrations to it and to every configured tenant database.
func SetupPrimaryDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing primary database connection...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg, cfg.Database.DBName)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to primary database")
		return nil, err
	}
	lgr.Info().Msg("Primary database connection successfully established.")

	lgr.Info().Msg("Running primary database migrations...")
	primaryURL := cfg.GetPostgresConnectionString(cfg.Database.DBName)
	if err := db.RunMigrations(primaryURL, filepath.Join("migrations", "primary"), lgr); err != nil {
		pool.Close()
		return nil, err
	}

	for _, t := range cfg.Tenants {
		lgr.Info().Str("institute", t.Code).Msg("Running tenant database migrations...")
		tenantURL := cfg.GetPostgresConnectionString(t.DBName)
		if err := db.RunMigrations(tenantURL, filepath.Join("migrations", "tenant"), lgr); err != nil {
			pool.Close()
			return nil, err
		}
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return pool, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, primaryPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Users = appRepos.NewUserRepository(primaryPool)
	deps.Tenants = tenant.NewRegistry(cfg, lgr)

	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)
	deps.Notifier = notify.NewAsyncNotifier(mailer, lgr, cfg.Notify.QueueSize)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 15*time.Minute),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Users, deps.JWTService, lgr)
	deps.SubmissionService = appServices.NewSubmissionService(deps.Tenants, deps.Notifier, lgr)
	deps.ClinicalSubService = appServices.NewClinicalSubService(deps.Tenants, deps.Notifier, lgr)
	deps.EventService = appServices.NewEventService(deps.Tenants, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.SubmissionController = appControllers.NewSubmissionController(deps.SubmissionService, lgr)
	deps.ClinicalSubController = appControllers.NewClinicalSubController(deps.ClinicalSubService, lgr)
	deps.EventController = appControllers.NewEventController(deps.EventService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.SubmissionController,
		deps.ClinicalSubController,
		deps.EventController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
