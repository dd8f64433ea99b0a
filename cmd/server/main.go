package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"shellnote/docs"
	"shellnote/internal/auth"
	"shellnote/internal/cache"
	"shellnote/internal/config"
	"shellnote/internal/db"
	"shellnote/internal/handler"
	"shellnote/internal/mail"
	"shellnote/internal/repository"
	"shellnote/internal/router"
	"shellnote/internal/service"
	"shellnote/internal/storage"
)

const (
	authThrottleLimit  = 10
	authThrottleWindow = time.Minute
)

// @title SHELL-NOTE API
// @version 1.0
// @description Personal note-taking API with categories, attachments, and JWT authentication.
// @host localhost:4000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logrus.WithError(err).Fatal("database init")
	}

	if err := db.MigrateBase(gormDB); err != nil {
		logrus.WithError(err).Fatal("base migration")
	}
	if cfg.MigrateCategories {
		if err := db.MigrateCategories(gormDB); err != nil {
			logrus.WithError(err).Fatal("categories migration")
		}
	}

	// Schema capabilities are resolved once; restart after running migrations.
	caps := db.Probe(gormDB)
	if !caps.Categories {
		logrus.Warn("categories schema not present, category endpoints disabled until migrated")
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	} else {
		logrus.Info("REDIS_ADDR not set, auth throttling disabled")
	}
	throttle := auth.NewThrottle(cacheClient, authThrottleLimit, authThrottleWindow)

	blobStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logrus.WithError(err).Fatal("upload storage init")
	}

	var mailer mail.Mailer
	if cfg.MailConfigured() {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logrus.Info("SMTP not configured, reset links will be returned in responses")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	if cacheClient != nil {
		// Category lists are read on every note listing; serve them from
		// Redis and drop the entry on writes.
		categoryRepo = repository.NewCachedCategoryRepository(categoryRepo, cacheClient)
	}
	fileRepo := repository.NewFileRepository(gormDB)
	resetRepo := repository.NewResetTokenRepository(gormDB)

	// Services
	authService := service.NewAuthService(userRepo, resetRepo, jwtService, mailer, throttle, cfg.AppBaseURL, cfg.ResetTokenTTL)
	noteService := service.NewNoteService(noteRepo, categoryRepo, blobStore, caps)
	categoryService := service.NewCategoryService(categoryRepo, caps)
	fileService := service.NewFileService(fileRepo, blobStore)

	// Handlers
	healthHandler := handler.NewHealthHandler(gormDB)
	authHandler := handler.NewAuthHandler(authService)
	noteHandler := handler.NewNoteHandler(noteService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	fileHandler := handler.NewFileHandler(fileService)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, healthHandler, authHandler, noteHandler, categoryHandler, fileHandler)

	logrus.WithField("port", cfg.ServerPort).Info("starting server")
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
