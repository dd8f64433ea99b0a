package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"shellnote/internal/auth"
	"shellnote/internal/config"
	"shellnote/internal/handler"
)

// bodyLimit caps request bodies; five attachments of 5MB each plus the form
// fields fit comfortably under it.
const bodyLimit = "30M"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	noteHandler *handler.NoteHandler,
	categoryHandler *handler.CategoryHandler,
	fileHandler *handler.FileHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.GET("/health", healthHandler.Check)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &auth.Claims{}
		},
	}))

	secured.GET("/auth/me", authHandler.Me)

	// Note routes
	secured.GET("/notes", noteHandler.List)
	secured.POST("/notes", noteHandler.Create)
	secured.GET("/notes/:id", noteHandler.Get)
	secured.PUT("/notes/:id", noteHandler.Update)
	secured.DELETE("/notes/:id", noteHandler.Delete)

	// Category routes
	secured.GET("/categories", categoryHandler.List)
	secured.POST("/categories", categoryHandler.Create)
	secured.PUT("/categories/:id", categoryHandler.Rename)
	secured.DELETE("/categories/:id", categoryHandler.Delete)

	// File routes
	secured.GET("/files/:id", fileHandler.Download)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
