package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidtimer/internal/handler"
	"kidtimer/internal/middleware"
	"kidtimer/internal/repository"
	"kidtimer/internal/service"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Catalog      *handler.CatalogHandler
	TimerSession *handler.TimerSessionHandler
	Preference   *handler.PreferenceHandler
}

func New(
	authService *service.AuthService,
	handlers Handlers,
	corsOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.GET("/presets", handlers.Catalog.Presets)
	api.GET("/sounds", handlers.Catalog.Sounds)

	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)
	auth.GET("/user", middleware.Auth(authService), handlers.Auth.User)

	sessions := api.Group("/timer-sessions")
	sessions.Use(middleware.Auth(authService))
	sessions.POST("", handlers.TimerSession.Create)
	sessions.GET("", handlers.TimerSession.List)
	sessions.GET("/summary", handlers.TimerSession.Summary)
	sessions.PATCH("/:id", handlers.TimerSession.Update)

	prefs := api.Group("/preferences")
	prefs.Use(middleware.Auth(authService))
	prefs.GET("", handlers.Preference.Get)
	prefs.PUT("", handlers.Preference.Update)

	return engine
}

type Options struct {
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	Logger      *zap.Logger
}

// Build wires repositories, services and handlers on top of an open,
// migrated database.
func Build(database *sql.DB, options Options) *gin.Engine {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewTimerSessionRepository(database)
	prefRepo := repository.NewPreferenceRepository(database)

	authService := service.NewAuthService(userRepo, options.JWTSecret, options.TokenTTL, logger.Named("auth"))
	sessionService := service.NewTimerSessionService(sessionRepo, logger.Named("sessions"))
	prefService := service.NewPreferenceService(prefRepo, logger.Named("preferences"))

	return New(authService, Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Catalog:      handler.NewCatalogHandler(),
		TimerSession: handler.NewTimerSessionHandler(sessionService),
		Preference:   handler.NewPreferenceHandler(prefService),
	}, options.CORSOrigins, logger.Named("http"))
}
