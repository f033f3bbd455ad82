package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	_ "github.com/flowspace/server/docs" // swagger docs
	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/board"
	"github.com/flowspace/server/internal/module/card"
	"github.com/flowspace/server/internal/module/invite"
	"github.com/flowspace/server/internal/module/note"
	"github.com/flowspace/server/internal/module/realtime"
	"github.com/flowspace/server/internal/module/user"
	"github.com/flowspace/server/internal/shared/config"
	"github.com/flowspace/server/internal/shared/database"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/flowspace/server/internal/shared/logger"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the assembled server.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     *redis.Client
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	eventBus *events.Bus
	hub      *realtime.Hub
	verifier middleware.TokenVerifier

	userHandler   *user.Handler
	boardHandler  *board.Handler
	cardHandler   *card.Handler
	noteHandler   *note.Handler
	inviteHandler *invite.Handler
	gateway       *realtime.Gateway

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	cleanup func()
}

// Handlers groups the HTTP and socket entry points.
type Handlers struct {
	User    *user.Handler
	Board   *board.Handler
	Card    *card.Handler
	Note    *note.Handler
	Invite  *invite.Handler
	Gateway *realtime.Gateway
}

// New builds the application from cfg. Call Start before serving and Stop
// when done.
func New(cfg *config.Config) (*App, error) {
	a, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return nil, err
	}
	a.cleanup = cleanup
	return a, nil
}

func newApp(
	cfg *config.Config,
	db *gorm.DB,
	rc *redis.Client,
	log *logger.Logger,
	zapLog *zap.Logger,
	m *metrics.Metrics,
	bus *events.Bus,
	hub *realtime.Hub,
	verifier middleware.TokenVerifier,
	h Handlers,
) (*App, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := access.RegisterValidations(v); err != nil {
			return nil, fmt.Errorf("register validations: %w", err)
		}
	}

	// The hub forwards service events to board rooms.
	bus.Register(hub)

	a := &App{
		config:        cfg,
		db:            db,
		redis:         rc,
		logger:        log,
		zapLogger:     zapLog,
		metrics:       m,
		eventBus:      bus,
		hub:           hub,
		verifier:      verifier,
		userHandler:   h.User,
		boardHandler:  h.Board,
		cardHandler:   h.Card,
		noteHandler:   h.Note,
		inviteHandler: h.Invite,
		gateway:       h.Gateway,
	}
	a.router = a.setupRouter()
	a.registerRoutes()
	return a, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(a.config.CORS.AllowedOrigins)))

	r.GET("/health", a.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok"}
	if err := database.Ping(ctx, a.db); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = "unavailable"
	}
	if a.redis != nil {
		checks["redis"] = "ok"
		if err := a.redis.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = "unavailable"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":      state,
		"checks":      checks,
		"connections": a.hub.ClientCount(),
	})
}

// registerRoutes registers routes for all modules.
func (a *App) registerRoutes() {
	auth := middleware.RequireAuth(a.verifier)

	// Socket gateway authenticates during the upgrade.
	a.gateway.RegisterRoutes(a.router)

	v1 := a.router.Group("/api/v1")

	// Invite routes mix public and authenticated endpoints.
	a.inviteHandler.RegisterRoutes(v1, auth)

	protected := v1.Group("")
	protected.Use(auth)
	if a.redis != nil {
		protected.Use(middleware.Idempotency(a.redis, middleware.DefaultIdempotencyConfig()))
	}
	a.userHandler.RegisterProtectedRoutes(protected)
	a.boardHandler.RegisterRoutes(protected)
	a.cardHandler.RegisterRoutes(protected)
	a.noteHandler.RegisterRoutes(protected)
}

// Start runs background components until Stop.
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.hub.Run(ctx); err != nil {
			a.zapLogger.Error("realtime hub stopped", zap.Error(err))
		}
	}()
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops background components and releases resources.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.cleanup != nil {
		a.cleanup()
	}
}
