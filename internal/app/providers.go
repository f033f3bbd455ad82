package app

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/auth"
	"github.com/flowspace/server/internal/module/board"
	"github.com/flowspace/server/internal/module/card"
	"github.com/flowspace/server/internal/module/invite"
	"github.com/flowspace/server/internal/module/note"
	"github.com/flowspace/server/internal/module/realtime"
	"github.com/flowspace/server/internal/module/user"
	"github.com/flowspace/server/internal/shared/cache"
	"github.com/flowspace/server/internal/shared/config"
	"github.com/flowspace/server/internal/shared/database"
	"github.com/flowspace/server/internal/shared/email"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/flowspace/server/internal/shared/logger"
	"github.com/flowspace/server/internal/shared/ratelimit"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/flowspace/server/internal/utils/middleware"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideMetrics,
	ProvideEventBus,
	wire.Bind(new(events.Publisher), new(*events.Bus)),
	ProvideRateLimiter,
	ProvideEmailSender,
)

// ProvideLogger creates the request logger.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideZapLogger creates the service logger.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return zapLog, func() { _ = zapLog.Sync() }, nil
}

// ProvideDatabase opens the database and migrates it when configured to.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		zapLog.Info("database migrated")
	}
	return db, func() { _ = database.Close(db) }, nil
}

// ProvideRedisClient connects to Redis. Redis is optional: without it the
// hub delivers locally and rate limits are per process.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (*redis.Client, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without it", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideMetrics creates the metrics registered on the default registry.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("flowspace")
}

// ProvideEventBus creates the in-process event bus.
func ProvideEventBus(zapLog *zap.Logger) *events.Bus {
	return events.NewBus(zapLog)
}

// ProvideRateLimiter picks the Redis limiter when Redis is up.
func ProvideRateLimiter(rc *redis.Client) ratelimit.Limiter {
	if rc == nil {
		return ratelimit.NewLocalLimiter()
	}
	return ratelimit.NewRedisLimiter(rc)
}

// ProvideEmailSender builds the invite mailer. SMTP delivery is wrapped in
// a circuit breaker so an outage turns into fast warnings.
func ProvideEmailSender(cfg *config.Config, zapLog *zap.Logger) email.Sender {
	if cfg.Email.Provider == "smtp" {
		return email.NewBreakerSender(email.NewSMTPSender(&cfg.Email, zapLog), zapLog)
	}
	return email.NewNoopSender(zapLog)
}

// ===== Module Providers =====

// ModuleSet provides repositories, services and handlers.
var ModuleSet = wire.NewSet(
	ProvideJWTManager,
	wire.Bind(new(middleware.TokenVerifier), new(*auth.JWTManager)),

	user.NewRepository,
	user.NewHandler,

	board.NewRepository,
	ProvideGate,
	wire.Bind(new(access.Authorizer), new(*access.Gate)),
	board.NewService,
	board.NewHandler,

	card.NewRepository,
	card.NewService,
	card.NewHandler,

	note.NewRepository,
	note.NewService,
	note.NewHandler,

	invite.NewRepository,
	ProvideInviteConfig,
	ProvideInviteService,
	ProvideInviteHandler,

	ProvideHub,
	ProvideRealtimeRouter,
	ProvideGateway,

	wire.Struct(new(Handlers), "*"),
)

// ProvideJWTManager creates the access token verifier.
func ProvideJWTManager(cfg *config.Config) *auth.JWTManager {
	return auth.NewJWTManager(&auth.JWTConfig{
		Secret:            cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
	})
}

// ProvideGate creates the access gate over board storage.
func ProvideGate(repo board.Repository) *access.Gate {
	return access.NewGate(repo)
}

// ProvideInviteConfig maps invite settings.
func ProvideInviteConfig(cfg *config.Config) *invite.Config {
	return &invite.Config{
		Expiry:      cfg.Invite.Expiry,
		TokenBytes:  cfg.Invite.TokenBytes,
		FrontendURL: cfg.Invite.FrontendURL,
	}
}

// ProvideInviteService creates the invite service.
func ProvideInviteService(
	repo invite.Repository,
	boards board.Repository,
	users user.Repository,
	gate access.Authorizer,
	sender email.Sender,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *invite.Config,
	zapLog *zap.Logger,
) *invite.Service {
	return invite.NewService(repo, boards, users, gate, sender, publisher, m, cfg, zapLog)
}

// ProvideInviteHandler creates the invite handler with its per-user send
// limit.
func ProvideInviteHandler(service *invite.Service, limiter ratelimit.Limiter, m *metrics.Metrics, cfg *config.Config) *invite.Handler {
	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limit = middleware.RateLimitByUser(limiter, m, "invite", cfg.RateLimit.InviteLimit, cfg.RateLimit.InviteWindow)
	}
	return invite.NewHandler(service, limit)
}

// ProvideHub creates the room hub, on the Redis backplane when available.
func ProvideHub(cfg *config.Config, rc *redis.Client, m *metrics.Metrics, zapLog *zap.Logger) *realtime.Hub {
	if rc == nil {
		return realtime.NewHub(nil, m, zapLog)
	}
	return realtime.NewHub(realtime.NewRedisBackplane(rc, cfg.Realtime.RedisChannel, zapLog), m, zapLog)
}

// ProvideRealtimeRouter creates the socket event router.
func ProvideRealtimeRouter(hub *realtime.Hub, gate access.Authorizer, cards *card.Service, notes *note.Service, m *metrics.Metrics, zapLog *zap.Logger) *realtime.Router {
	return realtime.NewRouter(hub, gate, cards, notes, m, zapLog)
}

// ProvideGateway creates the socket gateway.
func ProvideGateway(hub *realtime.Hub, router *realtime.Router, verifier middleware.TokenVerifier, cfg *config.Config, m *metrics.Metrics, zapLog *zap.Logger) *realtime.Gateway {
	return realtime.NewGateway(hub, router, verifier, &cfg.Realtime, m, zapLog)
}

// AppSet is the complete provider graph.
var AppSet = wire.NewSet(
	InfraSet,
	ModuleSet,
	newApp,
)
