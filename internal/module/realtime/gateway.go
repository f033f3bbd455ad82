package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/flowspace/server/internal/shared/config"
	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Gateway upgrades authenticated requests to socket sessions.
type Gateway struct {
	hub      *Hub
	router   *Router
	verifier middleware.TokenVerifier
	upgrader websocket.Upgrader
	cfg      config.RealtimeConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewGateway creates a Gateway. Zero config values fall back to defaults.
func NewGateway(hub *Hub, router *Router, verifier middleware.TokenVerifier, cfg *config.RealtimeConfig, m *metrics.Metrics, logger *zap.Logger) *Gateway {
	g := &Gateway{
		hub:      hub,
		router:   router,
		verifier: verifier,
		cfg:      withDefaults(cfg),
		metrics:  m,
		logger:   logger,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func withDefaults(cfg *config.RealtimeConfig) config.RealtimeConfig {
	var out config.RealtimeConfig
	if cfg != nil {
		out = *cfg
	}
	if out.SendBuffer <= 0 {
		out.SendBuffer = defaultSendBuffer
	}
	if out.PongWait <= 0 {
		out.PongWait = 60 * time.Second
	}
	if out.PingInterval <= 0 || out.PingInterval >= out.PongWait {
		out.PingInterval = out.PongWait * 9 / 10
	}
	if out.WriteWait <= 0 {
		out.WriteWait = 10 * time.Second
	}
	if out.MaxMessageBytes <= 0 {
		out.MaxMessageBytes = 1 << 20
	}
	return out
}

// RegisterRoutes mounts GET /ws.
func (g *Gateway) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", g.Handle)
}

// Handle authenticates, upgrades and serves one connection until it closes.
func (g *Gateway) Handle(c *gin.Context) {
	token, ok := middleware.ExtractToken(c, true)
	if !ok {
		response.AbortWithCode(c, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}
	userID, _, err := g.verifier.Verify(token)
	if err != nil {
		response.AbortWithCode(c, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.NewString(), userID, g.cfg.SendBuffer)
	g.hub.Register(client)
	g.metrics.ConnectionOpened()
	g.logger.Info("socket connected",
		zap.String("conn_id", client.ID()),
		zap.String("user_id", userID.String()),
	)

	s := &session{gateway: g, client: client, conn: conn}
	go s.writePump()
	s.readPump(context.Background())

	g.metrics.ConnectionClosed()
	g.logger.Info("socket disconnected", zap.String("conn_id", client.ID()))
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// session owns the socket. readPump is the only reader and writePump the
// only writer.
type session struct {
	gateway *Gateway
	client  *Client
	conn    *websocket.Conn
}

func (s *session) readPump(ctx context.Context) {
	g := s.gateway
	defer func() {
		g.hub.Disconnect(s.client)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(g.cfg.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				g.logger.Debug("socket read", zap.String("conn_id", s.client.ID()), zap.Error(err))
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			_ = g.hub.Send(s.client, EventError, ErrorPayload{Message: messageFor(errInvalidPayload, "")})
			continue
		}
		g.router.Dispatch(ctx, s.client, f)
	}
}

func (s *session) writePump() {
	g := s.gateway
	ticker := time.NewTicker(g.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.client.Outbound():
			_ = s.conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				g.hub.Disconnect(s.client)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				g.hub.Disconnect(s.client)
				return
			}
		}
	}
}
