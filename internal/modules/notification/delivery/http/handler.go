package http

import (
	"net/http"

	notifService "anoa.com/proofofgrind/internal/modules/notification/service"
	"anoa.com/proofofgrind/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewNotificationHandler(redisClient *redis.Client, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		redisClient: redisClient,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is enforced on the REST routes
			},
		},
	}
}

// HandleWebSocket streams the caller's tier-up events and every leaderboard
// change until either side disconnects.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	addr, err := response.GetAddress(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, notifService.UserChannel(addr), notifService.LeaderboardChannel)
	defer pubsub.Close()

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("failed to subscribe to redis channels", zap.String("address", addr), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON-encoded events.
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Debug("failed to write to websocket", zap.String("address", addr), zap.Error(err))
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
