package handler

import (
	"io"
	"net/http"
	"time"

	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/pkg/apperror"
	"anoa.com/boardinghouse/pkg/broadcast"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/metrics"
	"anoa.com/boardinghouse/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// connState is the lifecycle of one websocket client.
type connState int

const (
	stateConnecting connState = iota
	stateSubscribed
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateSubscribed:
		return "subscribed"
	default:
		return "closed"
	}
}

type NotificationHandler struct {
	subscriber broadcast.Subscriber
	upgrader   websocket.Upgrader
}

// NewNotificationHandler relays the notification channel to websocket
// clients. A nil subscriber makes the endpoint answer 503.
func NewNotificationHandler(subscriber broadcast.Subscriber, allowedOrigins []string) *NotificationHandler {
	return &NotificationHandler{
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

type client struct {
	conn *websocket.Conn
	log  *zap.Logger
}

func (c *client) setState(s connState) {
	c.log.Debug("websocket state changed", zap.Stringer("state", s))
}

func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	if h.subscriber == nil {
		response.ResponseError(c, apperror.ErrUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("failed to upgrade websocket", zap.Error(err))
		return
	}

	cl := &client{conn: conn, log: logger.FromContext(c.Request.Context())}
	cl.setState(stateConnecting)
	metrics.WebsocketConnections.Inc()
	defer func() {
		metrics.WebsocketConnections.Dec()
		conn.Close()
		cl.setState(stateClosed)
	}()

	sub, err := h.subscriber.Subscribe(c.Request.Context(), notification.Channel)
	if err != nil {
		cl.log.Error("failed to subscribe to notifications", zap.Error(err))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "notifications unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Close()
	cl.setState(stateSubscribed)

	clientClosed := make(chan struct{})
	go cl.readPump(clientClosed)
	cl.writePump(sub.Messages(), clientClosed)
}

// readPump drains inbound frames so control frames are processed. Message
// content of any size is discarded without closing the connection.
func (c *client) readPump(done chan<- struct{}) {
	defer close(done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, r, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if _, err := io.Copy(io.Discard, r); err != nil {
			c.log.Debug("websocket read failed", zap.Error(err))
			return
		}
	}
}

func (c *client) writePump(messages <-chan []byte, clientClosed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-messages:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("failed to write websocket message", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-clientClosed:
			return
		}
	}
}
