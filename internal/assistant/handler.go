package assistant

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/auth"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type replyPayload struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Session is a single assistant WebSocket connection.
type Session struct {
	ID      string
	UserID  uuid.UUID
	conn    *websocket.Conn
	send    chan WSMessage
	matcher *Matcher
	logger  *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the assistant session loop.
// The identity token comes in as a query param because browsers cannot set
// headers on WebSocket dials.
func ServeWs(matcher *Matcher, jwtService *auth.JWTService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		s := &Session{
			ID:      uuid.New().String(),
			UserID:  claims.UserID,
			conn:    conn,
			send:    make(chan WSMessage, 32),
			matcher: matcher,
			logger:  logger,
		}
		go s.writePump()
		s.readPump()
	}
}

func (s *Session) readPump() {
	defer func() {
		close(s.send)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(8192)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	s.send <- WSMessage{Event: "assistant_reply", Data: mustJSON(replyPayload{
		Message: "Hi! I'm the Lumora assistant. Ask me about enrollments, payments, video playback, certificates or refunds.",
		At:      time.Now(),
	})}

	for {
		var msg WSMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Event {
		case "chat_message":
			var payload chatPayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Message == "" {
				continue
			}
			reply := s.matcher.Reply(payload.Message)
			s.send <- WSMessage{Event: "assistant_reply", Data: mustJSON(replyPayload{Message: reply, At: time.Now()})}
		default:
			// ignore
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func mustJSON(v interface{}) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
