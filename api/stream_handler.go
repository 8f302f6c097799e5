package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	snapshotMessageType = "projects.snapshot"

	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 512
)

type streamHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  ProjectStore
	upgrader  websocket.Upgrader
}

func newStreamHandler(projects ProjectStore, allowedOrigins []string) streamHandler {
	logger := log.With().Str("handlerName", "streamHandler").Logger()

	return streamHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(allowedOrigins, origin)
			},
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// streamConn serializes writes from the snapshot deliveries and the pinger.
type streamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *streamConn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// streamProjects pushes the full collection on connect and after every change
// @Summary Live project stream
// @Description WebSocket. Every message is a projects.snapshot with the whole collection.
// @Tags Projects
// @Success 101 {object} SnapshotMessage "Switching protocols"
// @Router /projects/stream [get]
func (h streamHandler) streamProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already answered the client
			h.logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		stream := &streamConn{conn: conn}
		defer conn.Close()

		unsubscribe, err := h.projects.Subscribe(r.Context(), func(projects []models.Project) {
			frame, err := json.Marshal(SnapshotMessage{
				Type:     snapshotMessageType,
				Projects: projects,
				SentAt:   time.Now().UTC(),
			})
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode snapshot")
				return
			}
			if err := stream.write(websocket.TextMessage, frame); err != nil {
				h.logger.Debug().Err(err).Msg("snapshot write failed, closing stream")
				conn.Close()
			}
		})
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to subscribe to projects")
			closeMsg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "projects unavailable")
			_ = stream.write(websocket.CloseMessage, closeMsg)
			return
		}
		defer unsubscribe()

		done := make(chan struct{})
		defer close(done)
		go h.ping(stream, done)

		h.readLoop(conn)
	}
}

// readLoop discards client messages and returns once the socket is gone.
func (h streamHandler) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug().Err(err).Msg("project stream closed unexpectedly")
			}
			return
		}
	}
}

func (h streamHandler) ping(stream *streamConn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := stream.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
