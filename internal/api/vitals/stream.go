package vitals

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/aetheris-health/aetheris/internal/stream"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Inbound messages are ignored, so a small limit suffices.
	maxInboundSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Monitoring dashboards connect from arbitrary origins on the
	// hospital network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream upgrades the connection to a WebSocket and attaches it as an
// observer of the patient's vitals session. The first observer starts
// telemetry; the connection is force-closed if it cannot keep up with
// the alert stream.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "patient id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		log.Printf("websocket upgrade for %s: %v", patientID, err)
		return
	}

	obs := h.streams.Attach(patientID)
	defer h.streams.Detach(patientID, obs)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, patientID, obs)
}

// readPump drains inbound frames. Clients send nothing meaningful, but
// reading is required to process pong and close frames.
func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxInboundSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards observer frames to the peer and keeps the
// connection alive with periodic pings.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, patientID string, obs *stream.Observer) {
	defer conn.Close()

	frames := make(chan []byte)
	go func() {
		defer close(frames)
		for {
			data, ok := obs.Next(ctx)
			if !ok {
				return
			}
			select {
			case frames <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-frames:
			if !ok {
				// Observer closed: either the context ended or the
				// session evicted a slow consumer.
				select {
				case <-obs.Done():
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream backlog exceeded"))
				default:
				}
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("vitals stream write for %s: %v", patientID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}
