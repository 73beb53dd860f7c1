package progress

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients live on another origin; same policy as the
		// CORS middleware.
		return true
	},
}

// Handler streams job progress events over WebSocket.
type Handler struct {
	hub *Hub
}

// NewHandler - create the progress WebSocket handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes - attach /ws/progress
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws/progress", h.HandleProgress)
	log.Println("✅ Progress route registered: /ws/progress")
}

// HandleProgress - GET /ws/progress?job=<id>
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "missing job parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Progress] WebSocket upgrade failed: %v", err)
		return
	}

	ch := h.hub.Subscribe(jobID)
	defer h.hub.Unsubscribe(jobID, ch)
	defer conn.Close()

	// Drain client frames so close messages are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("❌ [Progress] WebSocket write error: %v", err)
				return
			}
			if event.Stage == StageDone {
				return
			}
		case <-done:
			return
		}
	}
}
