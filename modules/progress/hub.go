package progress

import (
	"log"
	"sync"
)

// Event - one generation progress update for a job
type Event struct {
	JobID   string `json:"jobId"`
	Stage   string `json:"stage"`
	Index   int    `json:"index,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// Event stages
const (
	StageGenerating     = "generating"
	StageImageCompleted = "image_completed"
	StageImageFailed    = "image_failed"
	StageDone           = "done"
)

// Hub fans generation events out to WebSocket subscribers per job id. The
// only in-memory shared state in the service.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub - create an empty hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe - register a listener for one job id
func (h *Hub) Subscribe(jobID string) chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[jobID] == nil {
		h.subscribers[jobID] = make(map[chan Event]struct{})
	}
	h.subscribers[jobID][ch] = struct{}{}

	log.Printf("👤 [Progress] Subscriber joined job %s (listeners: %d)", jobID, len(h.subscribers[jobID]))
	return ch
}

// Unsubscribe - remove a listener and close its channel
func (h *Hub) Unsubscribe(jobID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[jobID]; ok {
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, jobID)
		}
	}
}

// Publish - send an event to every listener of the job. Nil-safe and
// non-blocking: slow listeners drop events rather than stalling generation.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}
}
