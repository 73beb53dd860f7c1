package autogen

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"portrait-studio-server/modules/generate"
)

const maxAutoPhotos = 2

// AutoGenerateRequest - POST /generate-auto body
type AutoGenerateRequest struct {
	Email    string   `json:"email"`
	PostText string   `json:"postText"`
	Photos   []string `json:"photos"`
}

// AutoGenerateResponse - POST /generate-auto reply
type AutoGenerateResponse struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message,omitempty"`
	ImageURLs       []string `json:"imageUrls,omitempty"`
	Prompt          string   `json:"prompt,omitempty"`
	OptimizedPrompt string   `json:"optimizedPrompt,omitempty"`
	JobID           string   `json:"jobId,omitempty"`
}

// Handler - HTTP layer for post-driven generation. A nil service means the
// OpenAI configuration is absent and the endpoint reports that instead of
// panicking.
type Handler struct {
	service *Service
}

// NewHandler - create autogen handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - register autogen routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/generate-auto", h.HandleGenerateAuto).Methods("POST")
}

// HandleGenerateAuto - POST /generate-auto
func (h *Handler) HandleGenerateAuto(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeJSON(w, http.StatusInternalServerError, AutoGenerateResponse{
			Success: false,
			Message: "missing configuration: OPENAI_API_KEY is not set",
		})
		return
	}

	var req AutoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AutoGenerateResponse{Success: false, Message: "invalid request body"})
		return
	}

	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, AutoGenerateResponse{Success: false, Message: "email is required"})
		return
	}
	if req.PostText == "" {
		writeJSON(w, http.StatusBadRequest, AutoGenerateResponse{Success: false, Message: "postText is required"})
		return
	}
	if len(req.Photos) == 0 || len(req.Photos) > maxAutoPhotos {
		writeJSON(w, http.StatusBadRequest, AutoGenerateResponse{Success: false, Message: "between 1 and 2 photos are required"})
		return
	}

	jobID := uuid.NewString()
	log.Printf("🚀 [AutoGen] Request from %s: post=%d chars, photos=%d (job %s)",
		req.Email, len(req.PostText), len(req.Photos), jobID)

	result, err := h.service.GenerateFromPost(r.Context(), jobID, req.Email, req.PostText, req.Photos)
	if err != nil {
		if errors.Is(err, generate.ErrInvalidPhoto) {
			writeJSON(w, http.StatusBadRequest, AutoGenerateResponse{Success: false, Message: err.Error()})
			return
		}
		log.Printf("❌ [AutoGen] Failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusBadGateway, AutoGenerateResponse{Success: false, Message: "auto generation failed: " + err.Error()})
		return
	}

	log.Printf("✅ [AutoGen] Done for %s: %d image(s) (job %s)", req.Email, len(result.URLs), jobID)
	writeJSON(w, http.StatusOK, AutoGenerateResponse{
		Success:         true,
		ImageURLs:       result.URLs,
		Prompt:          result.Prompt,
		OptimizedPrompt: result.OptimizedPrompt,
		JobID:           jobID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body AutoGenerateResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
