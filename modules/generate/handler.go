package generate

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"portrait-studio-server/modules/common/fallback"
	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
)

const maxUploadPhotos = 10

// Handler - HTTP layer for portrait generation
type Handler struct {
	service *Service
}

// NewHandler - create generate handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - register generate routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/generate", h.HandleGenerate).Methods("POST")
}

// HandleGenerate - POST /generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if len(req.Photos) == 0 {
		writeError(w, http.StatusBadRequest, "at least one photo is required")
		return
	}
	if len(req.Photos) > maxUploadPhotos {
		writeError(w, http.StatusBadRequest, "too many photos: maximum is 10")
		return
	}

	style := fallback.SafeString(req.Style, "")
	prompt := BuildPrompt(style)
	jobID := uuid.NewString()

	log.Printf("🚀 [Generate] Request from %s: style=%q photos=%d (job %s)",
		req.Email, style, len(req.Photos), jobID)

	result, err := h.service.GenerateAndPersist(r.Context(), jobID, req.Email, prompt, req.Photos, req.NumberOfImages, persist.Metadata{
		Prompt: prompt,
		Source: model.SourceGenerate,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPhoto) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("❌ [Generate] Generation failed for %s: %v", req.Email, err)
		writeError(w, http.StatusBadGateway, "image generation failed: "+err.Error())
		return
	}

	log.Printf("✅ [Generate] Done for %s: %d/%d images (job %s)",
		req.Email, result.ActualCount, result.RequestedCount, jobID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GenerateResponse{
		Success:        true,
		ImageURLs:      result.ImageURLs,
		Prompt:         prompt,
		RequestedCount: result.RequestedCount,
		ActualCount:    result.ActualCount,
		JobID:          jobID,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(GenerateResponse{Success: false, Message: message})
}
