package gallery

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
	"portrait-studio-server/modules/common/token"
)

// SelectionRequest - POST /selection body
type SelectionRequest struct {
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	FlowType string `json:"flowType"`
}

// GalleryResponse - GET /gallery/{email} reply
type GalleryResponse struct {
	Success      bool                      `json:"success"`
	Message      string                    `json:"message,omitempty"`
	Images       []model.StoredImageRecord `json:"images"`
	Count        int                       `json:"count"`
	OmittedCount int                       `json:"omittedCount"`
}

// StatusResponse - reply for selection and delete
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Handler - HTTP layer for the image gallery
type Handler struct {
	store  persist.Store
	secret string
}

// NewHandler - create gallery handler
func NewHandler(store persist.Store, secret string) *Handler {
	return &Handler{store: store, secret: secret}
}

// RegisterRoutes - register gallery routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/gallery/{email}", h.HandleGallery).Methods("GET")
	r.HandleFunc("/selection", h.HandleSelection).Methods("POST")
	r.HandleFunc("/image/{imageId}", h.HandleDeleteImage).Methods("DELETE")
}

// checkToken rejects a request only when it carries a token that fails to
// verify. Requests without a token pass through; the mobile client predates
// token auth and still calls these endpoints bare.
func (h *Handler) checkToken(w http.ResponseWriter, r *http.Request) bool {
	raw := token.FromAuthorizationHeader(r.Header.Get("Authorization"))
	if raw == "" {
		return true
	}
	if _, err := token.Verify(h.secret, raw); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid token")
		return false
	}
	return true
}

// HandleGallery - GET /gallery/{email}
func (h *Handler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	if !h.checkToken(w, r) {
		return
	}

	email := mux.Vars(r)["email"]
	if email == "" {
		writeStatus(w, http.StatusBadRequest, "email is required")
		return
	}

	images, omitted, err := h.store.Gallery(r.Context(), email)
	if err != nil {
		log.Printf("❌ [Gallery] Fetch failed for %s: %v", email, err)
		writeStatus(w, http.StatusInternalServerError, "gallery fetch failed")
		return
	}

	if omitted > 0 {
		log.Printf("⚠️  [Gallery] %d unreadable record(s) omitted for %s", omitted, email)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GalleryResponse{
		Success:      true,
		Images:       images,
		Count:        len(images),
		OmittedCount: omitted,
	})
}

// HandleSelection - POST /selection
func (h *Handler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	if !h.checkToken(w, r) {
		return
	}

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.ImageURL == "" {
		writeStatus(w, http.StatusBadRequest, "email and imageUrl are required")
		return
	}

	err := h.store.SaveSelection(r.Context(), req.Email, req.ImageURL, persist.Metadata{
		Prompt:   req.Prompt,
		Source:   model.SourceSelection,
		FlowType: req.FlowType,
	})
	if err != nil {
		if errors.Is(err, persist.ErrInlineRejected) || errors.Is(err, persist.ErrInvalidImageURL) {
			writeStatus(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("❌ [Gallery] Selection save failed for %s: %v", req.Email, err)
		writeStatus(w, http.StatusInternalServerError, "selection save failed")
		return
	}

	log.Printf("✅ [Gallery] Selection saved for %s", req.Email)
	writeStatus(w, http.StatusOK, "")
}

// HandleDeleteImage - DELETE /image/{imageId}
func (h *Handler) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if !h.checkToken(w, r) {
		return
	}

	imageID := mux.Vars(r)["imageId"]
	if imageID == "" {
		writeStatus(w, http.StatusBadRequest, "imageId is required")
		return
	}

	found, err := h.store.DeleteImage(r.Context(), imageID)
	if err != nil {
		log.Printf("❌ [Gallery] Delete failed for %s: %v", imageID, err)
		writeStatus(w, http.StatusInternalServerError, "image deletion failed")
		return
	}
	if !found {
		writeStatus(w, http.StatusNotFound, "no image with this id")
		return
	}

	log.Printf("✅ [Gallery] Image deleted: %s", imageID)
	writeStatus(w, http.StatusOK, "")
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(StatusResponse{Success: status < 400, Message: message})
}
