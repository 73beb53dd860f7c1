package lab

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// IngestRequest - POST /ingest body
type IngestRequest struct {
	ProfileURL string `json:"profileUrl"`
}

// TagRequest - POST /tag body
type TagRequest struct {
	ImageURL string `json:"imageUrl"`
}

// TagBatchRequest - POST /tag/batch body
type TagBatchRequest struct {
	ImageURLs []string `json:"imageUrls"`
}

// AnalyzeRequest - POST /post/analyze body
type AnalyzeRequest struct {
	PostText string `json:"postText"`
}

// SelectRequest - POST /select body
type SelectRequest struct {
	Email      string      `json:"email"`
	Candidates []Candidate `json:"candidates"`
	PostTheme  string      `json:"postTheme"`
}

// LabResponse - common reply envelope for the lab endpoints
type LabResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message,omitempty"`
	ImageURLs []string            `json:"imageUrls,omitempty"`
	Tags      []string            `json:"tags,omitempty"`
	JobID     string              `json:"jobId,omitempty"`
	Status    string              `json:"status,omitempty"`
	BatchTags map[string][]string `json:"batchTags,omitempty"`
	Analysis  *PostAnalysis       `json:"analysis,omitempty"`
	Ranked    []RankedCandidate   `json:"ranked,omitempty"`
}

// PostAnalyzer - the analyzer slice the handler needs
type PostAnalyzer interface {
	Analyze(ctx context.Context, postText string) (*PostAnalysis, error)
}

// ImageTagger - the tagger slice the handler needs
type ImageTagger interface {
	Tag(ctx context.Context, imageURL string) []string
}

// BatchQueue - the queue slice the handler needs; nil when Redis is absent
type BatchQueue interface {
	Enqueue(ctx context.Context, job TagJob) error
	Result(ctx context.Context, jobID string) (*TagJobResult, error)
}

// Handler - HTTP layer for the experimental profile-to-portrait flows.
// analyzer and queue are nil when their backing configuration is absent;
// the endpoints report that instead of panicking.
type Handler struct {
	scraper  Scraper
	tagger   ImageTagger
	analyzer PostAnalyzer
	queue    BatchQueue
}

// NewHandler - create lab handler
func NewHandler(scraper Scraper, tagger ImageTagger, analyzer PostAnalyzer, queue BatchQueue) *Handler {
	return &Handler{scraper: scraper, tagger: tagger, analyzer: analyzer, queue: queue}
}

// RegisterRoutes - register lab routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ingest", h.HandleIngest).Methods("POST")
	r.HandleFunc("/tag", h.HandleTag).Methods("POST")
	r.HandleFunc("/tag/batch", h.HandleTagBatch).Methods("POST")
	r.HandleFunc("/tag/batch/{jobId}", h.HandleTagBatchResult).Methods("GET")
	r.HandleFunc("/post/analyze", h.HandleAnalyze).Methods("POST")
	r.HandleFunc("/select", h.HandleSelect).Methods("POST")
}

// HandleIngest - POST /ingest
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProfileURL == "" {
		respond(w, http.StatusBadRequest, LabResponse{Success: false, Message: "profileUrl is required"})
		return
	}

	urls, err := h.scraper.CandidateImages(r.Context(), req.ProfileURL)
	if err != nil {
		log.Printf("❌ [Lab] Ingest failed for %s: %v", req.ProfileURL, err)
		respond(w, http.StatusBadGateway, LabResponse{Success: false, Message: "profile scrape failed: " + err.Error()})
		return
	}

	log.Printf("✅ [Lab] Ingested %s: %d candidate(s)", req.ProfileURL, len(urls))
	respond(w, http.StatusOK, LabResponse{Success: true, ImageURLs: urls})
}

// HandleTag - POST /tag
func (h *Handler) HandleTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageURL == "" {
		respond(w, http.StatusBadRequest, LabResponse{Success: false, Message: "imageUrl is required"})
		return
	}

	tags := h.tagger.Tag(r.Context(), req.ImageURL)
	respond(w, http.StatusOK, LabResponse{Success: true, Tags: tags})
}

// HandleTagBatch - POST /tag/batch
func (h *Handler) HandleTagBatch(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		respond(w, http.StatusInternalServerError, LabResponse{Success: false, Message: "missing configuration: REDIS_URL is not set"})
		return
	}

	var req TagBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ImageURLs) == 0 {
		respond(w, http.StatusBadRequest, LabResponse{Success: false, Message: "imageUrls is required"})
		return
	}

	jobID := uuid.NewString()
	if err := h.queue.Enqueue(r.Context(), TagJob{JobID: jobID, ImageURLs: req.ImageURLs}); err != nil {
		log.Printf("❌ [Lab] Batch enqueue failed: %v", err)
		respond(w, http.StatusInternalServerError, LabResponse{Success: false, Message: "batch enqueue failed"})
		return
	}

	respond(w, http.StatusOK, LabResponse{Success: true, JobID: jobID, Status: "queued"})
}

// HandleTagBatchResult - GET /tag/batch/{jobId}
func (h *Handler) HandleTagBatchResult(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		respond(w, http.StatusInternalServerError, LabResponse{Success: false, Message: "missing configuration: REDIS_URL is not set"})
		return
	}

	jobID := mux.Vars(r)["jobId"]
	result, err := h.queue.Result(r.Context(), jobID)
	if err != nil {
		log.Printf("❌ [Lab] Result fetch failed for %s: %v", jobID, err)
		respond(w, http.StatusInternalServerError, LabResponse{Success: false, Message: "result fetch failed"})
		return
	}
	if result == nil {
		respond(w, http.StatusOK, LabResponse{Success: true, JobID: jobID, Status: "pending"})
		return
	}

	respond(w, http.StatusOK, LabResponse{Success: true, JobID: jobID, Status: result.Status, BatchTags: result.Tags})
}

// HandleAnalyze - POST /post/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respond(w, http.StatusInternalServerError, LabResponse{Success: false, Message: "missing configuration: OPENAI_API_KEY is not set"})
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PostText == "" {
		respond(w, http.StatusBadRequest, LabResponse{Success: false, Message: "postText is required"})
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.PostText)
	if err != nil {
		log.Printf("❌ [Lab] Analysis failed: %v", err)
		respond(w, http.StatusBadGateway, LabResponse{Success: false, Message: "post analysis failed: " + err.Error()})
		return
	}

	respond(w, http.StatusOK, LabResponse{Success: true, Analysis: analysis})
}

// HandleSelect - POST /select
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, LabResponse{Success: false, Message: "invalid request body"})
		return
	}
	if len(req.Candidates) == 0 {
		respond(w, http.StatusBadRequest, LabResponse{Success: false, Message: "candidates is required"})
		return
	}

	ranked := RankCandidates(req.Candidates, req.PostTheme)
	respond(w, http.StatusOK, LabResponse{Success: true, Ranked: ranked})
}

func respond(w http.ResponseWriter, status int, body LabResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
