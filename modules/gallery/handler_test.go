package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
	"portrait-studio-server/modules/common/token"
)

type memoryStore struct {
	records    map[string]model.StoredImageRecord
	selections []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]model.StoredImageRecord{}}
}

func (m *memoryStore) SaveGenerated(ctx context.Context, owner string, images []model.GeneratedImage, meta persist.Metadata) []string {
	return nil
}

func (m *memoryStore) SaveSelection(ctx context.Context, owner, value string, meta persist.Metadata) error {
	if persist.IsInlinePayload(value) {
		return persist.ErrInlineRejected
	}
	if !persist.IsHostedURL(value) {
		return persist.ErrInvalidImageURL
	}
	m.selections = append(m.selections, value)
	return nil
}

func (m *memoryStore) Gallery(ctx context.Context, owner string) ([]model.StoredImageRecord, int, error) {
	var kept []model.StoredImageRecord
	for _, rec := range m.records {
		if rec.OwnerEmail == owner {
			kept = append(kept, rec)
		}
	}
	return kept, 1, nil
}

func (m *memoryStore) DeleteImage(ctx context.Context, imageID string) (bool, error) {
	if _, ok := m.records[imageID]; !ok {
		return false, nil
	}
	delete(m.records, imageID)
	return true, nil
}

func (m *memoryStore) DeleteOwner(ctx context.Context, owner string) error {
	return nil
}

func newTestRouter(store persist.Store) *mux.Router {
	r := mux.NewRouter()
	NewHandler(store, "test-secret").RegisterRoutes(r)
	return r
}

func TestGalleryEndpointReportsOmissions(t *testing.T) {
	store := newMemoryStore()
	store.records["img-1"] = model.StoredImageRecord{ImageID: "img-1", OwnerEmail: "a@b.c", Value: "https://cdn/x"}
	router := newTestRouter(store)

	req := httptest.NewRequest("GET", "/gallery/a@b.c", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp GalleryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if !resp.Success || resp.Count != 1 || resp.OmittedCount != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSelectionEndpointRejectsInlinePayload(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	body := `{"email":"a@b.c","imageUrl":"data:image/png;base64,AAAA"}`
	req := httptest.NewRequest("POST", "/selection", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inline selection: code=%d", rec.Code)
	}
	if len(store.selections) != 0 {
		t.Error("inline payload must not be stored")
	}

	body = `{"email":"a@b.c","imageUrl":"https://cdn/x"}`
	req = httptest.NewRequest("POST", "/selection", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("url selection: code=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(store.selections) != 1 || store.selections[0] != "https://cdn/x" {
		t.Errorf("url not stored: %v", store.selections)
	}
}

func TestSelectionEndpointRejectsNonURLValue(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	// Neither an inline payload nor an http(s) URL: a client error, not a
	// server one.
	body := `{"email":"a@b.c","imageUrl":"ftp://files/x.png"}`
	req := httptest.NewRequest("POST", "/selection", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-url selection: code=%d, want 400", rec.Code)
	}
	if len(store.selections) != 0 {
		t.Error("invalid value must not be stored")
	}
}

func TestDeleteImageEndpoint(t *testing.T) {
	store := newMemoryStore()
	store.records["img-1"] = model.StoredImageRecord{ImageID: "img-1", OwnerEmail: "a@b.c", Value: "https://cdn/x"}
	router := newTestRouter(store)

	req := httptest.NewRequest("DELETE", "/image/img-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete existing: code=%d", rec.Code)
	}

	req = httptest.NewRequest("DELETE", "/image/img-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing: code=%d", rec.Code)
	}
}

func TestTokenHandling(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	// Malformed token is rejected.
	req := httptest.NewRequest("GET", "/gallery/a@b.c", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed token: code=%d", rec.Code)
	}

	// A valid token passes.
	good, err := token.Issue("test-secret", "a@b.c", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest("GET", "/gallery/a@b.c", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: code=%d", rec.Code)
	}
}
