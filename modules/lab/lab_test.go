package lab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestExtractImageURLs(t *testing.T) {
	html := `
		<html><body>
		<img src="https://cdn.example.com/a.jpg">
		<img src='https://cdn.example.com/b.png?size=large'>
		<meta property="og:image" content="https://cdn.example.com/c.webp">
		<img src="https://cdn.example.com/a.jpg">
		<img src="/relative/skip.jpg">
		<script src="https://cdn.example.com/app.js"></script>
		</body></html>`

	urls := ExtractImageURLs(html)
	want := map[string]bool{
		"https://cdn.example.com/a.jpg":            true,
		"https://cdn.example.com/b.png?size=large": true,
		"https://cdn.example.com/c.webp":           true,
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d: %v", len(want), len(urls), urls)
	}
	for _, url := range urls {
		if !want[url] {
			t.Errorf("unexpected url %q", url)
		}
	}
}

func TestExtractImageURLsCapped(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(`<img src="https://cdn.example.com/p`)
		sb.WriteByte(byte('0' + i%10))
		sb.WriteString(`-img-`)
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString(`.jpg">`)
	}
	if urls := ExtractImageURLs(sb.String()); len(urls) > maxCandidateLinks {
		t.Errorf("cap not enforced: %d urls", len(urls))
	}
}

func TestHeuristicTags(t *testing.T) {
	tags := HeuristicTags("https://cdn.example.com/office-team-photo.jpg")
	joined := strings.Join(tags, ",")
	for _, want := range []string{"portrait", "office", "professional"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected tag %q in %v", want, tags)
		}
	}

	// Deterministic across calls.
	again := strings.Join(HeuristicTags("https://cdn.example.com/office-team-photo.jpg"), ",")
	if joined != again {
		t.Errorf("tags not deterministic: %q vs %q", joined, again)
	}

	if got := HeuristicTags("https://cdn.example.com/x.jpg"); len(got) != 1 || got[0] != "portrait" {
		t.Errorf("bare url should yield only the base tag, got %v", got)
	}
}

func TestRankCandidates(t *testing.T) {
	candidates := []Candidate{
		{URL: "a", Tags: []string{"beach", "casual"}},
		{URL: "b", Tags: []string{"office", "formal", "daylight"}},
		{URL: "c", Tags: []string{"office"}},
	}

	ranked := RankCandidates(candidates, "New office, formal announcement")
	if ranked[0].URL != "b" || ranked[0].Score != 2 {
		t.Fatalf("expected b first with score 2, got %+v", ranked[0])
	}
	if ranked[1].URL != "c" || ranked[1].Score != 1 {
		t.Errorf("expected c second, got %+v", ranked[1])
	}
	if ranked[2].URL != "a" || ranked[2].Score != 0 {
		t.Errorf("expected a last with score 0, got %+v", ranked[2])
	}
}

func TestRankCandidatesStableOnTies(t *testing.T) {
	candidates := []Candidate{
		{URL: "first", Tags: []string{"x"}},
		{URL: "second", Tags: []string{"y"}},
	}
	ranked := RankCandidates(candidates, "unrelated theme")
	if ranked[0].URL != "first" || ranked[1].URL != "second" {
		t.Errorf("tie order not stable: %+v", ranked)
	}
}

type staticScraper struct {
	urls []string
	err  error
}

func (s *staticScraper) CandidateImages(ctx context.Context, profileURL string) ([]string, error) {
	return s.urls, s.err
}

type staticTagger struct{}

func (staticTagger) Tag(ctx context.Context, imageURL string) []string {
	return HeuristicTags(imageURL)
}

func newLabRouter(scraper Scraper, queue BatchQueue) *mux.Router {
	r := mux.NewRouter()
	NewHandler(scraper, staticTagger{}, nil, queue).RegisterRoutes(r)
	return r
}

func TestIngestEndpoint(t *testing.T) {
	router := newLabRouter(&staticScraper{urls: []string{"https://cdn/a.jpg"}}, nil)

	req := httptest.NewRequest("POST", "/ingest", strings.NewReader(`{"profileUrl":"https://example.com/me"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp LabResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || len(resp.ImageURLs) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}

	req = httptest.NewRequest("POST", "/ingest", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty ingest: code=%d", rec.Code)
	}
}

func TestTagBatchWithoutRedisReportsConfiguration(t *testing.T) {
	router := newLabRouter(&staticScraper{}, nil)

	req := httptest.NewRequest("POST", "/tag/batch", strings.NewReader(`{"imageUrls":["https://cdn/a.jpg"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing configuration") {
		t.Errorf("expected configuration message, got %s", rec.Body.String())
	}
}

func TestAnalyzeWithoutOpenAIReportsConfiguration(t *testing.T) {
	router := newLabRouter(&staticScraper{}, nil)

	req := httptest.NewRequest("POST", "/post/analyze", strings.NewReader(`{"postText":"shipped"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSelectEndpoint(t *testing.T) {
	router := newLabRouter(&staticScraper{}, nil)

	body := `{"email":"a@b.c","postTheme":"office move","candidates":[{"url":"a","tags":["beach"]},{"url":"b","tags":["office"]}]}`
	req := httptest.NewRequest("POST", "/select", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp LabResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Ranked) != 2 || resp.Ranked[0].URL != "b" {
		t.Errorf("unexpected ranking: %+v", resp.Ranked)
	}
}
