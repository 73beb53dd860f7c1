package lab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const (
	scrapeTimeout     = 20 * time.Second
	maxScrapedBody    = 4 << 20 // 4 MiB of HTML is plenty for a profile page
	maxCandidateLinks = 20
)

// Scraper extracts candidate portrait URLs from a public profile page.
type Scraper interface {
	CandidateImages(ctx context.Context, profileURL string) ([]string, error)
}

// Image links appear either as bare URLs or inside src/content attributes.
var (
	imageURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+\.(?:jpe?g|png|webp)(?:\?[^\s"'<>\\]*)?`)
	srcAttrPattern  = regexp.MustCompile(`(?:src|content)\s*=\s*["'](https?://[^"']+)["']`)
	imageExtPattern = regexp.MustCompile(`\.(?:jpe?g|png|webp)(?:\?|$)`)
)

// RegexScraper - naive HTML scraper. Good enough for the lab flows; a real
// DOM walk is out of scope.
type RegexScraper struct {
	httpClient *http.Client
}

// NewRegexScraper - create the default scraper
func NewRegexScraper() *RegexScraper {
	return &RegexScraper{httpClient: &http.Client{Timeout: scrapeTimeout}}
}

// CandidateImages - fetch the page and collect image URLs, deduplicated and
// capped.
func (s *RegexScraper) CandidateImages(ctx context.Context, profileURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid profile url: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; portrait-studio/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapedBody))
	if err != nil {
		return nil, fmt.Errorf("profile read failed: %w", err)
	}

	return ExtractImageURLs(string(body)), nil
}

// ExtractImageURLs - pull image URLs out of raw HTML
func ExtractImageURLs(html string) []string {
	seen := make(map[string]struct{})
	var urls []string

	add := func(url string) {
		if len(urls) >= maxCandidateLinks {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}

	for _, url := range imageURLPattern.FindAllString(html, -1) {
		add(url)
	}
	for _, match := range srcAttrPattern.FindAllStringSubmatch(html, -1) {
		if imageExtPattern.MatchString(match[1]) {
			add(match[1])
		}
	}

	return urls
}
