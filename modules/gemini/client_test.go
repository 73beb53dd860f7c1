package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func inlineImageResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{
					InlineData: &genai.Blob{MIMEType: "image/png", Data: data},
				}},
			},
		}},
	}
}

func newTestClient(call callFunc) *Client {
	return &Client{model: "test-model", retryDelay: 0, call: call}
}

func TestGenerateOneRetriesOnceThenSucceeds(t *testing.T) {
	calls := 0
	client := newTestClient(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient upstream failure")
		}
		return inlineImageResponse([]byte("portrait-bytes")), nil
	})

	image, err := client.GenerateOne(context.Background(), "studio portrait", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
	if string(image.Data) != "portrait-bytes" {
		t.Errorf("unexpected image payload %q", image.Data)
	}
}

func TestGenerateOneFailsAfterTwoAttempts(t *testing.T) {
	calls := 0
	client := newTestClient(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, errors.New("upstream down")
	})

	if _, err := client.GenerateOne(context.Background(), "studio portrait", nil); err == nil {
		t.Fatal("expected error when upstream always fails")
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want exactly 2", calls)
	}
}

func TestGenerateOneSendsReferenceParts(t *testing.T) {
	var gotParts int
	client := newTestClient(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotParts = len(contents[0].Parts)
		return inlineImageResponse([]byte("x")), nil
	})

	refs := []ReferenceImage{
		{MIMEType: "image/jpeg", Data: []byte("selfie-1")},
		{MIMEType: "image/png", Data: []byte("selfie-2")},
	}
	if _, err := client.GenerateOne(context.Background(), "prompt", refs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// two inline parts plus the prompt text part
	if gotParts != 3 {
		t.Errorf("parts sent = %d, want 3", gotParts)
	}
}

func TestExtractImagePrefersInlineData(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "here is your portrait"},
					{InlineData: &genai.Blob{MIMEType: "image/webp", Data: []byte("inline")}},
				},
			},
		}},
	}

	image, err := extractImage(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.MIMEType != "image/webp" || string(image.Data) != "inline" {
		t.Errorf("got %q/%q", image.MIMEType, image.Data)
	}
}

func TestExtractImageFallsBackToDataURLText(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("text-embedded"))
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "result: data:image/jpeg;base64," + payload},
				},
			},
		}},
	}

	image, err := extractImage(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.MIMEType != "image/jpeg" || string(image.Data) != "text-embedded" {
		t.Errorf("got %q/%q", image.MIMEType, image.Data)
	}
}

func TestExtractImageSurfacesFinishReason(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonSafety,
			Content:      &genai.Content{Parts: []*genai.Part{{Text: "blocked"}}},
		}},
	}

	_, err := extractImage(resp)
	if err == nil {
		t.Fatal("expected error for image-less response")
	}
	if got := err.Error(); !strings.Contains(got, string(genai.FinishReasonSafety)) {
		t.Errorf("error %q should mention the finish reason", got)
	}
}
