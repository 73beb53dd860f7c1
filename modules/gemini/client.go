package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"portrait-studio-server/modules/common/model"
)

const (
	// maxAttempts: one call plus exactly one retry per image.
	maxAttempts = 2

	// maxReferenceImages caps the inline parts sent with one call.
	maxReferenceImages = 10
)

// dataURLPattern matches an image data URL embedded in a text part. Some
// model responses return the image that way instead of as inline data.
var dataURLPattern = regexp.MustCompile(`data:(image/[a-z0-9+.-]+);base64,([A-Za-z0-9+/=]+)`)

// ReferenceImage - one user selfie sent as an inline part
type ReferenceImage struct {
	MIMEType string
	Data     []byte
}

type callFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client wraps the Gemini API for portrait generation.
type Client struct {
	model      string
	retryDelay time.Duration
	call       callFunc
}

// NewClient - create the generation client against the Gemini API backend
func NewClient(ctx context.Context, apiKey, modelName string, retryDelay time.Duration) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Genai client: %w", err)
	}

	log.Printf("✅ [Gemini] Client initialized (model: %s)", modelName)
	return &Client{
		model:      modelName,
		retryDelay: retryDelay,
		call:       genaiClient.Models.GenerateContent,
	}, nil
}

// GenerateOne - one portrait from the prompt plus reference selfies. Retries
// exactly once after the fixed delay, then propagates the last error.
func (c *Client) GenerateOne(ctx context.Context, prompt string, refs []ReferenceImage) (*model.GeneratedImage, error) {
	if len(refs) > maxReferenceImages {
		refs = refs[:maxReferenceImages]
	}

	var parts []*genai.Part
	for _, ref := range refs {
		mime := ref.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mime,
				Data:     ref.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{{Parts: parts}}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("🔄 [Gemini] Retry attempt %d/%d after %v", attempt, maxAttempts, c.retryDelay)
			time.Sleep(c.retryDelay)
		}

		result, err := c.call(ctx, c.model, contents, &genai.GenerateContentConfig{})
		if err != nil {
			lastErr = fmt.Errorf("Gemini API call failed: %w", err)
			log.Printf("❌ [Gemini] Attempt %d/%d failed: %v", attempt, maxAttempts, err)
			continue
		}

		image, err := extractImage(result)
		if err != nil {
			lastErr = err
			log.Printf("❌ [Gemini] Attempt %d/%d returned no image: %v", attempt, maxAttempts, err)
			continue
		}

		log.Printf("✅ [Gemini] Received image: %d bytes (%s)", len(image.Data), image.MIMEType)
		return image, nil
	}

	return nil, fmt.Errorf("image generation failed after %d attempts: %w", maxAttempts, lastErr)
}

// extractImage walks candidates in order, parts in order, preferring inline
// data and falling back to a data URL inside a text part.
func extractImage(result *genai.GenerateContentResponse) (*model.GeneratedImage, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	var finishReasons []string
	for _, candidate := range result.Candidates {
		if candidate.FinishReason != "" {
			finishReasons = append(finishReasons, string(candidate.FinishReason))
		}
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return &model.GeneratedImage{MIMEType: mime, Data: part.InlineData.Data}, nil
			}

			if part.Text != "" {
				if match := dataURLPattern.FindStringSubmatch(part.Text); match != nil {
					data, err := base64.StdEncoding.DecodeString(match[2])
					if err == nil && len(data) > 0 {
						return &model.GeneratedImage{MIMEType: match[1], Data: data}, nil
					}
				}
			}
		}
	}

	if len(finishReasons) > 0 {
		return nil, fmt.Errorf("no image data in response (finish reason: %s)", strings.Join(finishReasons, ", "))
	}
	return nil, fmt.Errorf("no image data in response")
}
