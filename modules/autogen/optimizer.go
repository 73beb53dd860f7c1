package autogen

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// maxOptimizedChars is the hard cap on the optimized scene description.
// Longer outputs are cut at the last word boundary before the cap.
const maxOptimizedChars = 700

const optimizerInstruction = `You write scene descriptions for AI portrait photography.
Given the text of a social media post, infer its theme and describe a single portrait scene that matches it.

Map themes to settings:
- career milestone, promotion, new job → modern office or conference stage
- technical or engineering content → workstation with screens, studio lighting
- celebration, personal achievement → warm golden-hour outdoor scene
- thought leadership, opinion piece → minimalist studio, neutral backdrop
- travel or lifestyle → the location the post describes

Describe only the setting, lighting, framing and mood. Do not describe the person's face or identity.
Keep it under 120 words. Output the description only, no preamble.`

// Optimizer turns free-form post text into a portrait scene description via
// a chat completion. There is no local fallback: when the completion fails
// the auto flow fails, because an unoptimized post makes a poor prompt.
type Optimizer struct {
	client *openai.Client
	model  string
}

// NewOptimizer - create the post-text optimizer
func NewOptimizer(client *openai.Client, model string) *Optimizer {
	return &Optimizer{client: client, model: model}
}

// Optimize - post text to a normalized, capped scene description. refCount
// tells the model how many reference selfies accompany the request.
func (o *Optimizer) Optimize(ctx context.Context, postText string, refCount int) (string, error) {
	userContent := fmt.Sprintf("Post:\n%s\n\nThe subject appears in %d reference photo(s); the scene must fit a single person.",
		postText, refCount)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: optimizerInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("prompt optimization failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("prompt optimization returned no choices")
	}

	scene := collapseWhitespace(resp.Choices[0].Message.Content)
	if scene == "" {
		return "", fmt.Errorf("prompt optimization returned empty content")
	}

	if capped := capAtWordBoundary(scene, maxOptimizedChars); capped != scene {
		log.Printf("⚠️  [AutoGen] Optimized prompt capped: %d → %d chars", len(scene), len(capped))
		scene = capped
	}

	return scene, nil
}

// collapseWhitespace folds runs of spaces and newlines into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capAtWordBoundary cuts s to at most limit bytes, ending at the last space
// before the limit when one exists, never splitting a rune.
func capAtWordBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	trimmed := s[:cut]
	if idx := strings.LastIndexByte(trimmed, ' '); idx > 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
