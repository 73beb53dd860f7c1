package lab

import (
	"context"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const taggerInstruction = `You tag portrait photos for a style-matching index.
Given an image URL, respond with 3 to 6 lowercase tags describing the likely setting, formality and mood, comma-separated, nothing else.
Example: office, formal, daylight, confident`

// Tagger produces descriptive tags for a candidate image. Unlike the prompt
// optimizer, tagging degrades gracefully: on upstream failure it falls back
// to heuristic tags derived from the URL, because a mediocre tag set still
// lets the selector rank candidates.
type Tagger struct {
	client *openai.Client
	model  string
}

// NewTagger - create the image tagger. A nil client forces heuristic mode.
func NewTagger(client *openai.Client, model string) *Tagger {
	return &Tagger{client: client, model: model}
}

// Tag - tags for one image URL
func (t *Tagger) Tag(ctx context.Context, imageURL string) []string {
	if t.client == nil {
		return HeuristicTags(imageURL)
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: taggerInstruction},
			{Role: openai.ChatMessageRoleUser, Content: imageURL},
		},
		Temperature: 0.2,
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("⚠️  [Lab] Tagging fell back to heuristics for %s: %v", imageURL, err)
		return HeuristicTags(imageURL)
	}

	tags := parseTagList(resp.Choices[0].Message.Content)
	if len(tags) == 0 {
		return HeuristicTags(imageURL)
	}
	return tags
}

// heuristicKeywords maps URL path fragments to tags, checked in order so
// the fallback stays deterministic.
var heuristicKeywords = []struct{ keyword, tag string }{
	{"office", "office"},
	{"work", "professional"},
	{"team", "professional"},
	{"beach", "outdoor"},
	{"travel", "outdoor"},
	{"event", "event"},
	{"wedding", "formal"},
	{"grad", "graduation"},
	{"conf", "conference"},
}

// HeuristicTags - deterministic tags from the URL alone
func HeuristicTags(imageURL string) []string {
	lower := strings.ToLower(imageURL)
	tags := []string{"portrait"}
	seen := map[string]struct{}{"portrait": {}}

	for _, entry := range heuristicKeywords {
		if !strings.Contains(lower, entry.keyword) {
			continue
		}
		if _, dup := seen[entry.tag]; dup {
			continue
		}
		seen[entry.tag] = struct{}{}
		tags = append(tags, entry.tag)
	}

	return tags
}

func parseTagList(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
