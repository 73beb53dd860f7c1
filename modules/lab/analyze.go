package lab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const analyzerInstruction = `You analyze social media post text for a portrait generator.
Respond with strict JSON, no markdown fences: {"theme": "...", "setting": "...", "tone": "..."}
theme: the post's subject in a few words. setting: a portrait backdrop that suits it. tone: one of professional, celebratory, casual, thoughtful.`

// PostAnalysis - what /post/analyze returns
type PostAnalysis struct {
	Theme   string `json:"theme"`
	Setting string `json:"setting"`
	Tone    string `json:"tone"`
}

// Analyzer classifies post text so the lab flows can match candidates to it.
type Analyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer - create the post analyzer
func NewAnalyzer(client *openai.Client, model string) *Analyzer {
	return &Analyzer{client: client, model: model}
}

// Analyze - post text to theme/setting/tone
func (a *Analyzer) Analyze(ctx context.Context, postText string) (*PostAnalysis, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzerInstruction},
			{Role: openai.ChatMessageRoleUser, Content: postText},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("post analysis failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("post analysis returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Models wrap JSON in fences no matter what the instruction says.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var analysis PostAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("post analysis returned unparseable content: %w", err)
	}
	if analysis.Theme == "" {
		return nil, fmt.Errorf("post analysis returned empty theme")
	}
	return &analysis, nil
}
