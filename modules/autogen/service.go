package autogen

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
	"portrait-studio-server/modules/gemini"
	"portrait-studio-server/modules/generate"
)

// Auto mode asks for two variants first, then retries with a single image
// before giving up. Two is enough choice for a pick-one UI and halves the
// retry cost when the upstream is flaky.
var countLadder = []int{2, 1}

// PromptOptimizer - the optimizer slice the auto flow needs
type PromptOptimizer interface {
	Optimize(ctx context.Context, postText string, refCount int) (string, error)
}

// BatchGenerator - the generation slice the auto flow reuses
type BatchGenerator interface {
	DecodeReferences(photos []string) ([]gemini.ReferenceImage, error)
	GenerateBatch(ctx context.Context, jobID, prompt string, refs []gemini.ReferenceImage, count int) ([]model.GeneratedImage, error)
}

// Service - post-driven portrait generation
type Service struct {
	optimizer PromptOptimizer
	generator BatchGenerator
	store     persist.Store
}

// Result - what the auto flow produced. Prompt is the full text sent to
// generation; OptimizedPrompt is the optimizer's scene description alone.
type Result struct {
	URLs            []string
	Prompt          string
	OptimizedPrompt string
}

// NewService - create the auto-generation service
func NewService(optimizer PromptOptimizer, generator BatchGenerator, store persist.Store) *Service {
	return &Service{optimizer: optimizer, generator: generator, store: store}
}

// GenerateFromPost - optimize the post text, then walk the count ladder
// until at least one image is produced.
func (s *Service) GenerateFromPost(ctx context.Context, jobID, owner, postText string, photos []string) (*Result, error) {
	scene, err := s.optimizer.Optimize(ctx, postText, len(photos))
	if err != nil {
		return nil, err
	}
	prompt := scene + "\n\n" + generate.FidelityClause

	refs, err := s.generator.DecodeReferences(photos)
	if err != nil {
		return nil, err
	}

	var images []model.GeneratedImage
	var lastErr error
	for i, count := range countLadder {
		images, lastErr = s.generator.GenerateBatch(ctx, jobID, prompt, refs, count)
		if lastErr == nil && len(images) > 0 {
			break
		}
		if i < len(countLadder)-1 {
			log.Printf("⚠️  [AutoGen] Batch of %d produced nothing, stepping down (job %s)", count, jobID)
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("auto generation exhausted retries: %w", lastErr)
	}

	images = dedupeImages(images)

	urls := s.store.SaveGenerated(ctx, owner, images, persist.Metadata{
		Prompt:   prompt,
		Source:   model.SourceAuto,
		FlowType: "post",
	})

	return &Result{URLs: urls, Prompt: prompt, OptimizedPrompt: scene}, nil
}

// dedupeImages drops byte-identical variants; the upstream occasionally
// returns the same image twice for a batch of two.
func dedupeImages(images []model.GeneratedImage) []model.GeneratedImage {
	unique := images[:1]
	for _, img := range images[1:] {
		duplicate := false
		for _, kept := range unique {
			if img.MIMEType == kept.MIMEType && bytes.Equal(img.Data, kept.Data) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, img)
		}
	}
	if len(unique) < len(images) {
		log.Printf("⚠️  [AutoGen] Dropped %d duplicate variant(s)", len(images)-len(unique))
	}
	return unique
}
