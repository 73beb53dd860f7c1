package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"portrait-studio-server/modules/common/fallback"
	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
	"portrait-studio-server/modules/gemini"
	"portrait-studio-server/modules/progress"
)

// Generation modes
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// ErrInvalidPhoto - a client photo payload that does not decode. A request
// problem, not an upstream one: handlers map it to 400 and nothing retries
// it.
var ErrInvalidPhoto = errors.New("invalid photo payload")

// Generator is the slice of the Gemini client the service needs; tests
// inject fakes through it.
type Generator interface {
	GenerateOne(ctx context.Context, prompt string, refs []gemini.ReferenceImage) (*model.GeneratedImage, error)
}

// Options - orchestration knobs from config
type Options struct {
	Mode                string
	PacingDelay         time.Duration
	ReferenceByteBudget int
}

// Service orchestrates multi-image generation and hands results to the
// persistence strategy.
type Service struct {
	generator Generator
	store     persist.Store
	hub       *progress.Hub
	opts      Options
}

// Result - what a generation request produced. ActualCount may be below
// RequestedCount when the sequential strategy swallowed individual failures.
type Result struct {
	Images         []model.GeneratedImage
	ImageURLs      []string
	RequestedCount int
	ActualCount    int
}

// NewService - build the generation service
func NewService(generator Generator, store persist.Store, hub *progress.Hub, opts Options) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeSequential
	}
	return &Service{
		generator: generator,
		store:     store,
		hub:       hub,
		opts:      opts,
	}
}

// DecodeReferences - client photo payloads into reference images. The
// sequential path truncates oversized encoded payloads to the byte budget
// first - a lossy stopgap against upstream request-size limits.
func (s *Service) DecodeReferences(photos []string) ([]gemini.ReferenceImage, error) {
	refs := make([]gemini.ReferenceImage, 0, len(photos))

	for i, photo := range photos {
		if s.opts.Mode == ModeSequential && s.opts.ReferenceByteBudget > 0 {
			if mime, encoded := fallback.SplitDataURL(photo); len(encoded) > s.opts.ReferenceByteBudget {
				log.Printf("⚠️  [Generate] Reference image %d truncated: %d → %d encoded bytes (lossy)",
					i+1, len(encoded), s.opts.ReferenceByteBudget)
				photo = "data:" + mime + ";base64," + fallback.TruncateEncoded(encoded, s.opts.ReferenceByteBudget)
			}
		}

		mimeType, data, err := fallback.DecodeImageInput(photo)
		if err != nil {
			return nil, fmt.Errorf("photo %d: %w: %v", i+1, ErrInvalidPhoto, err)
		}
		refs = append(refs, gemini.ReferenceImage{MIMEType: mimeType, Data: data})
	}

	return refs, nil
}

// GenerateBatch - produce up to count images for one prompt. Sequential
// mode paces calls and tolerates partial success; parallel mode fans out
// and joins. Either way an error is returned only when zero images succeed.
func (s *Service) GenerateBatch(ctx context.Context, jobID, prompt string, refs []gemini.ReferenceImage, count int) ([]model.GeneratedImage, error) {
	count = fallback.ClampImageCount(count)

	if s.opts.Mode == ModeParallel {
		return s.generateParallel(ctx, jobID, prompt, refs, count)
	}
	return s.generateSequential(ctx, jobID, prompt, refs, count)
}

func (s *Service) generateSequential(ctx context.Context, jobID, prompt string, refs []gemini.ReferenceImage, count int) ([]model.GeneratedImage, error) {
	images := make([]model.GeneratedImage, 0, count)
	var lastErr error

	for i := 0; i < count; i++ {
		if i > 0 && s.opts.PacingDelay > 0 {
			// Fixed pacing between images to stay under upstream rate limits.
			time.Sleep(s.opts.PacingDelay)
		}

		s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageGenerating, Index: i + 1, Total: count})
		log.Printf("🎨 [Generate] Generating image %d/%d (job %s)...", i+1, count, jobID)

		image, err := s.generator.GenerateOne(ctx, prompt, refs)
		if err != nil {
			lastErr = err
			log.Printf("❌ [Generate] Image %d/%d failed: %v", i+1, count, err)
			s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageImageFailed, Index: i + 1, Total: count, Message: err.Error()})
			continue
		}

		images = append(images, *image)
		s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageImageCompleted, Index: i + 1, Total: count})
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("all %d image generations failed: %w", count, lastErr)
	}
	if len(images) < count {
		log.Printf("⚠️  [Generate] Partial success: %d/%d images (job %s)", len(images), count, jobID)
	}
	return images, nil
}

func (s *Service) generateParallel(ctx context.Context, jobID, prompt string, refs []gemini.ReferenceImage, count int) ([]model.GeneratedImage, error) {
	results := make([]*model.GeneratedImage, count)
	errs := make([]error, count)

	var eg errgroup.Group
	for i := 0; i < count; i++ {
		eg.Go(func() error {
			s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageGenerating, Index: i + 1, Total: count})

			image, err := s.generator.GenerateOne(ctx, prompt, refs)
			if err != nil {
				errs[i] = err
				s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageImageFailed, Index: i + 1, Total: count, Message: err.Error()})
				return nil
			}
			results[i] = image
			s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageImageCompleted, Index: i + 1, Total: count})
			return nil
		})
	}
	eg.Wait()

	images := make([]model.GeneratedImage, 0, count)
	var lastErr error
	for i := 0; i < count; i++ {
		if results[i] != nil {
			images = append(images, *results[i])
		} else if errs[i] != nil {
			lastErr = errs[i]
		}
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("all %d image generations failed: %w", count, lastErr)
	}
	return images, nil
}

// GenerateAndPersist - full /generate flow: decode, generate, best-effort
// persist, report counts.
func (s *Service) GenerateAndPersist(ctx context.Context, jobID, owner, prompt string, photos []string, count interface{}, meta persist.Metadata) (*Result, error) {
	requested := fallback.ClampImageCount(count)

	refs, err := s.DecodeReferences(photos)
	if err != nil {
		return nil, err
	}

	images, err := s.GenerateBatch(ctx, jobID, prompt, refs, requested)
	if err != nil {
		s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageDone, Message: err.Error()})
		return nil, err
	}

	urls := s.store.SaveGenerated(ctx, owner, images, meta)
	s.hub.Publish(progress.Event{JobID: jobID, Stage: progress.StageDone, Index: len(images), Total: requested})

	return &Result{
		Images:         images,
		ImageURLs:      urls,
		RequestedCount: requested,
		ActualCount:    len(images),
	}, nil
}
