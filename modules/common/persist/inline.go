package persist

import (
	"context"
	"log"

	"github.com/google/uuid"

	"portrait-studio-server/modules/common/model"
)

// InlineStore - deprecated strategy kept for pre-migration deployments: the
// encoded payload is stored directly in the document field. Values above the
// byte budget are truncated with a marker; truncated images are not
// recoverable for display. Known limitation, not fixed here.
type InlineStore struct {
	db Recorder
}

// NewInlineStore - build the deprecated inline-value strategy
func NewInlineStore(db Recorder) *InlineStore {
	return &InlineStore{db: db}
}

// SaveGenerated - store encoded payloads directly, truncating oversized ones
func (s *InlineStore) SaveGenerated(ctx context.Context, owner string, images []model.GeneratedImage, meta Metadata) []string {
	urls := make([]string, 0, len(images))

	for i, img := range images {
		value := dataURL(img)
		urls = append(urls, value)

		record := &model.StoredImageRecord{
			ImageID:    uuid.NewString(),
			OwnerEmail: owner,
			Value:      value,
			Prompt:     optional(meta.Prompt),
			Source:     meta.Source,
			FlowType:   optional(meta.FlowType),
		}
		if len(value) > inlineByteBudget {
			originalLength := len(value)
			record.Value = value[:inlineByteBudget] + TruncationMarker
			record.OriginalLength = &originalLength
			record.Truncated = true
			log.Printf("⚠️  [Persist] Inline value truncated for %s: %d → %d bytes",
				owner, originalLength, inlineByteBudget)
		}

		if err := s.db.InsertImageRecord(ctx, record); err != nil {
			log.Printf("⚠️  [Persist] Failed to record image %d/%d for %s: %v", i+1, len(images), owner, err)
		}
	}

	return urls
}

// SaveSelection - inline strategy accepts URLs and inline payloads alike
func (s *InlineStore) SaveSelection(ctx context.Context, owner, value string, meta Metadata) error {
	record := &model.StoredImageRecord{
		ImageID:    uuid.NewString(),
		OwnerEmail: owner,
		Value:      value,
		Prompt:     optional(meta.Prompt),
		Source:     meta.Source,
		FlowType:   optional(meta.FlowType),
	}
	if len(value) > inlineByteBudget {
		originalLength := len(value)
		record.Value = value[:inlineByteBudget] + TruncationMarker
		record.OriginalLength = &originalLength
		record.Truncated = true
	}
	return s.db.InsertImageRecord(ctx, record)
}

// Gallery - displayable records plus the omitted-junk count
func (s *InlineStore) Gallery(ctx context.Context, owner string) ([]model.StoredImageRecord, int, error) {
	records, err := s.db.FetchImagesByOwner(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	kept, omitted := FilterDisplayable(records)
	return kept, omitted, nil
}

// DeleteImage - remove one record, reporting whether it existed
func (s *InlineStore) DeleteImage(ctx context.Context, imageID string) (bool, error) {
	record, err := s.db.FetchImageByID(ctx, imageID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	return true, s.db.DeleteImageRecord(ctx, imageID)
}

// DeleteOwner - cascade delete for account removal
func (s *InlineStore) DeleteOwner(ctx context.Context, owner string) error {
	return s.db.DeleteImagesByOwner(ctx, owner)
}
