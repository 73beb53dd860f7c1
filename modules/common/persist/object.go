package persist

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/google/uuid"

	"portrait-studio-server/modules/common/model"
)

// ObjectStore - default strategy: portraits live in object storage, the
// document store holds URLs only.
type ObjectStore struct {
	db       Recorder
	uploader Uploader
}

// NewObjectStore - build the URL-only persistence strategy
func NewObjectStore(db Recorder, uploader Uploader) *ObjectStore {
	return &ObjectStore{db: db, uploader: uploader}
}

// SaveGenerated - upload each image and record its public URL. Upload
// failures fall back to a data URL in the response (the client still gets
// its image) with no record written, keeping the URL-only invariant.
func (s *ObjectStore) SaveGenerated(ctx context.Context, owner string, images []model.GeneratedImage, meta Metadata) []string {
	urls := make([]string, 0, len(images))

	for i, img := range images {
		publicURL, err := s.uploader.UploadPortrait(ctx, img.Data, owner)
		if err != nil {
			log.Printf("⚠️  [Persist] Upload failed for image %d/%d, returning inline payload without persisting: %v",
				i+1, len(images), err)
			urls = append(urls, dataURL(img))
			continue
		}
		urls = append(urls, publicURL)

		record := &model.StoredImageRecord{
			ImageID:    uuid.NewString(),
			OwnerEmail: owner,
			Value:      publicURL,
			Prompt:     optional(meta.Prompt),
			Source:     meta.Source,
			FlowType:   optional(meta.FlowType),
		}
		if err := s.db.InsertImageRecord(ctx, record); err != nil {
			log.Printf("⚠️  [Persist] Failed to record image %d/%d for %s: %v", i+1, len(images), owner, err)
		}
	}

	return urls
}

// SaveSelection - record a chosen image. Inline payloads are rejected here:
// on this strategy the document store holds URLs only.
func (s *ObjectStore) SaveSelection(ctx context.Context, owner, value string, meta Metadata) error {
	if IsInlinePayload(value) {
		log.Printf("⚠️  [Persist] Skipping inline payload for %s (%d bytes): URLs only on object storage", owner, len(value))
		return ErrInlineRejected
	}
	if !IsHostedURL(value) {
		return ErrInvalidImageURL
	}

	record := &model.StoredImageRecord{
		ImageID:    uuid.NewString(),
		OwnerEmail: owner,
		Value:      value,
		Prompt:     optional(meta.Prompt),
		Source:     meta.Source,
		FlowType:   optional(meta.FlowType),
	}
	return s.db.InsertImageRecord(ctx, record)
}

// Gallery - displayable records plus the omitted-junk count
func (s *ObjectStore) Gallery(ctx context.Context, owner string) ([]model.StoredImageRecord, int, error) {
	records, err := s.db.FetchImagesByOwner(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	kept, omitted := FilterDisplayable(records)
	return kept, omitted, nil
}

// DeleteImage - remove one record, reporting whether it existed
func (s *ObjectStore) DeleteImage(ctx context.Context, imageID string) (bool, error) {
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
func (s *ObjectStore) DeleteOwner(ctx context.Context, owner string) error {
	return s.db.DeleteImagesByOwner(ctx, owner)
}

func dataURL(img model.GeneratedImage) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
