package persist

import (
	"context"
	"errors"
	"strings"

	"portrait-studio-server/modules/common/model"
)

const (
	// InlinePrefix marks an encoded payload that must never reach the
	// document store on the object-storage path.
	InlinePrefix = "data:image/"

	// inlineByteBudget caps inline values below the document size ceiling.
	inlineByteBudget = 900_000

	// TruncationMarker is appended to inline values cut at the budget.
	TruncationMarker = "...[truncated]"

	// minAcceptedLength: stored values that are neither inline payloads nor
	// URLs are treated as junk once they exceed this length and omitted
	// from gallery results instead of raising errors.
	minAcceptedLength = 200
)

// ErrInlineRejected - the object-storage strategy refused to write an inline
// payload to the document store.
var ErrInlineRejected = errors.New("inline image data is not persisted; use the hosted URL")

// ErrInvalidImageURL - the selection value is neither an inline payload nor
// an http(s) URL. A client input problem, mapped to 400.
var ErrInvalidImageURL = errors.New("imageUrl must be an http(s) URL")

// Metadata carried alongside persisted images.
type Metadata struct {
	Prompt   string
	Source   string
	FlowType string
}

// Store is the pluggable persistence strategy. SaveGenerated is best-effort:
// it returns the client-facing URLs and never an error, because the
// generated images are the primary deliverable and must not be lost to a
// storage hiccup.
type Store interface {
	SaveGenerated(ctx context.Context, owner string, images []model.GeneratedImage, meta Metadata) []string
	SaveSelection(ctx context.Context, owner, value string, meta Metadata) error
	Gallery(ctx context.Context, owner string) (images []model.StoredImageRecord, omitted int, err error)
	DeleteImage(ctx context.Context, imageID string) (found bool, err error)
	DeleteOwner(ctx context.Context, owner string) error
}

// Recorder is the slice of the document store the strategies need.
type Recorder interface {
	InsertImageRecord(ctx context.Context, record *model.StoredImageRecord) error
	FetchImagesByOwner(ctx context.Context, email string) ([]model.StoredImageRecord, error)
	FetchImageByID(ctx context.Context, imageID string) (*model.StoredImageRecord, error)
	DeleteImageRecord(ctx context.Context, imageID string) error
	DeleteImagesByOwner(ctx context.Context, email string) error
}

// Uploader is the slice of the object store the object strategy needs.
type Uploader interface {
	UploadPortrait(ctx context.Context, imageData []byte, ownerEmail string) (string, error)
}

// IsHostedURL - true for http(s) values that pass through unchanged
func IsHostedURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// IsInlinePayload - true for data:image/... values
func IsInlinePayload(value string) bool {
	return strings.HasPrefix(value, InlinePrefix)
}

// FilterDisplayable splits stored records into displayable ones and a count
// of omitted junk. A record is displayable when its value is an inline image
// payload or a hosted URL; anything else longer than the minimum accepted
// length is counted as omitted, not raised as an error.
func FilterDisplayable(records []model.StoredImageRecord) (kept []model.StoredImageRecord, omitted int) {
	kept = make([]model.StoredImageRecord, 0, len(records))
	for _, record := range records {
		if IsInlinePayload(record.Value) || IsHostedURL(record.Value) {
			kept = append(kept, record)
			continue
		}
		if len(record.Value) > minAcceptedLength {
			omitted++
			continue
		}
		kept = append(kept, record)
	}
	return kept, omitted
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
