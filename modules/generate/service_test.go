package generate

import (
	"context"
	"encoding/base64"
	"errors"
	"sync/atomic"
	"testing"

	"portrait-studio-server/modules/common/model"
	"portrait-studio-server/modules/common/persist"
	"portrait-studio-server/modules/gemini"
)

type fakeGenerator struct {
	calls   atomic.Int32
	failOn  map[int]bool // 1-based call index → fail
	failAll bool
}

func (f *fakeGenerator) GenerateOne(ctx context.Context, prompt string, refs []gemini.ReferenceImage) (*model.GeneratedImage, error) {
	n := int(f.calls.Add(1))
	if f.failAll || f.failOn[n] {
		return nil, errors.New("upstream refused")
	}
	return &model.GeneratedImage{MIMEType: "image/png", Data: []byte{byte(n)}}, nil
}

type fakeStore struct {
	saved []model.GeneratedImage
}

func (f *fakeStore) SaveGenerated(ctx context.Context, owner string, images []model.GeneratedImage, meta persist.Metadata) []string {
	f.saved = append(f.saved, images...)
	urls := make([]string, len(images))
	for i := range images {
		urls[i] = "https://cdn.example.com/img"
	}
	return urls
}

func (f *fakeStore) SaveSelection(ctx context.Context, owner, value string, meta persist.Metadata) error {
	return nil
}

func (f *fakeStore) Gallery(ctx context.Context, owner string) ([]model.StoredImageRecord, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) DeleteImage(ctx context.Context, imageID string) (bool, error) {
	return false, nil
}

func (f *fakeStore) DeleteOwner(ctx context.Context, owner string) error {
	return nil
}

func newTestService(gen Generator, mode string) *Service {
	return NewService(gen, &fakeStore{}, nil, Options{Mode: mode})
}

func TestGenerateBatchSequentialToleratesPartialFailure(t *testing.T) {
	gen := &fakeGenerator{failOn: map[int]bool{2: true}}
	svc := newTestService(gen, ModeSequential)

	images, err := svc.GenerateBatch(context.Background(), "job", "prompt", nil, 3)
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	// Call order is preserved: the survivors are calls 1 and 3.
	if images[0].Data[0] != 1 || images[1].Data[0] != 3 {
		t.Errorf("images out of order: %v, %v", images[0].Data, images[1].Data)
	}
}

func TestGenerateBatchSequentialZeroSuccessErrors(t *testing.T) {
	gen := &fakeGenerator{failAll: true}
	svc := newTestService(gen, ModeSequential)

	images, err := svc.GenerateBatch(context.Background(), "job", "prompt", nil, 2)
	if err == nil {
		t.Fatal("expected error when every generation fails")
	}
	if len(images) != 0 {
		t.Fatalf("expected no images, got %d", len(images))
	}
	if got := int(gen.calls.Load()); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestGenerateBatchParallelPreservesOrder(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen, ModeParallel)

	images, err := svc.GenerateBatch(context.Background(), "job", "prompt", nil, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 4 {
		t.Fatalf("expected 4 images, got %d", len(images))
	}
}

func TestGenerateBatchParallelZeroSuccessErrors(t *testing.T) {
	gen := &fakeGenerator{failAll: true}
	svc := newTestService(gen, ModeParallel)

	if _, err := svc.GenerateBatch(context.Background(), "job", "prompt", nil, 3); err == nil {
		t.Fatal("expected error when every generation fails")
	}
}

func TestGenerateBatchClampsCount(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen, ModeSequential)

	images, err := svc.GenerateBatch(context.Background(), "job", "prompt", nil, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 4 {
		t.Errorf("expected count clamped to 4, got %d", len(images))
	}
}

func TestDecodeReferences(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, ModeSequential)

	encoded := base64.StdEncoding.EncodeToString([]byte("pixels"))
	refs, err := svc.DecodeReferences([]string{
		"data:image/jpeg;base64," + encoded,
		encoded,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if refs[0].MIMEType != "image/jpeg" {
		t.Errorf("expected data URL mime type preserved, got %q", refs[0].MIMEType)
	}
	if refs[1].MIMEType != "image/png" {
		t.Errorf("expected bare base64 to default to image/png, got %q", refs[1].MIMEType)
	}

	_, err = svc.DecodeReferences([]string{"%%% not base64 %%%"})
	if !errors.Is(err, ErrInvalidPhoto) {
		t.Errorf("expected ErrInvalidPhoto for invalid base64 payload, got %v", err)
	}
}

func TestGenerateAndPersistReportsCounts(t *testing.T) {
	gen := &fakeGenerator{failOn: map[int]bool{1: true}}
	store := &fakeStore{}
	svc := NewService(gen, store, nil, Options{Mode: ModeSequential})

	encoded := base64.StdEncoding.EncodeToString([]byte("pixels"))
	result, err := svc.GenerateAndPersist(context.Background(), "job", "user@example.com", "prompt",
		[]string{"data:image/png;base64," + encoded}, 3, persist.Metadata{Source: model.SourceGenerate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RequestedCount != 3 || result.ActualCount != 2 {
		t.Errorf("expected 2/3 images, got %d/%d", result.ActualCount, result.RequestedCount)
	}
	if len(store.saved) != 2 {
		t.Errorf("expected 2 images handed to store, got %d", len(store.saved))
	}
	if len(result.ImageURLs) != 2 {
		t.Errorf("expected 2 urls, got %d", len(result.ImageURLs))
	}
}
