package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"portrait-studio-server/modules/common/config"
)

// Client uploads generated portraits to Supabase Storage and returns their
// public URLs.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient - create the object-store client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ConvertToWebP - re-encode a PNG/JPEG payload as lossy WebP
func ConvertToWebP(imageData []byte, quality float32) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()
	log.Printf("✅ [Storage] %s converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		format, len(imageData), len(webpData),
		float64(len(imageData)-len(webpData))/float64(len(imageData))*100)

	return webpData, nil
}

// UploadPortrait - convert to WebP, upload under an owner/timestamp key, and
// return the public URL
func (c *Client) UploadPortrait(ctx context.Context, imageData []byte, ownerEmail string) (string, error) {
	webpData, err := ConvertToWebP(imageData, 90.0)
	if err != nil {
		// Some upstream payloads are already WebP; upload those as-is.
		webpData = imageData
		log.Printf("⚠️  [Storage] WebP conversion skipped, uploading original bytes: %v", err)
	}

	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	randomID := rand.Intn(999999)
	filePath := fmt.Sprintf("%s/user-%s/portrait_%d_%d.webp",
		c.cfg.StorageBucket, ownerEmail, timestamp, randomID)

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s", c.cfg.SupabaseURL, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(webpData))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", "image/webp")
	// Objects are publicly readable; only the URL is persisted.
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s", c.cfg.SupabaseURL, filePath)
	log.Printf("✅ [Storage] Portrait uploaded: %s (%d bytes)", filePath, len(webpData))
	return publicURL, nil
}
