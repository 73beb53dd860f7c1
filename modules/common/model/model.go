package model

import "time"

// UserAccount - studio_users table row
type UserAccount struct {
	Email        string    `json:"email"`
	Nom          string    `json:"nom"`
	Prenom       string    `json:"prenom"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredImageRecord - studio_images table row. Value holds either a hosted
// URL (object strategy) or the encoded payload itself (deprecated inline
// strategy).
type StoredImageRecord struct {
	ImageID        string    `json:"image_id"`
	OwnerEmail     string    `json:"owner_email"`
	Value          string    `json:"image_url"`
	Prompt         *string   `json:"prompt"`
	Source         string    `json:"source"`
	FlowType       *string   `json:"flow_type"`
	OriginalLength *int      `json:"original_length"`
	Truncated      bool      `json:"truncated"`
	CreatedAt      time.Time `json:"created_at"`
}

// GeneratedImage - one generated portrait, owned by the caller until persisted
type GeneratedImage struct {
	MIMEType string
	Data     []byte
}

// Image sources recorded on StoredImageRecord
const (
	SourceGenerate  = "generate"
	SourceAuto      = "generate-auto"
	SourceSelection = "selection"
)
