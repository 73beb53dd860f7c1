package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"portrait-studio-server/modules/common/config"
	"portrait-studio-server/modules/common/model"
)

const (
	usersTable  = "studio_users"
	imagesTable = "studio_images"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - create the document-store client
func NewClient(cfg *config.Config) (*Client, error) {
	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	return &Client{supabase: supabaseClient}, nil
}

// FetchUserByEmail - single user lookup, nil when absent
func (c *Client) FetchUserByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	var users []model.UserAccount

	data, _, err := c.supabase.From(usersTable).
		Select("*", "exact", false).
		Eq("email", email).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", usersTable, err)
	}

	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	if len(users) == 0 {
		return nil, nil
	}

	return &users[0], nil
}

// CreateUser - insert a new account row
func (c *Client) CreateUser(ctx context.Context, user *model.UserAccount) error {
	insertData := map[string]interface{}{
		"email":         user.Email,
		"nom":           user.Nom,
		"prenom":        user.Prenom,
		"password_hash": user.PasswordHash,
	}

	_, _, err := c.supabase.From(usersTable).
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	log.Printf("✅ [DB] User created: %s", user.Email)
	return nil
}

// UpdateUserPassword - hash upgrade path for legacy plaintext accounts
func (c *Client) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	_, _, err := c.supabase.From(usersTable).
		Update(map[string]interface{}{
			"password_hash": passwordHash,
		}, "", "").
		Eq("email", email).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	log.Printf("✅ [DB] Password hash upgraded for %s", email)
	return nil
}

// DeleteUser - remove the account row (images are cascaded by the caller)
func (c *Client) DeleteUser(ctx context.Context, email string) error {
	_, _, err := c.supabase.From(usersTable).
		Delete("", "").
		Eq("email", email).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Printf("✅ [DB] User deleted: %s", email)
	return nil
}

// InsertImageRecord - one stored image row
func (c *Client) InsertImageRecord(ctx context.Context, record *model.StoredImageRecord) error {
	insertData := map[string]interface{}{
		"image_id":    record.ImageID,
		"owner_email": record.OwnerEmail,
		"image_url":   record.Value,
		"source":      record.Source,
		"truncated":   record.Truncated,
	}
	if record.Prompt != nil {
		insertData["prompt"] = *record.Prompt
	}
	if record.FlowType != nil {
		insertData["flow_type"] = *record.FlowType
	}
	if record.OriginalLength != nil {
		insertData["original_length"] = *record.OriginalLength
	}

	_, _, err := c.supabase.From(imagesTable).
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert image record: %w", err)
	}

	return nil
}

// FetchImagesByOwner - all image rows for one owner, newest first
func (c *Client) FetchImagesByOwner(ctx context.Context, email string) ([]model.StoredImageRecord, error) {
	var records []model.StoredImageRecord

	data, _, err := c.supabase.From(imagesTable).
		Select("*", "exact", false).
		Eq("owner_email", email).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", imagesTable, err)
	}

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse image records: %w", err)
	}

	return records, nil
}

// FetchImageByID - single image row lookup, nil when absent
func (c *Client) FetchImageByID(ctx context.Context, imageID string) (*model.StoredImageRecord, error) {
	var records []model.StoredImageRecord

	data, _, err := c.supabase.From(imagesTable).
		Select("*", "exact", false).
		Eq("image_id", imageID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", imagesTable, err)
	}

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse image record: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	return &records[0], nil
}

// DeleteImageRecord - remove one image row
func (c *Client) DeleteImageRecord(ctx context.Context, imageID string) error {
	_, _, err := c.supabase.From(imagesTable).
		Delete("", "").
		Eq("image_id", imageID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	log.Printf("✅ [DB] Image record deleted: %s", imageID)
	return nil
}

// DeleteImagesByOwner - cascade used by account deletion. Not atomic with
// the user delete; acceptable, the domain does not need strict consistency.
func (c *Client) DeleteImagesByOwner(ctx context.Context, email string) error {
	_, _, err := c.supabase.From(imagesTable).
		Delete("", "").
		Eq("owner_email", email).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to delete images for %s: %w", email, err)
	}

	log.Printf("✅ [DB] Image records deleted for owner: %s", email)
	return nil
}
