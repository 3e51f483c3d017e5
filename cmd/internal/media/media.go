package media

import (
	"context"
	"time"
)

// Media is an uploaded file's metadata. The binary itself lives on the asset
// host; AssetKey addresses it there. UploadedBy is the uploader's username.
type Media struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	URL          string    `json:"url"`
	ResourceType string    `json:"resource_type"`
	AssetKey     string    `json:"asset_key"`
	UploadedBy   string    `json:"uploaded_by"`
	Galleries    []string  `json:"galleries,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateInput describes a new media row.
type CreateInput struct {
	Caption      string
	URL          string
	ResourceType string
	AssetKey     string
	UploadedBy   string
	Now          time.Time
}

// Store is the media persistence boundary.
type Store interface {
	// Create inserts a new media row.
	Create(ctx context.Context, in CreateInput) (Media, error)

	// GetByID returns the media row with its gallery attachments, or
	// ErrNotFound.
	GetByID(ctx context.Context, id string) (Media, error)

	// AttachToGallery links the media into a gallery. Attaching twice fails
	// with ErrAlreadyInGallery; an unknown media ID fails with ErrNotFound.
	AttachToGallery(ctx context.Context, mediaID, galleryID string) error

	// ListByUploader returns all media uploaded by username, newest first.
	ListByUploader(ctx context.Context, username string) ([]Media, error)

	// Delete removes the media row and its attachments. Returns ErrNotFound
	// if the row does not exist.
	Delete(ctx context.Context, id string) error
}
