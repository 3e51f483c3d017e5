package gallery

import (
	"context"
	"time"
)

// Gallery is a shared photo collection.
// Members holds normalized usernames; CreatedBy is the creator's user ID.
type Gallery struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberView is the member listing of a gallery, with the creator's username
// resolved for display.
type MemberView struct {
	GalleryID     string   `json:"gallery_id"`
	AdminUsername string   `json:"admin_username"`
	Members       []string `json:"members"`
}

// Image is the projection of a media row as listed inside a gallery.
type Image struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	URL          string    `json:"url"`
	ResourceType string    `json:"resource_type"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImageView is a gallery with its images attached.
type ImageView struct {
	GalleryID string  `json:"gallery_id"`
	Name      string  `json:"name"`
	Images    []Image `json:"images"`
}

// CreateInput describes a new gallery.
type CreateInput struct {
	Name            string
	CreatedBy       string // user ID
	CreatorUsername string // seeded as the first member
	Now             time.Time
}

// Store is the gallery persistence boundary.
type Store interface {
	// Create inserts a new gallery with the creator as sole member.
	Create(ctx context.Context, in CreateInput) (Gallery, error)

	// GetByID returns the gallery or ErrNotFound.
	GetByID(ctx context.Context, id string) (Gallery, error)

	// AddMember appends username to the member array in a single conditional
	// write. Returns ErrAlreadyMember or ErrMemberLimit without modifying
	// anything when the respective precondition fails, and ErrNotFound for an
	// unknown gallery.
	AddMember(ctx context.Context, galleryID, username string, now time.Time) error

	// ListByMember returns the galleries username belongs to, newest first.
	ListByMember(ctx context.Context, username string) ([]Gallery, error)

	// ListImages returns the media attached to the gallery, newest first.
	ListImages(ctx context.Context, galleryID string) ([]Image, error)

	// Delete removes the gallery and its media attachments (not the media
	// rows themselves). Returns ErrNotFound if the gallery does not exist.
	Delete(ctx context.Context, id string) error
}
