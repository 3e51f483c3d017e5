package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"pichub/cmd/identity"
	"pichub/cmd/internal/assets"
	"pichub/cmd/internal/gallery"
)

// MembershipChecker gates gallery attachments on membership. The gallery
// service satisfies it.
type MembershipChecker interface {
	IsMember(ctx context.Context, galleryID, username string) (bool, error)
}

// Service implements the media operations.
type Service struct {
	store   Store
	host    assets.Host
	members MembershipChecker
}

// NewService constructs a Service.
func NewService(store Store, host assets.Host, members MembershipChecker) *Service {
	return &Service{store: store, host: host, members: members}
}

// UploadInput describes an incoming file.
type UploadInput struct {
	Caption     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader

	// GalleryID optionally attaches the upload to a gallery the actor
	// belongs to.
	GalleryID string
}

// Upload pushes the file to the asset host and records it.
//
// When a gallery is named, the actor's membership is checked before any bytes
// move: a rejected attachment must not leave an orphaned asset behind.
func (s *Service) Upload(ctx context.Context, now time.Time, actor identity.User, in UploadInput) (Media, error) {
	if in.Body == nil {
		return Media{}, fmt.Errorf("%w: no file received", ErrInvalidInput)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	galleryID := strings.TrimSpace(in.GalleryID)
	if galleryID != "" {
		ok, err := s.members.IsMember(ctx, galleryID, actor.Username)
		if err != nil {
			return Media{}, err
		}
		if !ok {
			return Media{}, gallery.ErrNotMember
		}
	}

	key, err := assetKey(actor.ID, in.Filename, now)
	if err != nil {
		return Media{}, err
	}

	asset, err := s.host.Upload(ctx, key, in.ContentType, in.Size, in.Body)
	if err != nil {
		return Media{}, err
	}

	m, err := s.store.Create(ctx, CreateInput{
		Caption:      strings.TrimSpace(in.Caption),
		URL:          asset.URL,
		ResourceType: string(asset.ResourceType),
		AssetKey:     asset.Key,
		UploadedBy:   actor.Username,
		Now:          now,
	})
	if err != nil {
		// The row never landed; drop the orphaned asset, best effort.
		_ = s.host.Delete(ctx, asset.Key)
		return Media{}, err
	}

	if galleryID != "" {
		if err := s.store.AttachToGallery(ctx, m.ID, galleryID); err != nil {
			return Media{}, err
		}
		m.Galleries = []string{galleryID}
	}

	return m, nil
}

// AddToGallery attaches existing media to a gallery the actor belongs to.
func (s *Service) AddToGallery(ctx context.Context, mediaID, galleryID string, actor identity.User) (Media, error) {
	if strings.TrimSpace(mediaID) == "" || strings.TrimSpace(galleryID) == "" {
		return Media{}, fmt.Errorf("%w: missing media or gallery id", ErrInvalidInput)
	}

	ok, err := s.members.IsMember(ctx, galleryID, actor.Username)
	if err != nil {
		return Media{}, err
	}
	if !ok {
		return Media{}, gallery.ErrNotMember
	}

	if _, err := s.store.GetByID(ctx, mediaID); err != nil {
		return Media{}, err
	}
	if err := s.store.AttachToGallery(ctx, mediaID, galleryID); err != nil {
		return Media{}, err
	}
	return s.store.GetByID(ctx, mediaID)
}

// Get fetches media details.
func (s *Service) Get(ctx context.Context, mediaID string) (Media, error) {
	if strings.TrimSpace(mediaID) == "" {
		return Media{}, fmt.Errorf("%w: missing media id", ErrInvalidInput)
	}
	return s.store.GetByID(ctx, mediaID)
}

// ListByUploader returns the media a user has uploaded, newest first.
func (s *Service) ListByUploader(ctx context.Context, username string) ([]Media, error) {
	return s.store.ListByUploader(ctx, username)
}

// Delete removes media from the asset host and the database. Only the
// uploader may delete; the host copy goes first so the row is never left
// pointing at a purged asset in the other order.
func (s *Service) Delete(ctx context.Context, mediaID string, actor identity.User) error {
	m, err := s.store.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if m.UploadedBy != actor.Username {
		return ErrNotUploader
	}

	if err := s.host.Delete(ctx, m.AssetKey); err != nil {
		return err
	}
	return s.store.Delete(ctx, mediaID)
}

// assetKey builds a host-side key: users/<userID>/<ulid><ext>.
// The ULID keeps keys collision-free; the extension keeps content sniffable.
func assetKey(userID, filename string, now time.Time) (string, error) {
	id, err := identity.NewULID(now)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return "users/" + userID + "/" + id + ext, nil
}
