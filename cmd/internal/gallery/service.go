package gallery

import (
	"context"
	"slices"
	"time"

	"pichub/cmd/identity"
)

// Service implements the gallery operations with their authorization rules.
//
// Reads of the member list are open to any authenticated user; image listings
// require membership; deletion requires ownership.
type Service struct {
	store Store
	users identity.Store
}

// NewService constructs a Service. The identity store is used to validate
// usernames before they enter a member array and to resolve the creator's
// username for member listings.
func NewService(store Store, users identity.Store) *Service {
	return &Service{store: store, users: users}
}

// Create makes a new gallery owned by the actor, who becomes its first member.
func (s *Service) Create(ctx context.Context, now time.Time, name string, actor identity.User) (Gallery, error) {
	return s.store.Create(ctx, CreateInput{
		Name:            name,
		CreatedBy:       actor.ID,
		CreatorUsername: actor.Username,
		Now:             now,
	})
}

// AddMember adds username to the gallery.
//
// The actor must already be a member, the username must belong to a real
// account, and the gallery must be under its member cap. The updated gallery
// is returned on success.
func (s *Service) AddMember(ctx context.Context, now time.Time, galleryID, username string, actor identity.User) (Gallery, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return Gallery{}, err
	}

	g, err := s.store.GetByID(ctx, galleryID)
	if err != nil {
		return Gallery{}, err
	}
	if !slices.Contains(g.Members, actor.Username) {
		return Gallery{}, ErrNotMember
	}

	if err := s.store.AddMember(ctx, galleryID, target.Username, now); err != nil {
		return Gallery{}, err
	}
	return s.store.GetByID(ctx, galleryID)
}

// Members returns the member listing with the creator's username resolved.
// A creator whose account has since vanished is reported with an empty
// admin username rather than failing the listing.
func (s *Service) Members(ctx context.Context, galleryID string) (MemberView, error) {
	g, err := s.store.GetByID(ctx, galleryID)
	if err != nil {
		return MemberView{}, err
	}

	view := MemberView{
		GalleryID: g.ID,
		Members:   g.Members,
	}
	if admin, err := s.users.GetUserByID(ctx, g.CreatedBy); err == nil {
		view.AdminUsername = admin.Username
	} else if !identity.IsNotFound(err) {
		return MemberView{}, err
	}
	return view, nil
}

// Images returns the gallery's media. Only members may look inside.
func (s *Service) Images(ctx context.Context, galleryID string, actor identity.User) (ImageView, error) {
	g, err := s.store.GetByID(ctx, galleryID)
	if err != nil {
		return ImageView{}, err
	}
	if !slices.Contains(g.Members, actor.Username) {
		return ImageView{}, ErrNotMember
	}

	images, err := s.store.ListImages(ctx, galleryID)
	if err != nil {
		return ImageView{}, err
	}
	return ImageView{
		GalleryID: g.ID,
		Name:      g.Name,
		Images:    images,
	}, nil
}

// Delete removes the gallery. Only the creator may delete it; other members
// get ErrNotOwner.
func (s *Service) Delete(ctx context.Context, galleryID string, actor identity.User) error {
	g, err := s.store.GetByID(ctx, galleryID)
	if err != nil {
		return err
	}
	if g.CreatedBy != actor.ID {
		return ErrNotOwner
	}
	return s.store.Delete(ctx, galleryID)
}

// ListByMember returns the galleries a user belongs to, newest first.
func (s *Service) ListByMember(ctx context.Context, username string) ([]Gallery, error) {
	return s.store.ListByMember(ctx, username)
}

// IsMember reports whether username belongs to the gallery. Media attachment
// checks route through here.
func (s *Service) IsMember(ctx context.Context, galleryID, username string) (bool, error) {
	g, err := s.store.GetByID(ctx, galleryID)
	if err != nil {
		return false, err
	}
	return slices.Contains(g.Members, identity.NormalizeUsername(username)), nil
}
