package gallery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"pichub/cmd/identity"
)

// fakeUsers is a minimal identity.Store: only the lookups the gallery service
// touches are implemented.
type fakeUsers struct {
	byID map[string]identity.User
}

func newFakeUsers(users ...identity.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]identity.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (identity.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return identity.User{}, identity.NotFoundError{Op: "fake.GetUserByID", Resource: "user"}
}

func (f *fakeUsers) GetUserByUsername(ctx context.Context, username string) (identity.User, error) {
	username = identity.NormalizeUsername(username)
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return identity.User{}, identity.NotFoundError{Op: "fake.GetUserByUsername", Resource: "user"}
}

func (f *fakeUsers) CreateUser(ctx context.Context, in identity.CreateUserInput) (identity.User, error) {
	return identity.User{}, errors.New("not implemented")
}

func (f *fakeUsers) GetUserAuthByUsername(ctx context.Context, username string) (identity.UserAuth, error) {
	return identity.UserAuth{}, errors.New("not implemented")
}

func (f *fakeUsers) SetRefreshToken(ctx context.Context, userID, tokenHash string, now time.Time) error {
	return errors.New("not implemented")
}

func (f *fakeUsers) RotateRefreshToken(ctx context.Context, userID, oldHash, newHash string, now time.Time) error {
	return errors.New("not implemented")
}

func (f *fakeUsers) ClearRefreshToken(ctx context.Context, userID string, now time.Time) error {
	return errors.New("not implemented")
}

// fakeGalleryStore is an in-memory Store with the advertised AddMember
// precondition checks.
type fakeGalleryStore struct {
	galleries map[string]*Gallery
	images    map[string][]Image // keyed by gallery ID
	nextID    int
}

func newFakeGalleryStore() *fakeGalleryStore {
	return &fakeGalleryStore{
		galleries: make(map[string]*Gallery),
		images:    make(map[string][]Image),
	}
}

func (f *fakeGalleryStore) Create(ctx context.Context, in CreateInput) (Gallery, error) {
	if in.Name == "" {
		return Gallery{}, ErrInvalidInput
	}
	f.nextID++
	g := Gallery{
		ID:        fmt.Sprintf("g%03d", f.nextID),
		Name:      in.Name,
		CreatedBy: in.CreatedBy,
		Members:   []string{identity.NormalizeUsername(in.CreatorUsername)},
		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	f.galleries[g.ID] = &g
	return g, nil
}

func (f *fakeGalleryStore) GetByID(ctx context.Context, id string) (Gallery, error) {
	g, ok := f.galleries[id]
	if !ok {
		return Gallery{}, ErrNotFound
	}
	out := *g
	out.Members = slices.Clone(g.Members)
	return out, nil
}

func (f *fakeGalleryStore) AddMember(ctx context.Context, galleryID, username string, now time.Time) error {
	g, ok := f.galleries[galleryID]
	if !ok {
		return ErrNotFound
	}
	username = identity.NormalizeUsername(username)
	if slices.Contains(g.Members, username) {
		return ErrAlreadyMember
	}
	if len(g.Members) >= MemberLimit {
		return ErrMemberLimit
	}
	g.Members = append(g.Members, username)
	g.UpdatedAt = now
	return nil
}

func (f *fakeGalleryStore) ListByMember(ctx context.Context, username string) ([]Gallery, error) {
	username = identity.NormalizeUsername(username)
	out := []Gallery{}
	for _, g := range f.galleries {
		if slices.Contains(g.Members, username) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeGalleryStore) ListImages(ctx context.Context, galleryID string) ([]Image, error) {
	if _, ok := f.galleries[galleryID]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(f.images[galleryID]), nil
}

func (f *fakeGalleryStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.galleries[id]; !ok {
		return ErrNotFound
	}
	delete(f.galleries, id)
	delete(f.images, id)
	return nil
}

var (
	alice = identity.User{ID: "u-alice", Username: "alice"}
	bob   = identity.User{ID: "u-bob", Username: "bob"}
	carol = identity.User{ID: "u-carol", Username: "carol"}
)

func newTestService() (*Service, *fakeGalleryStore) {
	st := newFakeGalleryStore()
	return NewService(st, newFakeUsers(alice, bob, carol)), st
}

func TestCreateSeedsCreatorAsMember(t *testing.T) {
	svc, _ := newTestService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	g, err := svc.Create(context.Background(), now, "Trip 2026", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.CreatedBy != alice.ID {
		t.Fatalf("CreatedBy = %q", g.CreatedBy)
	}
	if len(g.Members) != 1 || g.Members[0] != "alice" {
		t.Fatalf("Members = %v, want [alice]", g.Members)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Create(context.Background(), time.Now().UTC(), "", alice); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty name: got %v, want ErrInvalidInput", err)
	}
}

func TestAddMember(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	g, err := svc.Create(ctx, now, "Trip", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.AddMember(ctx, now, g.ID, "Bob", alice)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if !slices.Contains(got.Members, "bob") {
		t.Fatalf("Members = %v, want bob included", got.Members)
	}

	// Duplicate add is rejected.
	if _, err := svc.AddMember(ctx, now, g.ID, "bob", alice); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("duplicate add: got %v, want ErrAlreadyMember", err)
	}

	// Unknown usernames never enter the member array.
	if _, err := svc.AddMember(ctx, now, g.ID, "mallory", alice); !identity.IsNotFound(err) {
		t.Fatalf("unknown username: got %v, want not found", err)
	}

	// Non-members cannot add.
	if _, err := svc.AddMember(ctx, now, g.ID, "carol", carol); !errors.Is(err, ErrNotMember) {
		t.Fatalf("non-member add: got %v, want ErrNotMember", err)
	}
}

func TestAddMemberLimit(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	g, err := svc.Create(ctx, now, "Big", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Fill to the cap underneath the service.
	full := st.galleries[g.ID]
	for i := len(full.Members); i < MemberLimit; i++ {
		full.Members = append(full.Members, fmt.Sprintf("user%02d", i))
	}

	if _, err := svc.AddMember(ctx, now, g.ID, "bob", alice); !errors.Is(err, ErrMemberLimit) {
		t.Fatalf("full gallery: got %v, want ErrMemberLimit", err)
	}
}

func TestMembersResolvesAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, time.Now().UTC(), "Trip", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, err := svc.Members(ctx, g.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if view.AdminUsername != "alice" {
		t.Fatalf("AdminUsername = %q", view.AdminUsername)
	}
	if len(view.Members) != 1 || view.Members[0] != "alice" {
		t.Fatalf("Members = %v", view.Members)
	}

	if _, err := svc.Members(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing gallery: got %v, want ErrNotFound", err)
	}
}

func TestImagesMembershipGate(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	g, err := svc.Create(ctx, now, "Trip", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	st.images[g.ID] = []Image{{ID: "m001", URL: "https://assets/pic.jpg", UploadedBy: "alice"}}

	view, err := svc.Images(ctx, g.ID, alice)
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(view.Images) != 1 || view.Images[0].ID != "m001" {
		t.Fatalf("Images = %+v", view.Images)
	}

	if _, err := svc.Images(ctx, g.ID, bob); !errors.Is(err, ErrNotMember) {
		t.Fatalf("outsider view: got %v, want ErrNotMember", err)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	now := time.Now().UTC()

	g, err := svc.Create(ctx, now, "Trip", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(ctx, now, g.ID, "bob", alice); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// Members who are not the creator cannot delete.
	if err := svc.Delete(ctx, g.ID, bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("member delete: got %v, want ErrNotOwner", err)
	}

	if err := svc.Delete(ctx, g.ID, alice); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, g.ID, alice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestIsMember(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, time.Now().UTC(), "Trip", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := svc.IsMember(ctx, g.ID, "ALICE")
	if err != nil || !ok {
		t.Fatalf("IsMember(alice) = %v, %v", ok, err)
	}
	ok, err = svc.IsMember(ctx, g.ID, "bob")
	if err != nil || ok {
		t.Fatalf("IsMember(bob) = %v, %v", ok, err)
	}
}
