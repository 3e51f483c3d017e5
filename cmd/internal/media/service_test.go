package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"pichub/cmd/identity"
	"pichub/cmd/internal/assets"
	"pichub/cmd/internal/gallery"
)

// fakeHost records uploads and deletes in memory.
type fakeHost struct {
	objects map[string]string // key -> content type
	fail    bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{objects: make(map[string]string)}
}

func (f *fakeHost) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (assets.Asset, error) {
	if f.fail {
		return assets.Asset{}, assets.ErrHostUnavailable
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return assets.Asset{}, err
	}
	f.objects[key] = contentType
	return assets.Asset{
		Key:          key,
		URL:          "https://assets.test/" + key,
		ResourceType: assets.ResourceTypeForContentType(contentType),
	}, nil
}

func (f *fakeHost) Delete(ctx context.Context, key string) error {
	if f.fail {
		return assets.ErrHostUnavailable
	}
	delete(f.objects, key)
	return nil
}

// fakeMediaStore is an in-memory Store.
type fakeMediaStore struct {
	rows    map[string]*Media
	attach  map[string][]string // media ID -> gallery IDs
	nextID  int
	failing bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{rows: make(map[string]*Media), attach: make(map[string][]string)}
}

func (f *fakeMediaStore) Create(ctx context.Context, in CreateInput) (Media, error) {
	if f.failing {
		return Media{}, errors.New("store down")
	}
	f.nextID++
	m := Media{
		ID:           fmt.Sprintf("m%03d", f.nextID),
		Caption:      in.Caption,
		URL:          in.URL,
		ResourceType: in.ResourceType,
		AssetKey:     in.AssetKey,
		UploadedBy:   in.UploadedBy,
		CreatedAt:    in.Now,
	}
	f.rows[m.ID] = &m
	return m, nil
}

func (f *fakeMediaStore) GetByID(ctx context.Context, id string) (Media, error) {
	m, ok := f.rows[id]
	if !ok {
		return Media{}, ErrNotFound
	}
	out := *m
	out.Galleries = slices.Clone(f.attach[id])
	return out, nil
}

func (f *fakeMediaStore) ListByUploader(ctx context.Context, username string) ([]Media, error) {
	out := []Media{}
	for _, m := range f.rows {
		if m.UploadedBy == username {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMediaStore) AttachToGallery(ctx context.Context, mediaID, galleryID string) error {
	if _, ok := f.rows[mediaID]; !ok {
		return ErrNotFound
	}
	if slices.Contains(f.attach[mediaID], galleryID) {
		return ErrAlreadyInGallery
	}
	f.attach[mediaID] = append(f.attach[mediaID], galleryID)
	return nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return ErrNotFound
	}
	delete(f.rows, id)
	delete(f.attach, id)
	return nil
}

// fakeMembers is a static membership table keyed by gallery ID.
type fakeMembers map[string][]string

func (f fakeMembers) IsMember(ctx context.Context, galleryID, username string) (bool, error) {
	members, ok := f[galleryID]
	if !ok {
		return false, gallery.ErrNotFound
	}
	return slices.Contains(members, identity.NormalizeUsername(username)), nil
}

var (
	alice = identity.User{ID: "u-alice", Username: "alice"}
	bob   = identity.User{ID: "u-bob", Username: "bob"}
)

func newTestService() (*Service, *fakeMediaStore, *fakeHost) {
	st := newFakeMediaStore()
	host := newFakeHost()
	members := fakeMembers{"g001": {"alice"}}
	return NewService(st, host, members), st, host
}

func upload(t *testing.T, svc *Service, actor identity.User, in UploadInput) Media {
	t.Helper()
	m, err := svc.Upload(context.Background(), time.Now().UTC(), actor, in)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return m
}

func pngUpload() UploadInput {
	return UploadInput{
		Caption:     "sunset",
		Filename:    "sunset.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("data"),
	}
}

func TestUpload(t *testing.T) {
	svc, _, host := newTestService()

	m := upload(t, svc, alice, pngUpload())
	if m.UploadedBy != "alice" || m.Caption != "sunset" {
		t.Fatalf("unexpected media: %+v", m)
	}
	if m.ResourceType != string(assets.ResourceImage) {
		t.Fatalf("ResourceType = %q", m.ResourceType)
	}
	if !strings.HasPrefix(m.AssetKey, "users/u-alice/") || !strings.HasSuffix(m.AssetKey, ".png") {
		t.Fatalf("AssetKey = %q", m.AssetKey)
	}
	if _, ok := host.objects[m.AssetKey]; !ok {
		t.Fatalf("asset %q not on host", m.AssetKey)
	}
}

func TestUploadRequiresBody(t *testing.T) {
	svc, _, _ := newTestService()
	in := pngUpload()
	in.Body = nil
	_, err := svc.Upload(context.Background(), time.Now().UTC(), alice, in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil body: got %v, want ErrInvalidInput", err)
	}
}

func TestUploadWithGalleryAttachment(t *testing.T) {
	svc, st, _ := newTestService()

	in := pngUpload()
	in.GalleryID = "g001"
	m := upload(t, svc, alice, in)
	if !slices.Contains(m.Galleries, "g001") {
		t.Fatalf("Galleries = %v", m.Galleries)
	}
	if got := st.attach[m.ID]; len(got) != 1 || got[0] != "g001" {
		t.Fatalf("attachments = %v", got)
	}
}

func TestUploadToForeignGalleryLeavesNoAsset(t *testing.T) {
	svc, st, host := newTestService()

	in := pngUpload()
	in.GalleryID = "g001"
	_, err := svc.Upload(context.Background(), time.Now().UTC(), bob, in)
	if !errors.Is(err, gallery.ErrNotMember) {
		t.Fatalf("outsider upload: got %v, want ErrNotMember", err)
	}
	if len(host.objects) != 0 {
		t.Fatalf("asset host holds orphans: %v", host.objects)
	}
	if len(st.rows) != 0 {
		t.Fatalf("store holds rows: %v", st.rows)
	}
}

func TestUploadHostFailure(t *testing.T) {
	svc, _, host := newTestService()
	host.fail = true
	_, err := svc.Upload(context.Background(), time.Now().UTC(), alice, pngUpload())
	if !errors.Is(err, assets.ErrHostUnavailable) {
		t.Fatalf("host failure: got %v, want ErrHostUnavailable", err)
	}
}

func TestUploadStoreFailureCleansUpAsset(t *testing.T) {
	svc, st, host := newTestService()
	st.failing = true
	if _, err := svc.Upload(context.Background(), time.Now().UTC(), alice, pngUpload()); err == nil {
		t.Fatalf("expected store error")
	}
	if len(host.objects) != 0 {
		t.Fatalf("asset host holds orphans: %v", host.objects)
	}
}

func TestAddToGallery(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	m := upload(t, svc, alice, pngUpload())

	got, err := svc.AddToGallery(ctx, m.ID, "g001", alice)
	if err != nil {
		t.Fatalf("AddToGallery: %v", err)
	}
	if !slices.Contains(got.Galleries, "g001") {
		t.Fatalf("Galleries = %v", got.Galleries)
	}

	if _, err := svc.AddToGallery(ctx, m.ID, "g001", alice); !errors.Is(err, ErrAlreadyInGallery) {
		t.Fatalf("repeat attach: got %v, want ErrAlreadyInGallery", err)
	}
	if _, err := svc.AddToGallery(ctx, m.ID, "g001", bob); !errors.Is(err, gallery.ErrNotMember) {
		t.Fatalf("outsider attach: got %v, want ErrNotMember", err)
	}
	if _, err := svc.AddToGallery(ctx, "missing", "g001", alice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing media: got %v, want ErrNotFound", err)
	}
}

func TestDeleteUploaderOnly(t *testing.T) {
	svc, _, host := newTestService()
	ctx := context.Background()

	m := upload(t, svc, alice, pngUpload())

	if err := svc.Delete(ctx, m.ID, bob); !errors.Is(err, ErrNotUploader) {
		t.Fatalf("foreign delete: got %v, want ErrNotUploader", err)
	}
	if err := svc.Delete(ctx, m.ID, alice); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(host.objects) != 0 {
		t.Fatalf("asset survived delete: %v", host.objects)
	}
	if _, err := svc.Get(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted media fetch: got %v, want ErrNotFound", err)
	}
}

func TestDeleteKeepsRowWhenHostFails(t *testing.T) {
	svc, st, host := newTestService()
	ctx := context.Background()

	m := upload(t, svc, alice, pngUpload())
	host.fail = true

	if err := svc.Delete(ctx, m.ID, alice); !errors.Is(err, assets.ErrHostUnavailable) {
		t.Fatalf("host-down delete: got %v, want ErrHostUnavailable", err)
	}
	if _, ok := st.rows[m.ID]; !ok {
		t.Fatalf("row deleted despite host failure")
	}
}
