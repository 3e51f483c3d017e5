package gallery

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pichub/cmd/identity"
)

// PostgresStore implements gallery persistence over PostgreSQL.
// The pool is owned by the caller and must not be closed here.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresStore constructs a PostgresStore (default schema "pichub").
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("gallery: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "pichub"
	}
	if !pgIdentRe.MatchString(schema) {
		return nil, fmt.Errorf("gallery: invalid schema identifier")
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Gallery, error) {
	if err := ctx.Err(); err != nil {
		return Gallery{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Gallery{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.CreatedBy) == "" || strings.TrimSpace(in.CreatorUsername) == "" {
		return Gallery{}, fmt.Errorf("%w: missing creator", ErrInvalidInput)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Gallery{}, err
	}

	members := []string{identity.NormalizeUsername(in.CreatorUsername)}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("galleries")+` (id, name, created_by, members, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		id, name, in.CreatedBy, members, now,
	)
	if err != nil {
		return Gallery{}, err
	}

	return Gallery{
		ID:        id,
		Name:      name,
		CreatedBy: in.CreatedBy,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Gallery, error) {
	if err := ctx.Err(); err != nil {
		return Gallery{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Gallery{}, fmt.Errorf("%w: missing gallery id", ErrInvalidInput)
	}

	var out Gallery
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_by, members, created_at, updated_at
		   FROM `+s.table("galleries")+`
		  WHERE id = $1`,
		id,
	).Scan(&out.ID, &out.Name, &out.CreatedBy, &out.Members, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Gallery{}, ErrNotFound
		}
		return Gallery{}, err
	}
	return out, nil
}

func (s *PostgresStore) ListByMember(ctx context.Context, username string) ([]Gallery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	username = identity.NormalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidInput)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_by, members, created_at, updated_at
		   FROM `+s.table("galleries")+`
		  WHERE members @> ARRAY[$1]
		  ORDER BY created_at DESC, id DESC`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Gallery{}
	for rows.Next() {
		var g Gallery
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.Members, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddMember appends atomically: the WHERE clause re-checks membership and the
// cap so two concurrent adds cannot push the array past MemberLimit or insert
// a duplicate. On zero rows the gallery is re-read to pick the precise error.
func (s *PostgresStore) AddMember(ctx context.Context, galleryID, username string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	username = identity.NormalizeUsername(username)
	if strings.TrimSpace(galleryID) == "" || username == "" {
		return fmt.Errorf("%w: missing gallery id or username", ErrInvalidInput)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	galleries := s.table("galleries")

	ct, err := s.pool.Exec(ctx,
		`UPDATE `+galleries+`
		    SET members = array_append(members, $2),
		        updated_at = $3
		  WHERE id = $1
		    AND NOT (members @> ARRAY[$2])
		    AND COALESCE(array_length(members, 1), 0) < `+fmt.Sprint(MemberLimit),
		galleryID, username, now,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	g, err := s.GetByID(ctx, galleryID)
	if err != nil {
		return err
	}
	for _, m := range g.Members {
		if m == username {
			return ErrAlreadyMember
		}
	}
	return ErrMemberLimit
}

func (s *PostgresStore) ListImages(ctx context.Context, galleryID string) ([]Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(galleryID) == "" {
		return nil, fmt.Errorf("%w: missing gallery id", ErrInvalidInput)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.caption, m.url, m.resource_type, m.uploaded_by, m.created_at
		   FROM `+s.table("media")+` m
		   JOIN `+s.table("media_galleries")+` mg ON mg.media_id = m.id
		  WHERE mg.gallery_id = $1
		  ORDER BY m.created_at DESC, m.id DESC`,
		galleryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]Image, 0, 16)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.Caption, &img.URL, &img.ResourceType, &img.UploadedBy, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing gallery id", ErrInvalidInput)
	}

	// Attachments go first; the media rows themselves stay.
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM `+s.table("media_galleries")+` WHERE gallery_id = $1`, id,
	); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx,
		`DELETE FROM `+s.table("galleries")+` WHERE id = $1`, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}
