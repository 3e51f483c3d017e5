package media

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pichub/cmd/identity"
)

// PostgresStore implements media persistence over PostgreSQL.
// The pool is owned by the caller and must not be closed here.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresStore constructs a PostgresStore (default schema "pichub").
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("media: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "pichub"
	}
	if !pgIdentRe.MatchString(schema) {
		return nil, fmt.Errorf("media: invalid schema identifier")
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Media, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, err
	}
	if strings.TrimSpace(in.URL) == "" || strings.TrimSpace(in.AssetKey) == "" {
		return Media{}, fmt.Errorf("%w: missing asset url or key", ErrInvalidInput)
	}
	if strings.TrimSpace(in.UploadedBy) == "" {
		return Media{}, fmt.Errorf("%w: missing uploader", ErrInvalidInput)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Media{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("media")+` (id, caption, url, resource_type, asset_key, uploaded_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, in.Caption, in.URL, in.ResourceType, in.AssetKey, in.UploadedBy, now,
	)
	if err != nil {
		return Media{}, err
	}

	return Media{
		ID:           id,
		Caption:      in.Caption,
		URL:          in.URL,
		ResourceType: in.ResourceType,
		AssetKey:     in.AssetKey,
		UploadedBy:   in.UploadedBy,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Media, error) {
	if err := ctx.Err(); err != nil {
		return Media{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Media{}, fmt.Errorf("%w: missing media id", ErrInvalidInput)
	}

	var out Media
	err := s.pool.QueryRow(ctx,
		`SELECT m.id, m.caption, m.url, m.resource_type, m.asset_key, m.uploaded_by, m.created_at,
		        COALESCE(array_agg(mg.gallery_id) FILTER (WHERE mg.gallery_id IS NOT NULL), '{}')
		   FROM `+s.table("media")+` m
		   LEFT JOIN `+s.table("media_galleries")+` mg ON mg.media_id = m.id
		  WHERE m.id = $1
		  GROUP BY m.id`,
		id,
	).Scan(&out.ID, &out.Caption, &out.URL, &out.ResourceType, &out.AssetKey, &out.UploadedBy, &out.CreatedAt, &out.Galleries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Media{}, ErrNotFound
		}
		return Media{}, err
	}
	return out, nil
}

func (s *PostgresStore) ListByUploader(ctx context.Context, username string) ([]Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	username = identity.NormalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("%w: missing uploader", ErrInvalidInput)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, caption, url, resource_type, asset_key, uploaded_by, created_at
		   FROM `+s.table("media")+`
		  WHERE uploaded_by = $1
		  ORDER BY created_at DESC, id DESC`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Media{}
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.Caption, &m.URL, &m.ResourceType, &m.AssetKey, &m.UploadedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AttachToGallery(ctx context.Context, mediaID, galleryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(mediaID) == "" || strings.TrimSpace(galleryID) == "" {
		return fmt.Errorf("%w: missing media or gallery id", ErrInvalidInput)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table("media_galleries")+` (media_id, gallery_id)
		 VALUES ($1, $2)`,
		mediaID, galleryID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation: the (media_id, gallery_id) pair exists
				return ErrAlreadyInGallery
			case "23503": // foreign_key_violation: media or gallery vanished
				return ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing media id", ErrInvalidInput)
	}

	// Attachments cascade via ON DELETE, but delete explicitly so the store
	// does not depend on schema options.
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM `+s.table("media_galleries")+` WHERE media_id = $1`, id,
	); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx,
		`DELETE FROM `+s.table("media")+` WHERE id = $1`, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}
