package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-spotify-catalog/internal/model"
)

var errNilEntity = errors.New("cannot save nil entity")

// LibraryRepository handles library entity database operations.
type LibraryRepository struct {
	pool *pgxpool.Pool
}

// SaveArtist stores a, replacing an earlier entry for the same catalog id.
func (r *LibraryRepository) SaveArtist(ctx context.Context, a model.Artist) (*Entry, error) {
	if a == nil {
		return nil, errNilEntity
	}
	e, err := artistEntry(a)
	if err != nil {
		return nil, err
	}
	return e, r.upsert(ctx, e)
}

// SaveTrack stores t, replacing an earlier entry for the same catalog id.
func (r *LibraryRepository) SaveTrack(ctx context.Context, t model.Track) (*Entry, error) {
	if t == nil {
		return nil, errNilEntity
	}
	e, err := trackEntry(t)
	if err != nil {
		return nil, err
	}
	return e, r.upsert(ctx, e)
}

// SaveAlbum stores a, replacing an earlier entry for the same catalog id.
func (r *LibraryRepository) SaveAlbum(ctx context.Context, a model.Album) (*Entry, error) {
	if a == nil {
		return nil, errNilEntity
	}
	e, err := albumEntry(a)
	if err != nil {
		return nil, err
	}
	return e, r.upsert(ctx, e)
}

// SavePlaylist stores p, replacing an earlier entry for the same playlist.
func (r *LibraryRepository) SavePlaylist(ctx context.Context, p model.Playlist) (*Entry, error) {
	if p == nil {
		return nil, errNilEntity
	}
	e, err := playlistEntry(p)
	if err != nil {
		return nil, err
	}
	return e, r.upsert(ctx, e)
}

// upsert creates or replaces an entry and fills in SavedAt.
func (r *LibraryRepository) upsert(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO library_entities (key, kind, variant, catalog_id, name, payload, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (key) DO UPDATE SET
			variant = EXCLUDED.variant,
			name = EXCLUDED.name,
			payload = EXCLUDED.payload,
			saved_at = EXCLUDED.saved_at
		RETURNING saved_at
	`
	err := r.pool.QueryRow(ctx, query,
		e.Key,
		string(e.Kind),
		e.Variant.String(),
		e.CatalogID,
		e.Name,
		e.Payload,
	).Scan(&e.SavedAt)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", e.Kind, err)
	}
	return nil
}

// Get retrieves an entry by key.
func (r *LibraryRepository) Get(ctx context.Context, key uuid.UUID) (*Entry, error) {
	query := `
		SELECT key, kind, variant, catalog_id, name, payload, saved_at
		FROM library_entities
		WHERE key = $1
	`
	e, err := scanEntry(r.pool.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	return e, nil
}

// getKind retrieves an entry and checks that it holds an entity of kind.
func (r *LibraryRepository) getKind(ctx context.Context, key uuid.UUID, kind model.Kind) (*Entry, error) {
	e, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if e.Kind != kind {
		return nil, fmt.Errorf("entry %s holds a %s, not a %s: %w", key, e.Kind, kind, ErrNotFound)
	}
	return e, nil
}

// GetArtist loads and reclassifies a stored artist.
func (r *LibraryRepository) GetArtist(ctx context.Context, key uuid.UUID) (model.Artist, error) {
	e, err := r.getKind(ctx, key, model.KindArtist)
	if err != nil {
		return nil, err
	}
	return model.DecodeArtist(e.Payload)
}

// GetTrack loads and reclassifies a stored track.
func (r *LibraryRepository) GetTrack(ctx context.Context, key uuid.UUID) (model.Track, error) {
	e, err := r.getKind(ctx, key, model.KindTrack)
	if err != nil {
		return nil, err
	}
	return model.DecodeTrack(e.Payload)
}

// GetAlbum loads and reclassifies a stored album.
func (r *LibraryRepository) GetAlbum(ctx context.Context, key uuid.UUID) (model.Album, error) {
	e, err := r.getKind(ctx, key, model.KindAlbum)
	if err != nil {
		return nil, err
	}
	return model.DecodeAlbum(e.Payload)
}

// GetPlaylist loads and reclassifies a stored playlist.
func (r *LibraryRepository) GetPlaylist(ctx context.Context, key uuid.UUID) (model.Playlist, error) {
	e, err := r.getKind(ctx, key, model.KindPlaylist)
	if err != nil {
		return nil, err
	}
	return model.DecodePlaylist(e.Payload)
}

// ListByVariant returns the entries of one kind and variant, newest first.
func (r *LibraryRepository) ListByVariant(ctx context.Context, kind model.Kind, variant model.Variant) ([]Entry, error) {
	query := `
		SELECT key, kind, variant, catalog_id, name, payload, saved_at
		FROM library_entities
		WHERE kind = $1 AND variant = $2
		ORDER BY saved_at DESC
	`
	rows, err := r.pool.Query(ctx, query, string(kind), variant.String())
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// Delete removes an entry. Returns ErrNotFound if no entry has the key.
func (r *LibraryRepository) Delete(ctx context.Context, key uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM library_entities WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		e       Entry
		kind    string
		variant string
	)
	if err := row.Scan(&e.Key, &kind, &variant, &e.CatalogID, &e.Name, &e.Payload, &e.SavedAt); err != nil {
		return nil, err
	}

	v, err := model.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	e.Kind = model.Kind(kind)
	e.Variant = v
	return &e, nil
}
