// Package sync upgrades partial library entries to full ones by fetching
// them again from the catalog.
package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-catalog/internal/catalog"
	"github.com/justestif/go-spotify-catalog/internal/model"
	"github.com/justestif/go-spotify-catalog/internal/store"
)

// ErrUnsupportedKind is returned for a kind the service cannot refresh.
var ErrUnsupportedKind = errors.New("unsupported kind")

// DefaultSyncCooldown is how old an entry must be before it is fetched again.
const DefaultSyncCooldown = 1 * time.Hour

// Catalog is the part of the catalog client the service needs.
type Catalog interface {
	Artists(ctx context.Context, ids ...string) ([]model.Artist, error)
	Tracks(ctx context.Context, ids []string, opts ...catalog.RequestOption) ([]model.Track, error)
	Albums(ctx context.Context, ids []string, opts ...catalog.RequestOption) ([]model.Album, error)
	Playlist(ctx context.Context, id string, opts ...catalog.RequestOption) (model.Playlist, error)
}

// Library is the part of the library repository the service needs.
type Library interface {
	Get(ctx context.Context, key uuid.UUID) (*store.Entry, error)
	ListByVariant(ctx context.Context, kind model.Kind, variant model.Variant) ([]store.Entry, error)
	SaveArtist(ctx context.Context, a model.Artist) (*store.Entry, error)
	SaveTrack(ctx context.Context, t model.Track) (*store.Entry, error)
	SaveAlbum(ctx context.Context, a model.Album) (*store.Entry, error)
	SavePlaylist(ctx context.Context, p model.Playlist) (*store.Entry, error)
}

var (
	_ Catalog = (*catalog.Client)(nil)
	_ Library = (*store.LibraryRepository)(nil)
)

// Service refreshes library entries from the catalog.
type Service struct {
	library      Library
	catalog      Catalog
	syncCooldown time.Duration
	now          func() time.Time
	log          logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithSyncCooldown sets how recently saved entries may be and still be skipped.
func WithSyncCooldown(d time.Duration) Option {
	return func(s *Service) {
		s.syncCooldown = d
	}
}

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// New creates a new sync service.
func New(library Library, cat Catalog, opts ...Option) *Service {
	s := &Service{
		library:      library,
		catalog:      cat,
		syncCooldown: DefaultSyncCooldown,
		now:          time.Now,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	Kind     model.Kind
	Checked  int // partial entries older than the cooldown
	Upgraded int // entries saved again as full
	Missing  int // entries the catalog no longer returns
	SyncedAt time.Time
}

// SyncPartials fetches every stale partial entry of kind and saves the full
// entity over it. Local entries have no catalog id and are never touched.
func (s *Service) SyncPartials(ctx context.Context, kind model.Kind) (*SyncResult, error) {
	entries, err := s.library.ListByVariant(ctx, kind, model.VariantPartial)
	if err != nil {
		return nil, fmt.Errorf("listing partial %ss: %w", kind, err)
	}

	cutoff := s.now().Add(-s.syncCooldown)
	var ids []string
	for _, e := range entries {
		if e.CatalogID == nil || e.SavedAt.After(cutoff) {
			continue
		}
		ids = append(ids, *e.CatalogID)
	}

	logger := s.log.WithFields(logrus.Fields{"module": "sync", "kind": string(kind)})
	logger.WithField("stale", len(ids)).Debug("syncing partial entries")

	var upgraded int
	switch kind {
	case model.KindArtist:
		upgraded, err = upgrade(ctx, ids, catalog.MaxArtistIDs,
			func(ctx context.Context, batch []string) ([]model.Artist, error) {
				return s.catalog.Artists(ctx, batch...)
			},
			s.library.SaveArtist)
	case model.KindTrack:
		upgraded, err = upgrade(ctx, ids, catalog.MaxTrackIDs,
			func(ctx context.Context, batch []string) ([]model.Track, error) {
				return s.catalog.Tracks(ctx, batch)
			},
			s.library.SaveTrack)
	case model.KindAlbum:
		upgraded, err = upgrade(ctx, ids, catalog.MaxAlbumIDs,
			func(ctx context.Context, batch []string) ([]model.Album, error) {
				return s.catalog.Albums(ctx, batch)
			},
			s.library.SaveAlbum)
	case model.KindPlaylist:
		upgraded, err = upgrade(ctx, ids, 1,
			func(ctx context.Context, batch []string) ([]model.Playlist, error) {
				p, err := s.catalog.Playlist(ctx, batch[0])
				if errors.Is(err, catalog.ErrNotFound) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return []model.Playlist{p}, nil
			},
			s.library.SavePlaylist)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, err
	}

	res := &SyncResult{
		Kind:     kind,
		Checked:  len(ids),
		Upgraded: upgraded,
		Missing:  len(ids) - upgraded,
		SyncedAt: s.now(),
	}
	logger.WithFields(logrus.Fields{
		"upgraded": res.Upgraded,
		"missing":  res.Missing,
	}).Info("sync complete")
	return res, nil
}

// SyncAll runs SyncPartials for every kind, stopping at the first error.
func (s *Service) SyncAll(ctx context.Context) ([]SyncResult, error) {
	kinds := []model.Kind{model.KindArtist, model.KindTrack, model.KindAlbum, model.KindPlaylist}
	results := make([]SyncResult, 0, len(kinds))
	for _, kind := range kinds {
		res, err := s.SyncPartials(ctx, kind)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// variant is satisfied by every entity union.
type variant interface {
	Variant() model.Variant
}

// upgrade fetches ids in batches of size and saves the full entities returned.
func upgrade[T variant](
	ctx context.Context,
	ids []string,
	size int,
	fetch func(context.Context, []string) ([]T, error),
	save func(context.Context, T) (*store.Entry, error),
) (int, error) {
	var saved int
	for batch := range slices.Chunk(ids, size) {
		entities, err := fetch(ctx, batch)
		if err != nil {
			return saved, fmt.Errorf("fetching batch: %w", err)
		}
		for _, e := range entities {
			if e.Variant() != model.VariantFull {
				continue
			}
			if _, err := save(ctx, e); err != nil {
				return saved, fmt.Errorf("saving entity: %w", err)
			}
			saved++
		}
	}
	return saved, nil
}
