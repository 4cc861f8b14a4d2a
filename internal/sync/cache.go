package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-catalog/internal/catalog"
	"github.com/justestif/go-spotify-catalog/internal/model"
	"github.com/justestif/go-spotify-catalog/internal/store"
)

// CacheTTL is how long a stored full artist is served without asking the catalog.
const CacheTTL = 30 * 24 * time.Hour

// CachedArtists returns the artists for ids in order. Full artists saved
// within CacheTTL come from the library. The rest are fetched from the
// catalog and saved. Ids the catalog does not know are left out.
func (s *Service) CachedArtists(ctx context.Context, ids []string) ([]model.Artist, error) {
	parsed := make([]string, len(ids))
	for i, raw := range ids {
		id, err := model.ParseID(model.KindArtist, raw)
		if err != nil {
			return nil, err
		}
		parsed[i] = id.String()
	}

	found := make(map[string]model.Artist, len(parsed))
	var misses []string
	staleThreshold := s.now().Add(-CacheTTL)

	for _, id := range parsed {
		if _, ok := found[id]; ok || slices.Contains(misses, id) {
			continue
		}
		a, err := s.cachedArtist(ctx, id, staleThreshold)
		if err != nil {
			return nil, err
		}
		if a == nil {
			misses = append(misses, id)
			continue
		}
		found[id] = a
	}

	s.log.WithFields(logrus.Fields{
		"module": "sync",
		"hits":   len(found),
		"misses": len(misses),
	}).Debug("artist cache lookup")

	for batch := range slices.Chunk(misses, catalog.MaxArtistIDs) {
		fetched, err := s.catalog.Artists(ctx, batch...)
		if err != nil {
			return nil, fmt.Errorf("fetching artists: %w", err)
		}
		for _, a := range fetched {
			info, ok := a.(model.NonLocalArtistInfo)
			if !ok {
				continue
			}
			if _, err := s.library.SaveArtist(ctx, a); err != nil {
				return nil, fmt.Errorf("caching artist %s: %w", info.ID(), err)
			}
			found[info.ID()] = a
		}
	}

	out := make([]model.Artist, 0, len(parsed))
	for _, id := range parsed {
		if a, ok := found[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// cachedArtist returns the stored artist for id, or nil when it is missing,
// not full, older than staleThreshold or no longer decodes.
func (s *Service) cachedArtist(ctx context.Context, id string, staleThreshold time.Time) (model.Artist, error) {
	e, err := s.library.Get(ctx, store.KeyFor(model.KindArtist, id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached artist %s: %w", id, err)
	}
	if e.Kind != model.KindArtist || e.Variant != model.VariantFull || e.SavedAt.Before(staleThreshold) {
		return nil, nil
	}

	a, err := model.DecodeArtist(e.Payload)
	if err != nil {
		s.log.WithField("id", id).Warnf("discarding cached artist: %v", err)
		return nil, nil
	}
	return a, nil
}
