package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/justestif/go-spotify-catalog/internal/model"
)

// Artist fetches one artist. id may be a bare id, a URI or an open.spotify.com URL.
func (c *Client) Artist(ctx context.Context, id string) (model.Artist, error) {
	artistID, err := model.ParseID(model.KindArtist, id)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "artists/"+artistID.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching artist %s: %w", artistID, err)
	}

	artist, err := model.DecodeArtist(body)
	if err != nil {
		return nil, fmt.Errorf("decoding artist %s: %w", artistID, err)
	}
	return artist, nil
}

// Artists fetches up to 50 artists in one request. Unknown ids are skipped.
func (c *Client) Artists(ctx context.Context, ids ...string) ([]model.Artist, error) {
	q, err := idQuery(model.KindArtist, ids, MaxArtistIDs, nil)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return []model.Artist{}, nil
	}

	body, err := c.get(ctx, "artists", q)
	if err != nil {
		return nil, fmt.Errorf("fetching artists: %w", err)
	}

	artists, err := model.DecodeArtists(body)
	if err != nil {
		return nil, fmt.Errorf("decoding artists: %w", err)
	}
	return artists, nil
}

// ArtistTopTracks fetches an artist's most popular tracks in market.
func (c *Client) ArtistTopTracks(ctx context.Context, id, market string) ([]model.Track, error) {
	artistID, err := model.ParseID(model.KindArtist, id)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "artists/"+artistID.String()+"/top-tracks", buildQuery([]RequestOption{WithMarket(market)}))
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks of %s: %w", artistID, err)
	}

	tracks, err := model.DecodeTracks(body)
	if err != nil {
		return nil, fmt.Errorf("decoding top tracks of %s: %w", artistID, err)
	}
	return tracks, nil
}

// Track fetches one track.
func (c *Client) Track(ctx context.Context, id string, opts ...RequestOption) (model.Track, error) {
	trackID, err := model.ParseID(model.KindTrack, id)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "tracks/"+trackID.String(), buildQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("fetching track %s: %w", trackID, err)
	}

	track, err := model.DecodeTrack(body)
	if err != nil {
		return nil, fmt.Errorf("decoding track %s: %w", trackID, err)
	}
	return track, nil
}

// Tracks fetches up to 50 tracks in one request. Unknown ids are skipped.
func (c *Client) Tracks(ctx context.Context, ids []string, opts ...RequestOption) ([]model.Track, error) {
	q, err := idQuery(model.KindTrack, ids, MaxTrackIDs, opts)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return []model.Track{}, nil
	}

	body, err := c.get(ctx, "tracks", q)
	if err != nil {
		return nil, fmt.Errorf("fetching tracks: %w", err)
	}

	tracks, err := model.DecodeTracks(body)
	if err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}
	return tracks, nil
}

// Album fetches one album together with the first page of its tracks.
func (c *Client) Album(ctx context.Context, id string, opts ...RequestOption) (model.Album, error) {
	albumID, err := model.ParseID(model.KindAlbum, id)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "albums/"+albumID.String(), buildQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("fetching album %s: %w", albumID, err)
	}

	album, err := model.DecodeAlbum(body)
	if err != nil {
		return nil, fmt.Errorf("decoding album %s: %w", albumID, err)
	}
	return album, nil
}

// Albums fetches up to 20 albums in one request. Unknown ids are skipped.
func (c *Client) Albums(ctx context.Context, ids []string, opts ...RequestOption) ([]model.Album, error) {
	q, err := idQuery(model.KindAlbum, ids, MaxAlbumIDs, opts)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return []model.Album{}, nil
	}

	body, err := c.get(ctx, "albums", q)
	if err != nil {
		return nil, fmt.Errorf("fetching albums: %w", err)
	}

	albums, err := model.DecodeAlbums(body)
	if err != nil {
		return nil, fmt.Errorf("decoding albums: %w", err)
	}
	return albums, nil
}

// Playlist fetches one playlist together with the first page of its items.
func (c *Client) Playlist(ctx context.Context, id string, opts ...RequestOption) (model.Playlist, error) {
	playlistID, err := model.ParseID(model.KindPlaylist, id)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "playlists/"+playlistID.String(), buildQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	playlist, err := model.DecodePlaylist(body)
	if err != nil {
		return nil, fmt.Errorf("decoding playlist %s: %w", playlistID, err)
	}
	return playlist, nil
}

// idQuery validates ids and builds the query of a multi-fetch request. It
// returns a nil query when ids is empty.
func idQuery(kind model.Kind, ids []string, limit int, opts []RequestOption) (url.Values, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > limit {
		return nil, fmt.Errorf("%w: %d %s ids, limit is %d", ErrTooManyIDs, len(ids), kind, limit)
	}

	parsed := make([]string, len(ids))
	for i, s := range ids {
		id, err := model.ParseID(kind, s)
		if err != nil {
			return nil, err
		}
		parsed[i] = id.String()
	}

	q := buildQuery(opts)
	q.Set("ids", strings.Join(parsed, ","))
	return q, nil
}
