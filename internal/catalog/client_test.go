package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-catalog/internal/model"
)

const (
	radioheadID = "4Z8W4fKeB5YxbusRsdQVPb"
	paranoidID  = "0871AdnvzzSGr5XdTJaDHC"
	okID        = "6dVIqQ8qmQ5GBnJ9shOYGE"
	topHitsID   = "37i9dQZF1DXcBWIGoYBM5M"
)

const fullArtistBody = `{"type": "artist", "id": "4Z8W4fKeB5YxbusRsdQVPb", "name": "Radiohead",
	"genres": ["art rock"], "images": [], "popularity": 79,
	"external_urls": {"spotify": "https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb"}}`

const partialArtistBody = `{"type": "artist", "id": "0oSGxfWSnnOXhD2fKuz2Gy", "name": "David Bowie"}`

const fullTrackBody = `{"type": "track", "id": "0871AdnvzzSGr5XdTJaDHC", "name": "Paranoid Android",
	"duration_ms": 387213, "popularity": 74,
	"artists": [{"type": "artist", "id": "4Z8W4fKeB5YxbusRsdQVPb", "name": "Radiohead"}],
	"album": {"type": "album", "id": "6dVIqQ8qmQ5GBnJ9shOYGE", "name": "OK Computer",
		"album_type": "album", "release_date": "1997-05-28"}}`

const fullAlbumBody = `{"type": "album", "id": "6dVIqQ8qmQ5GBnJ9shOYGE", "name": "OK Computer",
	"album_type": "album", "release_date": "1997-05-28", "genres": [], "label": "XL", "popularity": 81,
	"tracks": {"total": 1, "items": [{"type": "track", "id": "0871AdnvzzSGr5XdTJaDHC", "name": "Paranoid Android", "duration_ms": 387213}]}}`

const fullPlaylistBody = `{"type": "playlist", "id": "37i9dQZF1DXcBWIGoYBM5M", "name": "Today's Top Hits",
	"owner": {"id": "spotify"}, "followers": {"total": 5},
	"tracks": {"total": 1, "items": [{"added_at": "2024-01-15T10:30:00Z", "track": {"type": "track", "id": "0871AdnvzzSGr5XdTJaDHC", "name": "Paranoid Android", "duration_ms": 387213}}]}}`

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestClient serves r and returns a client pointed at it with millisecond retry delays.
func newTestClient(t *testing.T, r http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return New(srv.Client(), &Config{BaseURL: srv.URL},
		WithLogger(quietLogger()),
		WithRetryDelays(time.Millisecond, time.Millisecond, time.Millisecond),
	)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_Artist(t *testing.T) {
	var gotID string
	r := chi.NewRouter()
	r.Get("/artists/{id}", func(w http.ResponseWriter, req *http.Request) {
		gotID = chi.URLParam(req, "id")
		writeJSON(w, http.StatusOK, fullArtistBody)
	})
	c := newTestClient(t, r)

	inputs := []string{
		radioheadID,
		"spotify:artist:" + radioheadID,
		"https://open.spotify.com/artist/" + radioheadID + "?si=x",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			gotID = ""
			artist, err := c.Artist(context.Background(), in)
			if err != nil {
				t.Fatalf("Artist() error = %v", err)
			}
			if gotID != radioheadID {
				t.Errorf("requested id = %q, want %q", gotID, radioheadID)
			}
			full, err := model.AsFullArtist(artist)
			if err != nil {
				t.Fatalf("AsFullArtist() error = %v", err)
			}
			if full.Popularity() != 79 {
				t.Errorf("Popularity() = %d, want 79", full.Popularity())
			}
		})
	}
}

func TestClient_InvalidIDMakesNoRequest(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusOK, fullArtistBody)
	}))

	tests := []struct {
		name string
		call func() error
	}{
		{"artist given track uri", func() error {
			_, err := c.Artist(context.Background(), "spotify:track:"+paranoidID)
			return err
		}},
		{"track with bad characters", func() error {
			_, err := c.Track(context.Background(), "not-an-id")
			return err
		}},
		{"album batch with playlist url", func() error {
			_, err := c.Albums(context.Background(), []string{okID, "https://open.spotify.com/playlist/" + topHitsID})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, model.ErrInvalidID) {
				t.Errorf("error = %v, want ErrInvalidID", err)
			}
		})
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestClient_Artists(t *testing.T) {
	var gotIDs string
	r := chi.NewRouter()
	r.Get("/artists", func(w http.ResponseWriter, req *http.Request) {
		gotIDs = req.URL.Query().Get("ids")
		writeJSON(w, http.StatusOK, `{"artists": [`+fullArtistBody+`, null, `+partialArtistBody+`]}`)
	})
	c := newTestClient(t, r)

	artists, err := c.Artists(context.Background(), radioheadID, "spotify:artist:0oSGxfWSnnOXhD2fKuz2Gy", "unknownid")
	if err != nil {
		t.Fatalf("Artists() error = %v", err)
	}
	if want := radioheadID + ",0oSGxfWSnnOXhD2fKuz2Gy,unknownid"; gotIDs != want {
		t.Errorf("ids = %q, want %q", gotIDs, want)
	}
	if len(artists) != 2 {
		t.Fatalf("Artists() len = %d, want 2 (null entry skipped)", len(artists))
	}
	if artists[0].Variant() != model.VariantFull || artists[1].Variant() != model.VariantPartial {
		t.Errorf("variants = %s, %s, want full, partial", artists[0].Variant(), artists[1].Variant())
	}
}

func TestClient_BatchLimits(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusOK, `{}`)
	}))
	ctx := context.Background()

	ids := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("id%d", i)
		}
		return out
	}

	if _, err := c.Artists(ctx, ids(51)...); !errors.Is(err, ErrTooManyIDs) {
		t.Errorf("Artists(51) error = %v, want ErrTooManyIDs", err)
	}
	if _, err := c.Tracks(ctx, ids(51)); !errors.Is(err, ErrTooManyIDs) {
		t.Errorf("Tracks(51) error = %v, want ErrTooManyIDs", err)
	}
	if _, err := c.Albums(ctx, ids(21)); !errors.Is(err, ErrTooManyIDs) {
		t.Errorf("Albums(21) error = %v, want ErrTooManyIDs", err)
	}

	got, err := c.Tracks(ctx, nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("Tracks(nil) = %v, %v, want empty slice", got, err)
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestClient_TrackWithMarket(t *testing.T) {
	var gotMarket string
	r := chi.NewRouter()
	r.Get("/tracks/{id}", func(w http.ResponseWriter, req *http.Request) {
		gotMarket = req.URL.Query().Get("market")
		writeJSON(w, http.StatusOK, fullTrackBody)
	})
	c := newTestClient(t, r)

	track, err := c.Track(context.Background(), paranoidID, WithMarket("GB"))
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if gotMarket != "GB" {
		t.Errorf("market = %q, want GB", gotMarket)
	}
	full, err := model.AsFullTrack(track)
	if err != nil {
		t.Fatalf("AsFullTrack() error = %v", err)
	}
	if full.Album().Name() != "OK Computer" {
		t.Errorf("Album().Name() = %q", full.Album().Name())
	}
}

func TestClient_ArtistTopTracks(t *testing.T) {
	var gotPath, gotMarket string
	r := chi.NewRouter()
	r.Get("/artists/{id}/top-tracks", func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		gotMarket = req.URL.Query().Get("market")
		writeJSON(w, http.StatusOK, `{"tracks": [`+fullTrackBody+`]}`)
	})
	c := newTestClient(t, r)

	tracks, err := c.ArtistTopTracks(context.Background(), radioheadID, "US")
	if err != nil {
		t.Fatalf("ArtistTopTracks() error = %v", err)
	}
	if gotPath != "/artists/"+radioheadID+"/top-tracks" || gotMarket != "US" {
		t.Errorf("request = %s?market=%s", gotPath, gotMarket)
	}
	if len(tracks) != 1 || tracks[0].Name() != "Paranoid Android" {
		t.Errorf("ArtistTopTracks() = %v", tracks)
	}
}

func TestClient_AlbumsAndPlaylist(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/albums/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, fullAlbumBody)
	})
	r.Get("/albums", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"albums": [`+fullAlbumBody+`]}`)
	})
	r.Get("/playlists/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, fullPlaylistBody)
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	album, err := c.Album(ctx, okID)
	if err != nil {
		t.Fatalf("Album() error = %v", err)
	}
	full, err := model.AsFullAlbum(album)
	if err != nil {
		t.Fatalf("AsFullAlbum() error = %v", err)
	}
	if len(full.Tracks()) != 1 {
		t.Errorf("Tracks() len = %d, want 1", len(full.Tracks()))
	}

	albums, err := c.Albums(ctx, []string{okID})
	if err != nil || len(albums) != 1 {
		t.Fatalf("Albums() = %v, %v", albums, err)
	}

	playlist, err := c.Playlist(ctx, "https://open.spotify.com/playlist/"+topHitsID)
	if err != nil {
		t.Fatalf("Playlist() error = %v", err)
	}
	fp, err := model.AsFullPlaylist(playlist)
	if err != nil {
		t.Fatalf("AsFullPlaylist() error = %v", err)
	}
	if fp.Followers() != 5 || len(fp.Items()) != 1 {
		t.Errorf("playlist followers=%d items=%d", fp.Followers(), len(fp.Items()))
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"error": {"status": 404, "message": "Resource not found"}}`,
			wantErr:    ErrNotFound,
			wantStatus: 404,
			wantMsg:    "Resource not found",
		},
		{
			name:       "expired token",
			status:     http.StatusUnauthorized,
			body:       `{"error": {"status": 401, "message": "The access token expired"}}`,
			wantErr:    ErrUnauthorized,
			wantStatus: 401,
			wantMsg:    "The access token expired",
		},
		{
			name:       "server error without body",
			status:     http.StatusBadGateway,
			body:       ``,
			wantStatus: 502,
		},
		{
			name:    "schema mismatch",
			status:  http.StatusOK,
			body:    `{"type": "artist", "id": "x"}`,
			wantErr: model.ErrSchema,
		},
		{
			name:    "invariant violation",
			status:  http.StatusOK,
			body:    `{"type": "artist", "name": "x", "genres": [], "images": [], "popularity": 1}`,
			wantErr: model.ErrInvalidTierCombination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))

			_, err := c.Artist(context.Background(), radioheadID)
			if err == nil {
				t.Fatal("Artist() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Artist() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantStatus == 0 {
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Artist() error = %T, want *APIError", err)
			}
			if apiErr.Status != tt.wantStatus || apiErr.Message != tt.wantMsg {
				t.Errorf("APIError = %d %q, want %d %q", apiErr.Status, apiErr.Message, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestClient_RetryOnRateLimit(t *testing.T) {
	tests := []struct {
		name         string
		failures     int32
		retryAfter   string
		wantRequests int32
		wantErr      error
	}{
		{"succeeds after two 429s", 2, "", 3, nil},
		{"retry-after zero falls back to schedule", 1, "0", 2, nil},
		{"gives up after retries", 10, "", 4, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if requests.Add(1) <= tt.failures {
					if tt.retryAfter != "" {
						w.Header().Set("Retry-After", tt.retryAfter)
					}
					writeJSON(w, http.StatusTooManyRequests, `{"error": {"status": 429, "message": "API rate limit exceeded"}}`)
					return
				}
				writeJSON(w, http.StatusOK, fullArtistBody)
			}))

			_, err := c.Artist(context.Background(), radioheadID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Artist() error = %v, want %v", err, tt.wantErr)
			}
			if n := requests.Load(); n != tt.wantRequests {
				t.Errorf("requests = %d, want %d", n, tt.wantRequests)
			}
		})
	}
}

func TestClient_RetryHonoursContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, ``)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Artist(ctx, radioheadID)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Artist() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Artist() took %v, want it to stop at the deadline", elapsed)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.header != "" {
			h.Set("Retry-After", tt.header)
		}
		if got := retryAfter(h); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c := New(nil, &Config{BaseURL: "https://example.test/v1/"})
	if !strings.HasSuffix(c.baseURL, "/v1/") || strings.HasSuffix(c.baseURL, "//") {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient != http.DefaultClient {
		t.Error("nil http client should fall back to http.DefaultClient")
	}
}
