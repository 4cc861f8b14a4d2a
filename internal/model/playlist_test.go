package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const fullPlaylistJSON = `{
	"type": "playlist",
	"id": "37i9dQZF1DXcBWIGoYBM5M",
	"name": "Today's Top Hits",
	"description": "The hottest tracks right now.",
	"collaborative": false,
	"public": true,
	"snapshot_id": "MTY4",
	"owner": {"id": "spotify", "display_name": "Spotify", "external_urls": {"spotify": "https://open.spotify.com/user/spotify"}},
	"followers": {"href": null, "total": 34000000},
	"images": [{"url": "https://i.scdn.co/image/top", "width": null, "height": null}],
	"tracks": {
		"total": 4,
		"items": [
			{"added_at": "2024-01-15T10:30:00Z", "is_local": false, "track": ` + partialTrackJSON + `},
			{"added_at": "2024-01-16T08:00:00Z", "is_local": true, "track": ` + localTrackJSON + `},
			{"added_at": "2024-01-17T08:00:00Z", "is_local": false, "track": {"type": "episode", "id": "e1", "name": "Pod"}},
			{"added_at": "2024-01-18T08:00:00Z", "is_local": false, "track": null}
		]
	}
}`

const partialPlaylistJSON = `{
	"type": "playlist",
	"id": "37i9dQZF1DXcBWIGoYBM5M",
	"name": "Today's Top Hits",
	"owner": {"id": "spotify", "display_name": "Spotify"},
	"tracks": {"href": "https://api.spotify.com/v1/playlists/37i9dQZF1DXcBWIGoYBM5M/tracks", "total": 50}
}`

func TestDecodePlaylist_Full(t *testing.T) {
	p, err := DecodePlaylist([]byte(fullPlaylistJSON))
	if err != nil {
		t.Fatalf("DecodePlaylist() error = %v", err)
	}
	full, err := AsFullPlaylist(p)
	if err != nil {
		t.Fatalf("AsFullPlaylist() error = %v", err)
	}

	if full.Followers() != 34000000 {
		t.Errorf("Followers() = %d", full.Followers())
	}
	if full.TotalTracks() != 4 {
		t.Errorf("TotalTracks() = %d, want 4", full.TotalTracks())
	}
	if full.Owner().DisplayName != "Spotify" {
		t.Errorf("Owner().DisplayName = %q", full.Owner().DisplayName)
	}
	if img := full.Images()[0]; img.Width != 0 || img.Height != 0 {
		t.Errorf("Images()[0] = %+v, want zero size for null dimensions", img)
	}

	items := full.Items()
	if len(items) != 2 {
		t.Fatalf("Items() len = %d, want 2 (episode and removed track skipped)", len(items))
	}
	if items[0].Track.Variant() != VariantPartial || items[1].Track.Variant() != VariantLocal {
		t.Errorf("item variants = %s, %s, want partial, local", items[0].Track.Variant(), items[1].Track.Variant())
	}
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !items[0].AddedAt.Equal(want) {
		t.Errorf("AddedAt = %v, want %v", items[0].AddedAt, want)
	}
}

func TestDecodePlaylist_Partial(t *testing.T) {
	p, err := DecodePlaylist([]byte(partialPlaylistJSON))
	if err != nil {
		t.Fatalf("DecodePlaylist() error = %v", err)
	}
	if p.Variant() != VariantPartial {
		t.Errorf("Variant() = %s, want partial", p.Variant())
	}
	if p.TotalTracks() != 50 {
		t.Errorf("TotalTracks() = %d, want 50", p.TotalTracks())
	}
	if _, ok := p.(FullPlaylistInfo); ok {
		t.Error("partial playlist should not implement FullPlaylistInfo")
	}
	if _, err := AsFullPlaylist(p); !errors.Is(err, ErrUnsupportedNarrowing) {
		t.Errorf("AsFullPlaylist() error = %v, want ErrUnsupportedNarrowing", err)
	}
	if _, err := DecodeFullPlaylist([]byte(partialPlaylistJSON)); !errors.Is(err, ErrUnsupportedNarrowing) {
		t.Errorf("DecodeFullPlaylist() error = %v, want ErrUnsupportedNarrowing", err)
	}
}

func TestDecodePlaylist_Errors(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantField string
	}{
		{"missing owner", `{"type": "playlist", "id": "p", "name": "x"}`, "owner"},
		{"missing id", `{"type": "playlist", "name": "x", "owner": {}}`, "id"},
		{
			name:      "bad item track",
			json:      `{"type": "playlist", "id": "p", "name": "x", "owner": {}, "followers": {"total": 1}, "tracks": {"items": [{"track": {"type": "track", "name": "t"}}]}}`,
			wantField: "tracks.items[0].track.duration_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePlaylist([]byte(tt.json))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("DecodePlaylist() error = %v, want *SchemaError", err)
			}
			if se.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", se.Field, tt.wantField)
			}
		})
	}
}

func TestPlaylistMarshalRoundTrip(t *testing.T) {
	full, err := DecodeFullPlaylist([]byte(fullPlaylistJSON))
	if err != nil {
		t.Fatalf("DecodeFullPlaylist() error = %v", err)
	}

	for _, p := range []Playlist{full, full.Partial()} {
		t.Run(p.Variant().String(), func(t *testing.T) {
			data, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			got, err := DecodePlaylist(data)
			if err != nil {
				t.Fatalf("DecodePlaylist() error = %v", err)
			}
			if diff := cmp.Diff(p, got, exportAll); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
