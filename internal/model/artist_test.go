package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// exportAll lets cmp compare the unexported tier fields.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

const (
	fullArtistJSON = `{
		"name": "Test",
		"type": "artist",
		"id": "abc",
		"external_urls": {"spotify": "https://open.spotify.com/artist/abc"},
		"genres": [],
		"images": [],
		"popularity": 50
	}`
	partialArtistJSON = `{"name": "Test", "type": "artist", "id": "abc"}`
	localArtistJSON   = `{"name": "Local Song", "type": "artist"}`
)

func mustFullArtist(t *testing.T) FullArtist {
	t.Helper()
	a, err := DecodeFullArtist([]byte(`{
		"name": "Radiohead",
		"type": "artist",
		"id": "4Z8W4fKeB5YxbusRsdQVPb",
		"external_urls": {"spotify": "https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb"},
		"genres": ["alternative rock", "art rock"],
		"images": [{"url": "https://i.scdn.co/image/a", "width": 640, "height": 640}],
		"popularity": 79
	}`))
	if err != nil {
		t.Fatalf("DecodeFullArtist() error = %v", err)
	}
	return a
}

func TestDecodeArtist_Classification(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		wantVariant Variant
		wantErr     error
	}{
		{"full", fullArtistJSON, VariantFull, nil},
		{"partial", partialArtistJSON, VariantPartial, nil},
		{"local", localArtistJSON, VariantLocal, nil},
		{"null id is local", `{"name": "x", "type": "artist", "id": null}`, VariantLocal, nil},
		{
			name:    "full fields without id",
			json:    `{"name": "x", "type": "artist", "genres": ["rock"], "images": [], "popularity": 3}`,
			wantErr: ErrInvalidTierCombination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeArtist([]byte(tt.json))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeArtist() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if got != nil {
					t.Errorf("DecodeArtist() = %v, want nil on error", got)
				}
				return
			}
			if got.Variant() != tt.wantVariant {
				t.Errorf("Variant() = %s, want %s", got.Variant(), tt.wantVariant)
			}
		})
	}
}

func TestDecodeArtist_FullScenario(t *testing.T) {
	a, err := DecodeArtist([]byte(fullArtistJSON))
	if err != nil {
		t.Fatalf("DecodeArtist() error = %v", err)
	}

	full, ok := a.(FullArtist)
	if !ok {
		t.Fatalf("DecodeArtist() = %T, want FullArtist", a)
	}
	if full.ID() != "abc" {
		t.Errorf("ID() = %q, want %q", full.ID(), "abc")
	}
	if full.Popularity() != 50 {
		t.Errorf("Popularity() = %d, want 50", full.Popularity())
	}
	if full.Name() != "Test" {
		t.Errorf("Name() = %q, want %q", full.Name(), "Test")
	}
	if got := full.ExternalURLs().Spotify(); got != "https://open.spotify.com/artist/abc" {
		t.Errorf("ExternalURLs().Spotify() = %q", got)
	}
	if full.Genres() == nil || len(full.Genres()) != 0 {
		t.Errorf("Genres() = %#v, want empty non-nil slice", full.Genres())
	}
}

func TestDecodeArtist_PartialCannotNarrowToFull(t *testing.T) {
	a, err := DecodeArtist([]byte(partialArtistJSON))
	if err != nil {
		t.Fatalf("DecodeArtist() error = %v", err)
	}
	if _, ok := a.(PartialArtist); !ok {
		t.Fatalf("DecodeArtist() = %T, want PartialArtist", a)
	}

	_, err = AsFullArtist(a)
	if !errors.Is(err, ErrUnsupportedNarrowing) {
		t.Fatalf("AsFullArtist() error = %v, want ErrUnsupportedNarrowing", err)
	}
	var ne *NarrowingError
	if !errors.As(err, &ne) || ne.From != VariantPartial || ne.To != VariantFull {
		t.Errorf("AsFullArtist() error = %#v, want partial to full", err)
	}
}

func TestDecodeArtist_LocalCannotNarrow(t *testing.T) {
	a, err := DecodeArtist([]byte(localArtistJSON))
	if err != nil {
		t.Fatalf("DecodeArtist() error = %v", err)
	}
	if a.Name() != "Local Song" {
		t.Errorf("Name() = %q, want %q", a.Name(), "Local Song")
	}
	if len(a.ExternalURLs()) != 0 {
		t.Errorf("ExternalURLs() = %v, want empty", a.ExternalURLs())
	}

	if _, err := AsFullArtist(a); !errors.Is(err, ErrUnsupportedNarrowing) {
		t.Errorf("AsFullArtist() error = %v, want ErrUnsupportedNarrowing", err)
	}
	if _, err := AsPartialArtist(a); !errors.Is(err, ErrUnsupportedNarrowing) {
		t.Errorf("AsPartialArtist() error = %v, want ErrUnsupportedNarrowing", err)
	}
}

func TestDecodeArtist_InvalidTierCombinationIsInvariant(t *testing.T) {
	_, err := DecodeArtist([]byte(`{"name": "x", "type": "artist", "genres": ["a"], "images": [], "popularity": 1}`))

	var te *TierError
	if !errors.As(err, &te) {
		t.Fatalf("DecodeArtist() error = %v, want *TierError", err)
	}
	if te.NonLocal || !te.Full {
		t.Errorf("TierError = %+v, want non-local absent and full present", te)
	}
	if !errors.Is(err, ErrInvariant) {
		t.Error("invalid tier combination should match ErrInvariant")
	}
	if errors.Is(err, ErrSchema) {
		t.Error("invalid tier combination should not match ErrSchema")
	}
}

func TestDecodeArtist_SchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantField string
		wantErr   error
	}{
		{"missing name", `{"type": "artist", "id": "a"}`, "name", ErrMissingField},
		{"null name", `{"name": null, "type": "artist"}`, "name", ErrMissingField},
		{"missing type", `{"name": "x"}`, "type", ErrMissingField},
		{"wrong type", `{"name": "x", "type": "track"}`, "type", ErrKindMismatch},
		{"malformed urls", `{"name": "x", "type": "artist", "external_urls": ["a"]}`, "external_urls", nil},
		{"incomplete full tier", `{"name": "x", "type": "artist", "id": "a", "genres": []}`, "images", ErrIncompleteTier},
		{"popularity out of range", `{"name": "x", "type": "artist", "id": "a", "genres": [], "images": [], "popularity": 101}`, "popularity", ErrOutOfRange},
		{"genres wrong type", `{"name": "x", "type": "artist", "id": "a", "genres": "rock", "images": [], "popularity": 1}`, "genres", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeArtist([]byte(tt.json))
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("DecodeArtist() error = %v, want ErrSchema", err)
			}
			if errors.Is(err, ErrInvariant) {
				t.Errorf("schema error should not match ErrInvariant")
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("DecodeArtist() error = %T, want *SchemaError", err)
			}
			if se.Kind != KindArtist || se.Field != tt.wantField {
				t.Errorf("SchemaError = {%s %q}, want {artist %q}", se.Kind, se.Field, tt.wantField)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeArtist() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeArtist_NotAnObject(t *testing.T) {
	for _, input := range []string{`null`, `[]`, `"artist"`, `{`} {
		if _, err := DecodeArtist([]byte(input)); !errors.Is(err, ErrSchema) {
			t.Errorf("DecodeArtist(%s) error = %v, want ErrSchema", input, err)
		}
	}
}

func TestArtistConversions(t *testing.T) {
	full := mustFullArtist(t)

	t.Run("widen then narrow round-trips", func(t *testing.T) {
		var a Artist = full
		got, err := AsFullArtist(a)
		if err != nil {
			t.Fatalf("AsFullArtist() error = %v", err)
		}
		if diff := cmp.Diff(full, got, exportAll); diff != "" {
			t.Errorf("AsFullArtist() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("full to partial to local equals full to local", func(t *testing.T) {
		if diff := cmp.Diff(full.Local(), full.Partial().Local(), exportAll); diff != "" {
			t.Errorf("mismatch (-direct +via partial):\n%s", diff)
		}
	})

	t.Run("local widened equals widened local", func(t *testing.T) {
		local := full.Local()
		var viaUnion Artist = local
		var direct Artist = full
		if diff := cmp.Diff(direct.Local(), viaUnion.Local(), exportAll); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if viaUnion.Variant() != VariantLocal {
			t.Errorf("Variant() = %s, want local", viaUnion.Variant())
		}
	})

	t.Run("union to partial drops full tier", func(t *testing.T) {
		p, err := AsPartialArtist(full)
		if err != nil {
			t.Fatalf("AsPartialArtist() error = %v", err)
		}
		if p.ID() != full.ID() || p.Name() != full.Name() {
			t.Errorf("AsPartialArtist() = %+v, want id and name of %+v", p, full)
		}
	})

	t.Run("nil union", func(t *testing.T) {
		_, err := AsFullArtist(nil)
		if !errors.Is(err, ErrUnsupportedNarrowing) {
			t.Errorf("AsFullArtist(nil) error = %v, want ErrUnsupportedNarrowing", err)
		}
	})
}

func TestArtistCapabilityViews(t *testing.T) {
	full := mustFullArtist(t)
	values := []struct {
		name         string
		artist       Artist
		wantNonLocal bool
		wantFull     bool
	}{
		{"full", full, true, true},
		{"partial", full.Partial(), true, false},
		{"local", full.Local(), false, false},
	}

	for _, v := range values {
		t.Run(v.name, func(t *testing.T) {
			if _, ok := v.artist.(NonLocalArtistInfo); ok != v.wantNonLocal {
				t.Errorf("implements NonLocalArtistInfo = %v, want %v", ok, v.wantNonLocal)
			}
			if _, ok := v.artist.(FullArtistInfo); ok != v.wantFull {
				t.Errorf("implements FullArtistInfo = %v, want %v", ok, v.wantFull)
			}
		})
	}
}

func TestArtistViewsReturnCopies(t *testing.T) {
	full := mustFullArtist(t)

	genres := full.Genres()
	genres[0] = "polka"
	urls := full.ExternalURLs()
	urls["spotify"] = "changed"

	if full.Genres()[0] != "alternative rock" {
		t.Errorf("Genres() exposed internal slice")
	}
	if full.ExternalURLs().Spotify() == "changed" {
		t.Errorf("ExternalURLs() exposed internal map")
	}
}

func TestDecodeConcreteArtist(t *testing.T) {
	t.Run("full from partial payload fails", func(t *testing.T) {
		_, err := DecodeFullArtist([]byte(partialArtistJSON))
		if !errors.Is(err, ErrUnsupportedNarrowing) {
			t.Errorf("DecodeFullArtist() error = %v, want ErrUnsupportedNarrowing", err)
		}
	})
	t.Run("full from local payload fails", func(t *testing.T) {
		_, err := DecodeFullArtist([]byte(localArtistJSON))
		if !errors.Is(err, ErrUnsupportedNarrowing) {
			t.Errorf("DecodeFullArtist() error = %v, want ErrUnsupportedNarrowing", err)
		}
	})
	t.Run("partial from local payload fails", func(t *testing.T) {
		_, err := DecodePartialArtist([]byte(localArtistJSON))
		if !errors.Is(err, ErrUnsupportedNarrowing) {
			t.Errorf("DecodePartialArtist() error = %v, want ErrUnsupportedNarrowing", err)
		}
	})
	t.Run("local requires exact match", func(t *testing.T) {
		_, err := DecodeLocalArtist([]byte(fullArtistJSON))
		if !errors.Is(err, ErrUnsupportedNarrowing) {
			t.Errorf("DecodeLocalArtist() error = %v, want ErrUnsupportedNarrowing", err)
		}
	})
	t.Run("illegal combination reported before narrowing", func(t *testing.T) {
		_, err := DecodeLocalArtist([]byte(`{"name": "x", "type": "artist", "genres": [], "images": [], "popularity": 0}`))
		if !errors.Is(err, ErrInvalidTierCombination) {
			t.Errorf("DecodeLocalArtist() error = %v, want ErrInvalidTierCombination", err)
		}
	})
	t.Run("matching payloads", func(t *testing.T) {
		if _, err := DecodePartialArtist([]byte(partialArtistJSON)); err != nil {
			t.Errorf("DecodePartialArtist() error = %v", err)
		}
		if _, err := DecodeLocalArtist([]byte(localArtistJSON)); err != nil {
			t.Errorf("DecodeLocalArtist() error = %v", err)
		}
	})
}

func TestDecodeArtists(t *testing.T) {
	data := []byte(`{"artists": [` + fullArtistJSON + `, null, ` + partialArtistJSON + `]}`)

	got, err := DecodeArtists(data)
	if err != nil {
		t.Fatalf("DecodeArtists() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("DecodeArtists() returned %d artists, want 2", len(got))
	}
	if got[0].Variant() != VariantFull || got[1].Variant() != VariantPartial {
		t.Errorf("variants = [%s %s], want [full partial]", got[0].Variant(), got[1].Variant())
	}

	_, err = DecodeArtists([]byte(`{"artists": [{"type": "artist"}]}`))
	var se *SchemaError
	if !errors.As(err, &se) || se.Field != "artists[0].name" {
		t.Errorf("DecodeArtists() error = %v, want field artists[0].name", err)
	}

	_, err = DecodeArtists([]byte(`{"artists": [null, ` + partialArtistJSON + `, {"type": "artist"}]}`))
	if !errors.As(err, &se) || se.Field != "artists[2].name" {
		t.Errorf("DecodeArtists() error = %v, want field artists[2].name after a null entry", err)
	}

	if _, err := DecodeArtists([]byte(`{}`)); !errors.Is(err, ErrMissingField) {
		t.Errorf("DecodeArtists({}) error = %v, want ErrMissingField", err)
	}
}

func TestArtistMarshalRoundTrip(t *testing.T) {
	full := mustFullArtist(t)

	for _, a := range []Artist{full, full.Partial(), full.Local()} {
		t.Run(a.Variant().String(), func(t *testing.T) {
			data, err := json.Marshal(a)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			got, err := DecodeArtist(data)
			if err != nil {
				t.Fatalf("DecodeArtist() error = %v", err)
			}
			if diff := cmp.Diff(a, got, exportAll); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArtistFromDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(partialArtistJSON))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	a, err := ArtistFromDocument(doc)
	if err != nil {
		t.Fatalf("ArtistFromDocument() error = %v", err)
	}
	p, err := AsPartialArtist(a)
	if err != nil {
		t.Fatalf("AsPartialArtist() error = %v", err)
	}
	if p.ID() != "abc" {
		t.Errorf("ID() = %q, want abc", p.ID())
	}
}
