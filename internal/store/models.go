package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-catalog/internal/model"
)

// catalogNamespace derives stable keys for entities that have a catalog id.
var catalogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://open.spotify.com/"))

// Entry is a stored entity. Payload is the entity's wire encoding and is
// classified again on load, so the variant survives a round trip.
type Entry struct {
	Key       uuid.UUID
	Kind      model.Kind
	Variant   model.Variant
	CatalogID *string // nil for local entities
	Name      string
	Payload   []byte
	SavedAt   time.Time
}

// KeyFor returns the key an entity with a catalog id is stored under. Saving
// the same entity twice replaces the first entry.
func KeyFor(kind model.Kind, id string) uuid.UUID {
	return uuid.NewSHA1(catalogNamespace, []byte(model.ID(id).URI(kind)))
}

// newEntry encodes v. Entities without a catalog id get a random key, so
// every save of a local entity creates a new entry.
func newEntry(kind model.Kind, variant model.Variant, catalogID, name string, v json.Marshaler) (*Entry, error) {
	payload, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", kind, err)
	}

	e := &Entry{
		Kind:    kind,
		Variant: variant,
		Name:    name,
		Payload: payload,
	}
	if catalogID == "" {
		e.Key = uuid.New()
	} else {
		e.Key = KeyFor(kind, catalogID)
		e.CatalogID = &catalogID
	}
	return e, nil
}

func artistEntry(a model.Artist) (*Entry, error) {
	var id string
	if v, ok := a.(model.NonLocalArtistInfo); ok {
		id = v.ID()
	}
	return newEntry(model.KindArtist, a.Variant(), id, a.Name(), a)
}

func trackEntry(t model.Track) (*Entry, error) {
	var id string
	if v, ok := t.(model.NonLocalTrackInfo); ok {
		id = v.ID()
	}
	return newEntry(model.KindTrack, t.Variant(), id, t.Name(), t)
}

func albumEntry(a model.Album) (*Entry, error) {
	var id string
	if v, ok := a.(model.NonLocalAlbumInfo); ok {
		id = v.ID()
	}
	return newEntry(model.KindAlbum, a.Variant(), id, a.Name(), a)
}

func playlistEntry(p model.Playlist) (*Entry, error) {
	return newEntry(model.KindPlaylist, p.Variant(), p.ID(), p.Name(), p)
}
