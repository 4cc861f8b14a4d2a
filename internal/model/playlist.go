package model

import (
	"encoding/json"
	"slices"
	"strconv"
	"time"
)

// CommonPlaylistInfo is implemented by both playlist variants.
type CommonPlaylistInfo interface {
	ID() string
	Name() string
	Owner() PublicUser
	Description() string
	Collaborative() bool
	Public() bool
	SnapshotID() string
	Images() []Image
	ExternalURLs() ExternalURLs
	// TotalTracks counts every item in the playlist, including ones not
	// embedded in the response.
	TotalTracks() int
}

// FullPlaylistInfo is implemented by FullPlaylist only.
type FullPlaylistInfo interface {
	Followers() int
	// Items is the first page of tracks as embedded by the service. Podcast
	// episodes and removed tracks are not included.
	Items() []PlaylistItem
}

// PlaylistItem is a track in a playlist.
type PlaylistItem struct {
	AddedAt time.Time
	Track   Track
}

// Playlist is one of FullPlaylist or PartialPlaylist. Playlists always exist in
// the catalog, so there is no local variant and the identifier is part of the
// common tier.
type Playlist interface {
	CommonPlaylistInfo
	json.Marshaler

	Variant() Variant
	// Partial drops the full tier.
	Partial() PartialPlaylist

	isPlaylist()
}

type commonPlaylistFields struct {
	id            string
	name          string
	owner         PublicUser
	description   string
	collaborative bool
	public        bool
	snapshotID    string
	images        []Image
	externalURLs  ExternalURLs
	totalTracks   int
}

func (f commonPlaylistFields) ID() string          { return f.id }
func (f commonPlaylistFields) Name() string        { return f.name }
func (f commonPlaylistFields) Description() string { return f.description }
func (f commonPlaylistFields) Collaborative() bool { return f.collaborative }
func (f commonPlaylistFields) Public() bool        { return f.public }
func (f commonPlaylistFields) SnapshotID() string  { return f.snapshotID }
func (f commonPlaylistFields) Images() []Image     { return cloneImages(f.images) }
func (f commonPlaylistFields) TotalTracks() int    { return f.totalTracks }

func (f commonPlaylistFields) ExternalURLs() ExternalURLs { return cloneURLs(f.externalURLs) }

func (f commonPlaylistFields) Owner() PublicUser {
	owner := f.owner
	owner.ExternalURLs = cloneURLs(owner.ExternalURLs)
	return owner
}

func (f commonPlaylistFields) encode(w wireObject) {
	w["type"] = KindPlaylist
	w["id"] = f.id
	w["name"] = f.name
	w["owner"] = f.owner
	w["description"] = f.description
	w["collaborative"] = f.collaborative
	w["public"] = f.public
	w["snapshot_id"] = f.snapshotID
	w["images"] = orEmpty(f.images)
	w["external_urls"] = f.externalURLs
	w["tracks"] = map[string]any{"total": f.totalTracks}
}

type fullPlaylistFields struct {
	followers int
	items     []PlaylistItem
}

func (f fullPlaylistFields) Followers() int        { return f.followers }
func (f fullPlaylistFields) Items() []PlaylistItem { return slices.Clone(f.items) }

func (f fullPlaylistFields) encode(w wireObject) {
	w["followers"] = map[string]any{"total": f.followers}
	items := make([]map[string]any, len(f.items))
	for i, it := range f.items {
		items[i] = map[string]any{
			"added_at": it.AddedAt,
			"is_local": it.Track.IsLocal(),
			"track":    it.Track,
		}
	}
	tracks := w["tracks"].(map[string]any)
	tracks["items"] = items
}

// FullPlaylist carries the common and full tiers.
type FullPlaylist struct {
	commonPlaylistFields
	fullPlaylistFields
}

// PartialPlaylist carries the common tier.
type PartialPlaylist struct {
	commonPlaylistFields
}

var (
	_ Playlist         = FullPlaylist{}
	_ Playlist         = PartialPlaylist{}
	_ FullPlaylistInfo = FullPlaylist{}
)

func (FullPlaylist) Variant() Variant    { return VariantFull }
func (PartialPlaylist) Variant() Variant { return VariantPartial }

func (FullPlaylist) isPlaylist()    {}
func (PartialPlaylist) isPlaylist() {}

// Partial drops the full tier.
func (p FullPlaylist) Partial() PartialPlaylist {
	return PartialPlaylist{commonPlaylistFields: p.commonPlaylistFields}
}

// Partial returns p itself.
func (p PartialPlaylist) Partial() PartialPlaylist { return p }

// MarshalJSON encodes the playlist in the service's wire format.
func (p FullPlaylist) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	p.commonPlaylistFields.encode(w)
	p.fullPlaylistFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the playlist in the service's wire format.
func (p PartialPlaylist) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	p.commonPlaylistFields.encode(w)
	return w.marshal()
}

// AsFullPlaylist narrows p to a FullPlaylist. It fails with
// ErrUnsupportedNarrowing unless p holds a FullPlaylist.
func AsFullPlaylist(p Playlist) (FullPlaylist, error) {
	if full, ok := p.(FullPlaylist); ok {
		return full, nil
	}
	return FullPlaylist{}, &NarrowingError{Kind: KindPlaylist, From: variantOf(p), To: VariantFull}
}

type playlistObject struct {
	common commonPlaylistFields
	full   *fullPlaylistFields
}

func decodePlaylistObject(doc Document) (playlistObject, error) {
	const kind = KindPlaylist
	var o playlistObject

	if err := doc.expectKind(kind); err != nil {
		return o, err
	}
	for _, key := range []string{"id", "name", "owner"} {
		if !doc.has(key) {
			return o, &SchemaError{Kind: kind, Field: key, Err: ErrMissingField}
		}
	}
	o.common.images = []Image{}
	o.common.externalURLs = ExternalURLs{}
	for _, f := range []struct {
		key string
		v   any
	}{
		{"id", &o.common.id},
		{"name", &o.common.name},
		{"owner", &o.common.owner},
		{"description", &o.common.description},
		{"collaborative", &o.common.collaborative},
		{"public", &o.common.public},
		{"snapshot_id", &o.common.snapshotID},
		{"images", &o.common.images},
		{"external_urls", &o.common.externalURLs},
	} {
		if err := doc.optional(kind, f.key, f.v); err != nil {
			return o, err
		}
	}

	tracks, err := doc.document(kind, "tracks")
	if err != nil {
		return o, err
	}
	if err := tracks.optional(kind, "total", &o.common.totalTracks); err != nil {
		return o, nestedError(kind, "tracks", err)
	}

	ok, err := doc.tier(kind, "followers")
	if err != nil || !ok {
		return o, err
	}
	full := fullPlaylistFields{}
	followers, err := doc.document(kind, "followers")
	if err != nil {
		return o, err
	}
	if err := followers.optional(kind, "total", &full.followers); err != nil {
		return o, nestedError(kind, "followers", err)
	}
	if full.items, err = decodePlaylistItems(tracks); err != nil {
		return o, nestedError(kind, "tracks", err)
	}
	o.full = &full
	return o, nil
}

type playlistItemWire struct {
	AddedAt time.Time       `json:"added_at"`
	Track   json.RawMessage `json:"track"`
}

// decodePlaylistItems decodes the embedded items, skipping removed tracks and
// podcast episodes.
func decodePlaylistItems(page Document) ([]PlaylistItem, error) {
	const kind = KindPlaylist
	raw, err := page.list(kind, "items")
	if err != nil {
		return nil, err
	}
	items := make([]PlaylistItem, 0, len(raw))
	for i, r := range raw {
		var w playlistItemWire
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, &SchemaError{Kind: kind, Field: "items[" + strconv.Itoa(i) + "]", Err: err}
		}
		if len(w.Track) == 0 || isNull(w.Track) {
			continue
		}
		doc, err := parseDocument(KindTrack, w.Track)
		if err != nil {
			return nil, nestedError(kind, "items["+strconv.Itoa(i)+"].track", err)
		}
		if doc.kind() == KindEpisode {
			continue
		}
		track, err := TrackFromDocument(doc)
		if err != nil {
			return nil, nestedError(kind, "items["+strconv.Itoa(i)+"].track", err)
		}
		items = append(items, PlaylistItem{AddedAt: w.AddedAt, Track: track})
	}
	return items, nil
}

func (o playlistObject) playlist() Playlist {
	if o.full != nil {
		return FullPlaylist{o.common, *o.full}
	}
	return PartialPlaylist{o.common}
}

// PlaylistFromDocument classifies a pre-parsed playlist payload.
func PlaylistFromDocument(doc Document) (Playlist, error) {
	o, err := decodePlaylistObject(doc)
	if err != nil {
		return nil, err
	}
	return o.playlist(), nil
}

// DecodePlaylist decodes and classifies a single playlist payload.
func DecodePlaylist(data []byte) (Playlist, error) {
	doc, err := parseDocument(KindPlaylist, data)
	if err != nil {
		return nil, err
	}
	return PlaylistFromDocument(doc)
}

// DecodeFullPlaylist decodes a payload that must carry the full playlist tier.
func DecodeFullPlaylist(data []byte) (FullPlaylist, error) {
	o, err := decodePlaylistBytes(data, VariantFull)
	if err != nil {
		return FullPlaylist{}, err
	}
	return FullPlaylist{o.common, *o.full}, nil
}

// DecodePartialPlaylist decodes a payload that must not carry the full playlist tier.
func DecodePartialPlaylist(data []byte) (PartialPlaylist, error) {
	o, err := decodePlaylistBytes(data, VariantPartial)
	if err != nil {
		return PartialPlaylist{}, err
	}
	return PartialPlaylist{o.common}, nil
}

func decodePlaylistBytes(data []byte, want Variant) (playlistObject, error) {
	doc, err := parseDocument(KindPlaylist, data)
	if err != nil {
		return playlistObject{}, err
	}
	o, err := decodePlaylistObject(doc)
	if err != nil {
		return playlistObject{}, err
	}
	return o, expectVariant(KindPlaylist, true, o.full != nil, want)
}
