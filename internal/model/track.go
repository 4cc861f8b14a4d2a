package model

import (
	"encoding/json"
	"slices"
	"time"
)

// CommonTrackInfo is implemented by every track variant.
type CommonTrackInfo interface {
	Name() string
	// Artists who performed the track. Local tracks list local artists.
	Artists() []Artist
	Duration() time.Duration
	Explicit() bool
	DiscNumber() int
	TrackNumber() int
	ExternalURLs() ExternalURLs
	// IsLocal reports the service's own is_local flag.
	IsLocal() bool
}

// NonLocalTrackInfo is implemented by FullTrack and PartialTrack.
type NonLocalTrackInfo interface {
	ID() string
	// PreviewURL is a 30 second preview clip, or "" when none is offered.
	PreviewURL() string
	AvailableMarkets() []string
}

// FullTrackInfo is implemented by FullTrack only.
type FullTrackInfo interface {
	Album() Album
	Popularity() int
	ExternalIDs() ExternalIDs
}

// Track is one of FullTrack, PartialTrack or LocalTrack.
//
// Full tracks come from the track endpoints and playlists, partial tracks are
// listed inside albums, and local tracks are user uploads inside playlists.
type Track interface {
	CommonTrackInfo
	json.Marshaler

	Variant() Variant
	Local() LocalTrack

	isTrack()
}

type commonTrackFields struct {
	name         string
	artists      []Artist
	durationMs   int
	explicit     bool
	discNumber   int
	trackNumber  int
	externalURLs ExternalURLs
	isLocal      bool
}

func (f commonTrackFields) Name() string               { return f.name }
func (f commonTrackFields) Artists() []Artist          { return slices.Clone(f.artists) }
func (f commonTrackFields) Duration() time.Duration    { return time.Duration(f.durationMs) * time.Millisecond }
func (f commonTrackFields) Explicit() bool             { return f.explicit }
func (f commonTrackFields) DiscNumber() int            { return f.discNumber }
func (f commonTrackFields) TrackNumber() int           { return f.trackNumber }
func (f commonTrackFields) ExternalURLs() ExternalURLs { return cloneURLs(f.externalURLs) }
func (f commonTrackFields) IsLocal() bool              { return f.isLocal }

func (f commonTrackFields) encode(w wireObject) {
	w["type"] = KindTrack
	w["name"] = f.name
	w["artists"] = orEmpty(f.artists)
	w["duration_ms"] = f.durationMs
	w["explicit"] = f.explicit
	w["disc_number"] = f.discNumber
	w["track_number"] = f.trackNumber
	w["external_urls"] = f.externalURLs
	w["is_local"] = f.isLocal
}

type nonLocalTrackFields struct {
	id               string
	previewURL       string
	availableMarkets []string
}

func (f nonLocalTrackFields) ID() string                 { return f.id }
func (f nonLocalTrackFields) PreviewURL() string         { return f.previewURL }
func (f nonLocalTrackFields) AvailableMarkets() []string { return cloneStrings(f.availableMarkets) }

func (f nonLocalTrackFields) encode(w wireObject) {
	w["id"] = f.id
	if f.previewURL != "" {
		w["preview_url"] = f.previewURL
	}
	w["available_markets"] = orEmpty(f.availableMarkets)
}

type fullTrackFields struct {
	album       Album
	popularity  int
	externalIDs ExternalIDs
}

func (f fullTrackFields) Album() Album             { return f.album }
func (f fullTrackFields) Popularity() int          { return f.popularity }
func (f fullTrackFields) ExternalIDs() ExternalIDs { return cloneIDs(f.externalIDs) }

func (f fullTrackFields) encode(w wireObject) {
	w["album"] = f.album
	w["popularity"] = f.popularity
	w["external_ids"] = f.externalIDs
}

// FullTrack carries every tier of track information.
type FullTrack struct {
	commonTrackFields
	nonLocalTrackFields
	fullTrackFields
}

// PartialTrack carries the common and non-local tiers.
type PartialTrack struct {
	commonTrackFields
	nonLocalTrackFields
}

// LocalTrack carries only the common tier.
type LocalTrack struct {
	commonTrackFields
}

var (
	_ Track             = FullTrack{}
	_ Track             = PartialTrack{}
	_ Track             = LocalTrack{}
	_ FullTrackInfo     = FullTrack{}
	_ NonLocalTrackInfo = FullTrack{}
	_ NonLocalTrackInfo = PartialTrack{}
)

func (FullTrack) Variant() Variant    { return VariantFull }
func (PartialTrack) Variant() Variant { return VariantPartial }
func (LocalTrack) Variant() Variant   { return VariantLocal }

func (FullTrack) isTrack()    {}
func (PartialTrack) isTrack() {}
func (LocalTrack) isTrack()   {}

// Partial drops the full tier.
func (t FullTrack) Partial() PartialTrack {
	return PartialTrack{
		commonTrackFields:   t.commonTrackFields,
		nonLocalTrackFields: t.nonLocalTrackFields,
	}
}

// Local drops the full and non-local tiers.
func (t FullTrack) Local() LocalTrack { return LocalTrack{commonTrackFields: t.commonTrackFields} }

// Local drops the non-local tier.
func (t PartialTrack) Local() LocalTrack { return LocalTrack{commonTrackFields: t.commonTrackFields} }

// Local returns t itself.
func (t LocalTrack) Local() LocalTrack { return t }

// MarshalJSON encodes the track in the service's wire format.
func (t FullTrack) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	t.commonTrackFields.encode(w)
	t.nonLocalTrackFields.encode(w)
	t.fullTrackFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the track in the service's wire format.
func (t PartialTrack) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	t.commonTrackFields.encode(w)
	t.nonLocalTrackFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the track in the service's wire format.
func (t LocalTrack) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	t.commonTrackFields.encode(w)
	return w.marshal()
}

// AsFullTrack narrows t to a FullTrack. It fails with ErrUnsupportedNarrowing
// unless t holds a FullTrack.
func AsFullTrack(t Track) (FullTrack, error) {
	if full, ok := t.(FullTrack); ok {
		return full, nil
	}
	return FullTrack{}, &NarrowingError{Kind: KindTrack, From: variantOf(t), To: VariantFull}
}

// AsPartialTrack narrows t to a PartialTrack. It fails with
// ErrUnsupportedNarrowing if t is local.
func AsPartialTrack(t Track) (PartialTrack, error) {
	switch v := t.(type) {
	case FullTrack:
		return v.Partial(), nil
	case PartialTrack:
		return v, nil
	}
	return PartialTrack{}, &NarrowingError{Kind: KindTrack, From: variantOf(t), To: VariantPartial}
}

type trackObject struct {
	common   commonTrackFields
	nonLocal *nonLocalTrackFields
	full     *fullTrackFields
}

func decodeTrackObject(doc Document) (trackObject, error) {
	const kind = KindTrack
	var o trackObject
	var err error

	if err := doc.expectKind(kind); err != nil {
		return o, err
	}
	if err := doc.require(kind, "name", &o.common.name); err != nil {
		return o, err
	}
	if err := doc.require(kind, "duration_ms", &o.common.durationMs); err != nil {
		return o, err
	}
	if o.common.artists, err = decodeArtistList(kind, doc, "artists"); err != nil {
		return o, err
	}
	o.common.externalURLs = ExternalURLs{}
	for _, f := range []struct {
		key string
		v   any
	}{
		{"explicit", &o.common.explicit},
		{"disc_number", &o.common.discNumber},
		{"track_number", &o.common.trackNumber},
		{"external_urls", &o.common.externalURLs},
		{"is_local", &o.common.isLocal},
	} {
		if err := doc.optional(kind, f.key, f.v); err != nil {
			return o, err
		}
	}

	ok, err := doc.tier(kind, "id")
	if err != nil {
		return o, err
	}
	if ok {
		nl := nonLocalTrackFields{availableMarkets: []string{}}
		if err := doc.require(kind, "id", &nl.id); err != nil {
			return o, err
		}
		if err := doc.optional(kind, "preview_url", &nl.previewURL); err != nil {
			return o, err
		}
		if err := doc.optional(kind, "available_markets", &nl.availableMarkets); err != nil {
			return o, err
		}
		o.nonLocal = &nl
	}

	// Local files arrive with "popularity": 0 and a placeholder album of null
	// ids. Neither describes a catalog entity, so both are dropped.
	if o.nonLocal == nil && o.common.isLocal {
		return o, nil
	}

	ok, err = doc.fullTier(kind, o.nonLocal != nil, "album", "popularity")
	if err != nil {
		return o, err
	}
	if ok {
		full := fullTrackFields{externalIDs: ExternalIDs{}}
		albumDoc, err := doc.document(kind, "album")
		if err != nil {
			return o, err
		}
		if full.album, err = AlbumFromDocument(albumDoc); err != nil {
			return o, nestedError(kind, "album", err)
		}
		if full.popularity, err = doc.popularity(kind, "popularity"); err != nil {
			return o, err
		}
		if err := doc.optional(kind, "external_ids", &full.externalIDs); err != nil {
			return o, err
		}
		o.full = &full
	}
	return o, nil
}

func (o trackObject) track() (Track, error) {
	v, err := classify(KindTrack, o.nonLocal != nil, o.full != nil)
	if err != nil {
		return nil, err
	}
	switch v {
	case VariantFull:
		return FullTrack{o.common, *o.nonLocal, *o.full}, nil
	case VariantPartial:
		return PartialTrack{o.common, *o.nonLocal}, nil
	default:
		return LocalTrack{o.common}, nil
	}
}

func (o trackObject) expect(want Variant) error {
	return expectVariant(KindTrack, o.nonLocal != nil, o.full != nil, want)
}

// TrackFromDocument classifies a pre-parsed track payload.
func TrackFromDocument(doc Document) (Track, error) {
	o, err := decodeTrackObject(doc)
	if err != nil {
		return nil, err
	}
	return o.track()
}

// DecodeTrack decodes and classifies a single track payload.
func DecodeTrack(data []byte) (Track, error) {
	doc, err := parseDocument(KindTrack, data)
	if err != nil {
		return nil, err
	}
	return TrackFromDocument(doc)
}

// DecodeTracks decodes a multi-track response of the form {"tracks":[...]}.
// Artist top-track responses share this shape.
func DecodeTracks(data []byte) ([]Track, error) {
	return decodeEnvelope(KindTrack, "tracks", data, TrackFromDocument)
}

// DecodeFullTrack decodes a payload that must carry exactly the full track tiers.
func DecodeFullTrack(data []byte) (FullTrack, error) {
	o, err := decodeTrackBytes(data, VariantFull)
	if err != nil {
		return FullTrack{}, err
	}
	return FullTrack{o.common, *o.nonLocal, *o.full}, nil
}

// DecodePartialTrack decodes a payload that must carry exactly the partial track tiers.
func DecodePartialTrack(data []byte) (PartialTrack, error) {
	o, err := decodeTrackBytes(data, VariantPartial)
	if err != nil {
		return PartialTrack{}, err
	}
	return PartialTrack{o.common, *o.nonLocal}, nil
}

// DecodeLocalTrack decodes a payload that must carry only the common track tier.
func DecodeLocalTrack(data []byte) (LocalTrack, error) {
	o, err := decodeTrackBytes(data, VariantLocal)
	if err != nil {
		return LocalTrack{}, err
	}
	return LocalTrack{o.common}, nil
}

func decodeTrackBytes(data []byte, want Variant) (trackObject, error) {
	doc, err := parseDocument(KindTrack, data)
	if err != nil {
		return trackObject{}, err
	}
	o, err := decodeTrackObject(doc)
	if err != nil {
		return trackObject{}, err
	}
	return o, o.expect(want)
}
