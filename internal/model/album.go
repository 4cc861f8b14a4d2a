package model

import (
	"encoding/json"
	"slices"
)

// CommonAlbumInfo is implemented by every album variant.
type CommonAlbumInfo interface {
	Name() string
	Artists() []Artist
	Images() []Image
	ExternalURLs() ExternalURLs
}

// NonLocalAlbumInfo is implemented by FullAlbum and PartialAlbum.
type NonLocalAlbumInfo interface {
	ID() string
	// AlbumType is "album", "single" or "compilation".
	AlbumType() string
	// ReleaseDate is formatted according to ReleaseDatePrecision: "2006",
	// "2006-03" or "2006-03-01".
	ReleaseDate() string
	ReleaseDatePrecision() string
	TotalTracks() int
	AvailableMarkets() []string
}

// FullAlbumInfo is implemented by FullAlbum only.
type FullAlbumInfo interface {
	Genres() []string
	Label() string
	Popularity() int
	Copyrights() []Copyright
	ExternalIDs() ExternalIDs
	// Tracks is the first page of the album's tracks as embedded by the service.
	Tracks() []Track
}

// Album is one of FullAlbum, PartialAlbum or LocalAlbum.
type Album interface {
	CommonAlbumInfo
	json.Marshaler

	Variant() Variant
	Local() LocalAlbum

	isAlbum()
}

type commonAlbumFields struct {
	name         string
	artists      []Artist
	images       []Image
	externalURLs ExternalURLs
}

func (f commonAlbumFields) Name() string               { return f.name }
func (f commonAlbumFields) Artists() []Artist          { return slices.Clone(f.artists) }
func (f commonAlbumFields) Images() []Image            { return cloneImages(f.images) }
func (f commonAlbumFields) ExternalURLs() ExternalURLs { return cloneURLs(f.externalURLs) }

func (f commonAlbumFields) encode(w wireObject) {
	w["type"] = KindAlbum
	w["name"] = f.name
	w["artists"] = orEmpty(f.artists)
	w["images"] = orEmpty(f.images)
	w["external_urls"] = f.externalURLs
}

type nonLocalAlbumFields struct {
	id                   string
	albumType            string
	releaseDate          string
	releaseDatePrecision string
	totalTracks          int
	availableMarkets     []string
}

func (f nonLocalAlbumFields) ID() string                   { return f.id }
func (f nonLocalAlbumFields) AlbumType() string            { return f.albumType }
func (f nonLocalAlbumFields) ReleaseDate() string          { return f.releaseDate }
func (f nonLocalAlbumFields) ReleaseDatePrecision() string { return f.releaseDatePrecision }
func (f nonLocalAlbumFields) TotalTracks() int             { return f.totalTracks }
func (f nonLocalAlbumFields) AvailableMarkets() []string   { return cloneStrings(f.availableMarkets) }

func (f nonLocalAlbumFields) encode(w wireObject) {
	w["id"] = f.id
	w["album_type"] = f.albumType
	w["release_date"] = f.releaseDate
	w["release_date_precision"] = f.releaseDatePrecision
	w["total_tracks"] = f.totalTracks
	w["available_markets"] = orEmpty(f.availableMarkets)
}

type fullAlbumFields struct {
	genres      []string
	label       string
	popularity  int
	copyrights  []Copyright
	externalIDs ExternalIDs
	tracks      []Track
}

func (f fullAlbumFields) Genres() []string         { return cloneStrings(f.genres) }
func (f fullAlbumFields) Label() string            { return f.label }
func (f fullAlbumFields) Popularity() int          { return f.popularity }
func (f fullAlbumFields) Copyrights() []Copyright  { return slices.Clone(f.copyrights) }
func (f fullAlbumFields) ExternalIDs() ExternalIDs { return cloneIDs(f.externalIDs) }
func (f fullAlbumFields) Tracks() []Track          { return slices.Clone(f.tracks) }

func (f fullAlbumFields) encode(w wireObject) {
	w["genres"] = orEmpty(f.genres)
	w["label"] = f.label
	w["popularity"] = f.popularity
	w["copyrights"] = orEmpty(f.copyrights)
	w["external_ids"] = f.externalIDs
	w["tracks"] = map[string]any{
		"items": orEmpty(f.tracks),
		"total": len(f.tracks),
	}
}

// FullAlbum carries every tier of album information.
type FullAlbum struct {
	commonAlbumFields
	nonLocalAlbumFields
	fullAlbumFields
}

// PartialAlbum carries the common and non-local tiers.
type PartialAlbum struct {
	commonAlbumFields
	nonLocalAlbumFields
}

// LocalAlbum carries only the common tier.
type LocalAlbum struct {
	commonAlbumFields
}

var (
	_ Album             = FullAlbum{}
	_ Album             = PartialAlbum{}
	_ Album             = LocalAlbum{}
	_ FullAlbumInfo     = FullAlbum{}
	_ NonLocalAlbumInfo = FullAlbum{}
	_ NonLocalAlbumInfo = PartialAlbum{}
)

func (FullAlbum) Variant() Variant    { return VariantFull }
func (PartialAlbum) Variant() Variant { return VariantPartial }
func (LocalAlbum) Variant() Variant   { return VariantLocal }

func (FullAlbum) isAlbum()    {}
func (PartialAlbum) isAlbum() {}
func (LocalAlbum) isAlbum()   {}

// Partial drops the full tier.
func (a FullAlbum) Partial() PartialAlbum {
	return PartialAlbum{
		commonAlbumFields:   a.commonAlbumFields,
		nonLocalAlbumFields: a.nonLocalAlbumFields,
	}
}

// Local drops the full and non-local tiers.
func (a FullAlbum) Local() LocalAlbum { return LocalAlbum{commonAlbumFields: a.commonAlbumFields} }

// Local drops the non-local tier.
func (a PartialAlbum) Local() LocalAlbum { return LocalAlbum{commonAlbumFields: a.commonAlbumFields} }

// Local returns a itself.
func (a LocalAlbum) Local() LocalAlbum { return a }

// MarshalJSON encodes the album in the service's wire format.
func (a FullAlbum) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	a.commonAlbumFields.encode(w)
	a.nonLocalAlbumFields.encode(w)
	a.fullAlbumFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the album in the service's wire format.
func (a PartialAlbum) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	a.commonAlbumFields.encode(w)
	a.nonLocalAlbumFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the album in the service's wire format.
func (a LocalAlbum) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	a.commonAlbumFields.encode(w)
	return w.marshal()
}

// AsFullAlbum narrows a to a FullAlbum. It fails with ErrUnsupportedNarrowing
// unless a holds a FullAlbum.
func AsFullAlbum(a Album) (FullAlbum, error) {
	if full, ok := a.(FullAlbum); ok {
		return full, nil
	}
	return FullAlbum{}, &NarrowingError{Kind: KindAlbum, From: variantOf(a), To: VariantFull}
}

// AsPartialAlbum narrows a to a PartialAlbum. It fails with
// ErrUnsupportedNarrowing if a is local.
func AsPartialAlbum(a Album) (PartialAlbum, error) {
	switch v := a.(type) {
	case FullAlbum:
		return v.Partial(), nil
	case PartialAlbum:
		return v, nil
	}
	return PartialAlbum{}, &NarrowingError{Kind: KindAlbum, From: variantOf(a), To: VariantPartial}
}

type albumObject struct {
	common   commonAlbumFields
	nonLocal *nonLocalAlbumFields
	full     *fullAlbumFields
}

func decodeAlbumObject(doc Document) (albumObject, error) {
	const kind = KindAlbum
	var o albumObject
	var err error

	if err := doc.expectKind(kind); err != nil {
		return o, err
	}
	if err := doc.require(kind, "name", &o.common.name); err != nil {
		return o, err
	}
	if o.common.artists, err = decodeArtistList(kind, doc, "artists"); err != nil {
		return o, err
	}
	o.common.images = []Image{}
	if err := doc.optional(kind, "images", &o.common.images); err != nil {
		return o, err
	}
	o.common.externalURLs = ExternalURLs{}
	if err := doc.optional(kind, "external_urls", &o.common.externalURLs); err != nil {
		return o, err
	}

	ok, err := doc.tier(kind, "id", "album_type", "release_date")
	if err != nil {
		return o, err
	}
	if ok {
		nl := nonLocalAlbumFields{availableMarkets: []string{}}
		for _, f := range []struct {
			key      string
			v        any
			required bool
		}{
			{"id", &nl.id, true},
			{"album_type", &nl.albumType, true},
			{"release_date", &nl.releaseDate, true},
			{"release_date_precision", &nl.releaseDatePrecision, false},
			{"total_tracks", &nl.totalTracks, false},
			{"available_markets", &nl.availableMarkets, false},
		} {
			if f.required {
				err = doc.require(kind, f.key, f.v)
			} else {
				err = doc.optional(kind, f.key, f.v)
			}
			if err != nil {
				return o, err
			}
		}
		o.nonLocal = &nl
	}

	ok, err = doc.fullTier(kind, o.nonLocal != nil, "genres", "label", "popularity")
	if err != nil {
		return o, err
	}
	if ok {
		full := fullAlbumFields{
			copyrights:  []Copyright{},
			externalIDs: ExternalIDs{},
		}
		if err := doc.require(kind, "genres", &full.genres); err != nil {
			return o, err
		}
		if err := doc.require(kind, "label", &full.label); err != nil {
			return o, err
		}
		if full.popularity, err = doc.popularity(kind, "popularity"); err != nil {
			return o, err
		}
		if err := doc.optional(kind, "copyrights", &full.copyrights); err != nil {
			return o, err
		}
		if err := doc.optional(kind, "external_ids", &full.externalIDs); err != nil {
			return o, err
		}
		if full.tracks, err = decodeTrackPage(kind, doc, "tracks"); err != nil {
			return o, err
		}
		o.full = &full
	}
	return o, nil
}

// decodeTrackPage decodes the items of an embedded paging object.
func decodeTrackPage(kind Kind, doc Document, key string) ([]Track, error) {
	page, err := doc.document(kind, key)
	if err != nil {
		return nil, err
	}
	raw, err := page.list(kind, "items")
	if err != nil {
		return nil, nestedError(kind, key, err)
	}
	tracks, err := decodeList(kind, "items", raw, TrackFromDocument)
	if err != nil {
		return nil, nestedError(kind, key, err)
	}
	return tracks, nil
}

func (o albumObject) album() (Album, error) {
	v, err := classify(KindAlbum, o.nonLocal != nil, o.full != nil)
	if err != nil {
		return nil, err
	}
	switch v {
	case VariantFull:
		return FullAlbum{o.common, *o.nonLocal, *o.full}, nil
	case VariantPartial:
		return PartialAlbum{o.common, *o.nonLocal}, nil
	default:
		return LocalAlbum{o.common}, nil
	}
}

func (o albumObject) expect(want Variant) error {
	return expectVariant(KindAlbum, o.nonLocal != nil, o.full != nil, want)
}

// AlbumFromDocument classifies a pre-parsed album payload.
func AlbumFromDocument(doc Document) (Album, error) {
	o, err := decodeAlbumObject(doc)
	if err != nil {
		return nil, err
	}
	return o.album()
}

// DecodeAlbum decodes and classifies a single album payload.
func DecodeAlbum(data []byte) (Album, error) {
	doc, err := parseDocument(KindAlbum, data)
	if err != nil {
		return nil, err
	}
	return AlbumFromDocument(doc)
}

// DecodeAlbums decodes a multi-album response of the form {"albums":[...]}.
func DecodeAlbums(data []byte) ([]Album, error) {
	return decodeEnvelope(KindAlbum, "albums", data, AlbumFromDocument)
}

// DecodeFullAlbum decodes a payload that must carry exactly the full album tiers.
func DecodeFullAlbum(data []byte) (FullAlbum, error) {
	o, err := decodeAlbumBytes(data, VariantFull)
	if err != nil {
		return FullAlbum{}, err
	}
	return FullAlbum{o.common, *o.nonLocal, *o.full}, nil
}

// DecodePartialAlbum decodes a payload that must carry exactly the partial album tiers.
func DecodePartialAlbum(data []byte) (PartialAlbum, error) {
	o, err := decodeAlbumBytes(data, VariantPartial)
	if err != nil {
		return PartialAlbum{}, err
	}
	return PartialAlbum{o.common, *o.nonLocal}, nil
}

// DecodeLocalAlbum decodes a payload that must carry only the common album tier.
func DecodeLocalAlbum(data []byte) (LocalAlbum, error) {
	o, err := decodeAlbumBytes(data, VariantLocal)
	if err != nil {
		return LocalAlbum{}, err
	}
	return LocalAlbum{o.common}, nil
}

func decodeAlbumBytes(data []byte, want Variant) (albumObject, error) {
	doc, err := parseDocument(KindAlbum, data)
	if err != nil {
		return albumObject{}, err
	}
	o, err := decodeAlbumObject(doc)
	if err != nil {
		return albumObject{}, err
	}
	return o, o.expect(want)
}
