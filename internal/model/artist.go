package model

import "encoding/json"

// CommonArtistInfo is implemented by every artist variant.
type CommonArtistInfo interface {
	// Name is the artist's display name.
	Name() string
	// ExternalURLs lists the artist's pages on external providers.
	ExternalURLs() ExternalURLs
}

// NonLocalArtistInfo is implemented by FullArtist and PartialArtist.
type NonLocalArtistInfo interface {
	// ID is the artist's catalog identifier.
	ID() string
}

// FullArtistInfo is implemented by FullArtist only.
type FullArtistInfo interface {
	// Genres the artist is associated with.
	Genres() []string
	// Images of the artist, widest first.
	Images() []Image
	// Popularity between 0 and 100.
	Popularity() int
}

// Artist is one of FullArtist, PartialArtist or LocalArtist.
//
// Full artists come from the artist endpoints, partial artists are embedded in
// track and album responses, and local artists appear on user-uploaded local
// tracks inside playlists.
type Artist interface {
	CommonArtistInfo
	json.Marshaler

	// Variant reports which concrete type the value holds.
	Variant() Variant
	// Local drops every tier but the common one.
	Local() LocalArtist

	isArtist()
}

type commonArtistFields struct {
	name         string
	externalURLs ExternalURLs
}

func (f commonArtistFields) Name() string               { return f.name }
func (f commonArtistFields) ExternalURLs() ExternalURLs { return cloneURLs(f.externalURLs) }

func (f commonArtistFields) encode(w wireObject) {
	w["type"] = KindArtist
	w["name"] = f.name
	w["external_urls"] = f.externalURLs
}

type nonLocalArtistFields struct {
	id string
}

func (f nonLocalArtistFields) ID() string { return f.id }

func (f nonLocalArtistFields) encode(w wireObject) {
	w["id"] = f.id
}

type fullArtistFields struct {
	genres     []string
	images     []Image
	popularity int
}

func (f fullArtistFields) Genres() []string { return cloneStrings(f.genres) }
func (f fullArtistFields) Images() []Image  { return cloneImages(f.images) }
func (f fullArtistFields) Popularity() int  { return f.popularity }

func (f fullArtistFields) encode(w wireObject) {
	w["genres"] = orEmpty(f.genres)
	w["images"] = orEmpty(f.images)
	w["popularity"] = f.popularity
}

// FullArtist carries every tier of artist information.
type FullArtist struct {
	commonArtistFields
	nonLocalArtistFields
	fullArtistFields
}

// PartialArtist carries the common and non-local tiers.
type PartialArtist struct {
	commonArtistFields
	nonLocalArtistFields
}

// LocalArtist carries only the common tier.
type LocalArtist struct {
	commonArtistFields
}

var (
	_ Artist             = FullArtist{}
	_ Artist             = PartialArtist{}
	_ Artist             = LocalArtist{}
	_ FullArtistInfo     = FullArtist{}
	_ NonLocalArtistInfo = FullArtist{}
	_ NonLocalArtistInfo = PartialArtist{}
)

func (FullArtist) Variant() Variant    { return VariantFull }
func (PartialArtist) Variant() Variant { return VariantPartial }
func (LocalArtist) Variant() Variant   { return VariantLocal }

func (FullArtist) isArtist()    {}
func (PartialArtist) isArtist() {}
func (LocalArtist) isArtist()   {}

// Partial drops the full tier.
func (a FullArtist) Partial() PartialArtist {
	return PartialArtist{
		commonArtistFields:   a.commonArtistFields,
		nonLocalArtistFields: a.nonLocalArtistFields,
	}
}

// Local drops the full and non-local tiers.
func (a FullArtist) Local() LocalArtist {
	return LocalArtist{commonArtistFields: a.commonArtistFields}
}

// Local drops the non-local tier.
func (a PartialArtist) Local() LocalArtist {
	return LocalArtist{commonArtistFields: a.commonArtistFields}
}

// Local returns a itself.
func (a LocalArtist) Local() LocalArtist { return a }

// MarshalJSON encodes the artist in the service's wire format.
func (a FullArtist) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	a.commonArtistFields.encode(w)
	a.nonLocalArtistFields.encode(w)
	a.fullArtistFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the artist in the service's wire format.
func (a PartialArtist) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	a.commonArtistFields.encode(w)
	a.nonLocalArtistFields.encode(w)
	return w.marshal()
}

// MarshalJSON encodes the artist in the service's wire format.
func (a LocalArtist) MarshalJSON() ([]byte, error) {
	w := wireObject{}
	a.commonArtistFields.encode(w)
	return w.marshal()
}

// AsFullArtist narrows a to a FullArtist. It fails with ErrUnsupportedNarrowing
// unless a holds a FullArtist.
func AsFullArtist(a Artist) (FullArtist, error) {
	if full, ok := a.(FullArtist); ok {
		return full, nil
	}
	return FullArtist{}, &NarrowingError{Kind: KindArtist, From: variantOf(a), To: VariantFull}
}

// AsPartialArtist narrows a to a PartialArtist, dropping the full tier if a is
// full. It fails with ErrUnsupportedNarrowing if a is local.
func AsPartialArtist(a Artist) (PartialArtist, error) {
	switch v := a.(type) {
	case FullArtist:
		return v.Partial(), nil
	case PartialArtist:
		return v, nil
	}
	return PartialArtist{}, &NarrowingError{Kind: KindArtist, From: variantOf(a), To: VariantPartial}
}

// artistObject mirrors whichever artist tiers the server sent.
type artistObject struct {
	common   commonArtistFields
	nonLocal *nonLocalArtistFields
	full     *fullArtistFields
}

func decodeArtistObject(doc Document) (artistObject, error) {
	const kind = KindArtist
	var o artistObject

	if err := doc.expectKind(kind); err != nil {
		return o, err
	}
	if err := doc.require(kind, "name", &o.common.name); err != nil {
		return o, err
	}
	o.common.externalURLs = ExternalURLs{}
	if err := doc.optional(kind, "external_urls", &o.common.externalURLs); err != nil {
		return o, err
	}

	ok, err := doc.tier(kind, "id")
	if err != nil {
		return o, err
	}
	if ok {
		var nl nonLocalArtistFields
		if err := doc.require(kind, "id", &nl.id); err != nil {
			return o, err
		}
		o.nonLocal = &nl
	}

	ok, err = doc.fullTier(kind, o.nonLocal != nil, "genres", "images", "popularity")
	if err != nil {
		return o, err
	}
	if ok {
		var full fullArtistFields
		if err := doc.require(kind, "genres", &full.genres); err != nil {
			return o, err
		}
		if err := doc.require(kind, "images", &full.images); err != nil {
			return o, err
		}
		if full.popularity, err = doc.popularity(kind, "popularity"); err != nil {
			return o, err
		}
		o.full = &full
	}
	return o, nil
}

func (o artistObject) variant() (Variant, error) {
	return classify(KindArtist, o.nonLocal != nil, o.full != nil)
}

func (o artistObject) artist() (Artist, error) {
	v, err := o.variant()
	if err != nil {
		return nil, err
	}
	switch v {
	case VariantFull:
		return FullArtist{o.common, *o.nonLocal, *o.full}, nil
	case VariantPartial:
		return PartialArtist{o.common, *o.nonLocal}, nil
	default:
		return LocalArtist{o.common}, nil
	}
}

func (o artistObject) expect(want Variant) error {
	return expectVariant(KindArtist, o.nonLocal != nil, o.full != nil, want)
}

// ArtistFromDocument classifies a pre-parsed artist payload.
func ArtistFromDocument(doc Document) (Artist, error) {
	o, err := decodeArtistObject(doc)
	if err != nil {
		return nil, err
	}
	return o.artist()
}

// DecodeArtist decodes and classifies a single artist payload.
func DecodeArtist(data []byte) (Artist, error) {
	doc, err := parseDocument(KindArtist, data)
	if err != nil {
		return nil, err
	}
	return ArtistFromDocument(doc)
}

// DecodeArtists decodes a multi-artist response of the form {"artists":[...]}.
func DecodeArtists(data []byte) ([]Artist, error) {
	return decodeEnvelope(KindArtist, "artists", data, ArtistFromDocument)
}

// DecodeFullArtist decodes a payload that must carry exactly the full artist tiers.
func DecodeFullArtist(data []byte) (FullArtist, error) {
	o, err := decodeArtistBytes(data, VariantFull)
	if err != nil {
		return FullArtist{}, err
	}
	return FullArtist{o.common, *o.nonLocal, *o.full}, nil
}

// DecodePartialArtist decodes a payload that must carry exactly the partial artist tiers.
func DecodePartialArtist(data []byte) (PartialArtist, error) {
	o, err := decodeArtistBytes(data, VariantPartial)
	if err != nil {
		return PartialArtist{}, err
	}
	return PartialArtist{o.common, *o.nonLocal}, nil
}

// DecodeLocalArtist decodes a payload that must carry only the common artist tier.
func DecodeLocalArtist(data []byte) (LocalArtist, error) {
	o, err := decodeArtistBytes(data, VariantLocal)
	if err != nil {
		return LocalArtist{}, err
	}
	return LocalArtist{o.common}, nil
}

func decodeArtistBytes(data []byte, want Variant) (artistObject, error) {
	doc, err := parseDocument(KindArtist, data)
	if err != nil {
		return artistObject{}, err
	}
	o, err := decodeArtistObject(doc)
	if err != nil {
		return artistObject{}, err
	}
	return o, o.expect(want)
}

func decodeArtistList(kind Kind, doc Document, key string) ([]Artist, error) {
	raw, err := doc.list(kind, key)
	if err != nil {
		return nil, err
	}
	return decodeList(kind, key, raw, ArtistFromDocument)
}

// variantOf tolerates nil interface values, which report the zero Variant.
func variantOf(v interface{ Variant() Variant }) Variant {
	if v == nil {
		return 0
	}
	return v.Variant()
}
