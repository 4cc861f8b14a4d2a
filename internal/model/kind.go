// Package model implements the tiered entity model for catalog API responses.
//
// The service returns the same logical entity with varying completeness. Every
// payload is decoded into a raw object holding the common field tier and, when
// present, the non-local and full tiers. The raw object is then classified into
// exactly one variant:
//
//	non-local  full   variant
//	present    present  Full
//	present    absent   Partial
//	absent     absent   Local
//	absent     present  error (ErrInvalidTierCombination)
//
// Variants are sealed: Artist, Track and Album are implemented only by their
// Full, Partial and Local structs, Playlist only by FullPlaylist and
// PartialPlaylist. Capability views (CommonArtistInfo, FullArtistInfo, ...) are
// implemented once per tier and promoted to the variants that embed that tier,
// so asking a PartialArtist for its genres is a compile error.
//
// Values are immutable after construction and safe for concurrent use.
package model

import "fmt"

// Kind is the entity-type discriminant carried in the "type" key.
type Kind string

// Entity kinds.
const (
	KindArtist   Kind = "artist"
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
	KindUser     Kind = "user"
	KindEpisode  Kind = "episode"
)

// Variant identifies which field tiers an entity holds.
type Variant int

// Variants, from most to least complete.
const (
	VariantFull Variant = iota + 1
	VariantPartial
	VariantLocal
)

func (v Variant) String() string {
	switch v {
	case VariantFull:
		return "full"
	case VariantPartial:
		return "partial"
	case VariantLocal:
		return "local"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "full":
		return VariantFull, nil
	case "partial":
		return VariantPartial, nil
	case "local":
		return VariantLocal, nil
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// classify maps tier presence to a variant.
func classify(kind Kind, nonLocal, full bool) (Variant, error) {
	switch {
	case nonLocal && full:
		return VariantFull, nil
	case nonLocal:
		return VariantPartial, nil
	case !full:
		return VariantLocal, nil
	}
	return 0, &TierError{Kind: kind, NonLocal: nonLocal, Full: full}
}

// expectVariant classifies and then requires the exact variant want.
func expectVariant(kind Kind, nonLocal, full bool, want Variant) error {
	got, err := classify(kind, nonLocal, full)
	if err != nil {
		return err
	}
	if got != want {
		return &NarrowingError{Kind: kind, From: got, To: want}
	}
	return nil
}
