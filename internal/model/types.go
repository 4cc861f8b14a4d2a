package model

import (
	"maps"
	"slices"
)

// ExternalURLs maps a provider name to the entity's URL on that provider.
type ExternalURLs map[string]string

// Spotify returns the open.spotify.com URL, or "" when absent.
func (u ExternalURLs) Spotify() string {
	return u["spotify"]
}

// ExternalIDs maps an identifier scheme (isrc, ean, upc) to its value.
type ExternalIDs map[string]string

// ISRC returns the International Standard Recording Code, or "" when absent.
func (ids ExternalIDs) ISRC() string { return ids["isrc"] }

// UPC returns the Universal Product Code, or "" when absent.
func (ids ExternalIDs) UPC() string { return ids["upc"] }

// Image is a reference to artwork hosted by the service. Width and Height are
// zero when the service does not report them.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Copyright is a copyright statement attached to an album.
type Copyright struct {
	Text string `json:"text"`
	Type string `json:"type"` // "C" or "P"
}

// PublicUser is the reduced user profile embedded in playlists.
type PublicUser struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

func cloneImages(images []Image) []Image { return slices.Clone(images) }

func cloneStrings(s []string) []string { return slices.Clone(s) }

func cloneURLs(u ExternalURLs) ExternalURLs { return maps.Clone(u) }

func cloneIDs(ids ExternalIDs) ExternalIDs { return maps.Clone(ids) }
