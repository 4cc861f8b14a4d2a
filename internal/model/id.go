package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidID is returned when an identifier, URI or URL cannot be parsed.
var ErrInvalidID = errors.New("invalid catalog id")

const openHost = "open.spotify.com"

// ID is a bare base-62 catalog identifier.
type ID string

// URI returns the "spotify:<kind>:<id>" form.
func (id ID) URI(kind Kind) string {
	return "spotify:" + string(kind) + ":" + string(id)
}

func (id ID) String() string { return string(id) }

// ParseID extracts the identifier of an entity of the given kind from a bare id,
// a "spotify:<kind>:<id>" URI, or an open.spotify.com URL. URIs and URLs naming
// a different kind are rejected.
func ParseID(kind Kind, s string) (ID, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "spotify:"):
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return "", fmt.Errorf("%w: malformed uri %q", ErrInvalidID, s)
		}
		if Kind(parts[1]) != kind {
			return "", fmt.Errorf("%w: uri %q is not a %s", ErrInvalidID, s, kind)
		}
		s = parts[2]

	case strings.Contains(s, openHost):
		u, err := url.Parse(s)
		if err != nil || u.Host != openHost {
			return "", fmt.Errorf("%w: malformed url %q", ErrInvalidID, s)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		// Localised links carry a leading "intl-xx" segment.
		if len(parts) == 3 && strings.HasPrefix(parts[0], "intl-") {
			parts = parts[1:]
		}
		if len(parts) != 2 {
			return "", fmt.Errorf("%w: malformed url %q", ErrInvalidID, s)
		}
		if Kind(parts[0]) != kind {
			return "", fmt.Errorf("%w: url %q is not a %s", ErrInvalidID, s, kind)
		}
		s = parts[1]
	}

	if !isBase62(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(s), nil
}

func isBase62(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
