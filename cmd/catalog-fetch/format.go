package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/justestif/go-spotify-catalog/internal/model"
)

// formatTrack renders "name - first artist (album)". Only full tracks carry an
// album; the other variants print a placeholder.
func formatTrack(t model.Track) string {
	artist := "unknown artist"
	if artists := t.Artists(); len(artists) > 0 {
		artist = artists[0].Name()
	}

	album := "no album"
	if full, ok := t.(model.FullTrack); ok {
		album = full.Album().Name()
	}
	if t.IsLocal() {
		album += ", local file"
	}

	return fmt.Sprintf("%s - %s (%s)", t.Name(), artist, album)
}

// printArtist prints whatever the artist's variant knows about it.
func printArtist(w io.Writer, a model.Artist) {
	fmt.Fprintf(w, "%s [%s]\n", a.Name(), a.Variant())

	if v, ok := a.(model.NonLocalArtistInfo); ok {
		fmt.Fprintf(w, "  id:         %s\n", v.ID())
	}
	if url := a.ExternalURLs().Spotify(); url != "" {
		fmt.Fprintf(w, "  url:        %s\n", url)
	}

	switch a := a.(type) {
	case model.FullArtist:
		fmt.Fprintf(w, "  popularity: %d\n", a.Popularity())
		if genres := a.Genres(); len(genres) > 0 {
			fmt.Fprintf(w, "  genres:     %s\n", strings.Join(genres, ", "))
		}
		if images := a.Images(); len(images) > 0 {
			fmt.Fprintf(w, "  image:      %s\n", images[0].URL)
		}
	case model.PartialArtist:
		fmt.Fprintln(w, "  (partial object, fetch the artist itself for full details)")
	case model.LocalArtist:
		fmt.Fprintln(w, "  (local file, not in the catalog)")
	}
}
