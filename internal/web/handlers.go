package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-catalog/internal/catalog"
	"github.com/justestif/go-spotify-catalog/internal/model"
	"github.com/justestif/go-spotify-catalog/internal/store"
)

// Catalog is the part of catalog.Client the handlers use.
type Catalog interface {
	Artist(ctx context.Context, id string) (model.Artist, error)
	ArtistTopTracks(ctx context.Context, id, market string) ([]model.Track, error)
	Track(ctx context.Context, id string, opts ...catalog.RequestOption) (model.Track, error)
	Album(ctx context.Context, id string, opts ...catalog.RequestOption) (model.Album, error)
	Playlist(ctx context.Context, id string, opts ...catalog.RequestOption) (model.Playlist, error)
}

// Library is the part of store.LibraryRepository the handlers use.
type Library interface {
	SaveArtist(ctx context.Context, a model.Artist) (*store.Entry, error)
	SaveTrack(ctx context.Context, t model.Track) (*store.Entry, error)
	SaveAlbum(ctx context.Context, a model.Album) (*store.Entry, error)
	SavePlaylist(ctx context.Context, p model.Playlist) (*store.Entry, error)
	ListByVariant(ctx context.Context, kind model.Kind, variant model.Variant) ([]store.Entry, error)
}

var (
	_ Catalog = (*catalog.Client)(nil)
	_ Library = (*store.LibraryRepository)(nil)
)

// variantHeader carries the variant of the entity in the response body.
const variantHeader = "X-Entity-Variant"

var errNoLibrary = errors.New("library not configured")

// Handlers contains HTTP handlers for the lookup API.
type Handlers struct {
	catalog Catalog
	library Library
	log     logrus.FieldLogger
}

// NewHandlers creates a new Handlers instance. library may be nil.
func NewHandlers(c Catalog, library Library, logger logrus.FieldLogger) *Handlers {
	return &Handlers{catalog: c, library: library, log: logger}
}

// entity is any variant value the handlers can serve.
type entity interface {
	json.Marshaler
	Variant() model.Variant
}

// Artist handles GET /artists/{id}.
func (h *Handlers) Artist(w http.ResponseWriter, r *http.Request) {
	a, err := h.catalog.Artist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntity(w, http.StatusOK, a)
}

// ArtistTopTracks handles GET /artists/{id}/top-tracks?market=XX. The market
// defaults to US.
func (h *Handlers) ArtistTopTracks(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	if market == "" {
		market = "US"
	}
	tracks, err := h.catalog.ArtistTopTracks(r.Context(), chi.URLParam(r, "id"), market)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// Track handles GET /tracks/{id}.
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Track(r.Context(), chi.URLParam(r, "id"), marketOption(r)...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntity(w, http.StatusOK, t)
}

// Album handles GET /albums/{id}.
func (h *Handlers) Album(w http.ResponseWriter, r *http.Request) {
	a, err := h.catalog.Album(r.Context(), chi.URLParam(r, "id"), marketOption(r)...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntity(w, http.StatusOK, a)
}

// Playlist handles GET /playlists/{id}.
func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Playlist(r.Context(), chi.URLParam(r, "id"), marketOption(r)...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntity(w, http.StatusOK, p)
}

// entrySummary is the JSON form of a library entry, without the payload.
type entrySummary struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Variant   string    `json:"variant"`
	CatalogID *string   `json:"catalog_id"`
	Name      string    `json:"name"`
	SavedAt   time.Time `json:"saved_at"`
}

func summarize(e store.Entry) entrySummary {
	return entrySummary{
		Key:       e.Key.String(),
		Kind:      string(e.Kind),
		Variant:   e.Variant.String(),
		CatalogID: e.CatalogID,
		Name:      e.Name,
		SavedAt:   e.SavedAt,
	}
}

// SaveToLibrary handles POST /library/{kind}/{id}: it fetches the entity and
// stores it.
func (h *Handlers) SaveToLibrary(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		h.writeError(w, errNoLibrary)
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var (
		entry *store.Entry
		err   error
	)
	switch kind := model.Kind(chi.URLParam(r, "kind")); kind {
	case model.KindArtist:
		var a model.Artist
		if a, err = h.catalog.Artist(ctx, id); err == nil {
			entry, err = h.library.SaveArtist(ctx, a)
		}
	case model.KindTrack:
		var t model.Track
		if t, err = h.catalog.Track(ctx, id); err == nil {
			entry, err = h.library.SaveTrack(ctx, t)
		}
	case model.KindAlbum:
		var a model.Album
		if a, err = h.catalog.Album(ctx, id); err == nil {
			entry, err = h.library.SaveAlbum(ctx, a)
		}
	case model.KindPlaylist:
		var p model.Playlist
		if p, err = h.catalog.Playlist(ctx, id); err == nil {
			entry, err = h.library.SavePlaylist(ctx, p)
		}
	default:
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("unknown kind %q", kind)})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set(variantHeader, entry.Variant.String())
	h.writeJSON(w, http.StatusCreated, summarize(*entry))
}

// ListLibrary handles GET /library/{kind}?variant=full|partial|local. The
// variant defaults to full.
func (h *Handlers) ListLibrary(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		h.writeError(w, errNoLibrary)
		return
	}

	kind := model.Kind(chi.URLParam(r, "kind"))
	if !isLibraryKind(kind) {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("unknown kind %q", kind)})
		return
	}

	variant := model.VariantFull
	if v := r.URL.Query().Get("variant"); v != "" {
		var err error
		if variant, err = model.ParseVariant(v); err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
	}

	entries, err := h.library.ListByVariant(r.Context(), kind, variant)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]entrySummary, len(entries))
	for i, e := range entries {
		out[i] = summarize(e)
	}
	h.writeJSON(w, http.StatusOK, out)
}

// isLibraryKind reports whether the library stores entities of kind.
func isLibraryKind(kind model.Kind) bool {
	switch kind {
	case model.KindArtist, model.KindTrack, model.KindAlbum, model.KindPlaylist:
		return true
	}
	return false
}

func marketOption(r *http.Request) []catalog.RequestOption {
	if m := r.URL.Query().Get("market"); m != "" {
		return []catalog.RequestOption{catalog.WithMarket(m)}
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps an error to the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrRateLimited), errors.Is(err, errNoLibrary):
		return http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrUnauthorized),
		errors.Is(err, model.ErrSchema),
		errors.Is(err, model.ErrInvariant):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("status", status).Warn("request failed")
	}
	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *Handlers) writeEntity(w http.ResponseWriter, status int, e entity) {
	w.Header().Set(variantHeader, e.Variant().String())
	h.writeJSON(w, status, e)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Error("encoding response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
