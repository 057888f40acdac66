package handlers

import (
	"errors"
	"net/http"

	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/query"
)

// GalleryCacheControl gives browsers a short TTL and shared caches a longer
// window with stale-while-revalidate.
const GalleryCacheControl = "public, max-age=60, s-maxage=300, stale-while-revalidate=600"

// Gallery serves GET /gallery.
func (h *Handlers) Gallery(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParseParams(r.URL.Query(), h.defaultLocale)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}

	page, err := h.gallery.List(r.Context(), params)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", GalleryCacheControl)
	w.Header().Set("Content-Language", string(params.Locale))
	writeJSONResponse(w, http.StatusOK, page)
}

// GalleryTags serves GET /gallery/tags.
func (h *Handlers) GalleryTags(w http.ResponseWriter, r *http.Request) {
	locale := h.defaultLocale
	if s := r.URL.Query().Get("locale"); s != "" {
		l, err := query.ParseLocale(s)
		if err != nil {
			writeQueryError(w, r, err)
			return
		}
		locale = l
	}

	list, err := h.gallery.Tags(r.Context(), locale)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", GalleryCacheControl)
	w.Header().Set("Content-Language", string(locale))
	writeJSONResponse(w, http.StatusOK, list)
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  string `json:"code"`
}

// writeQueryError maps validation failures to 400 with the offending field;
// everything else is logged and returned as a generic 500.
func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Cache-Control", "no-store")

	var ve *gallery.ValidationError
	if errors.As(err, &ve) {
		writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
			Error: ve.Error(),
			Field: ve.Field,
			Code:  ve.Code(),
		})
		return
	}

	logging.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSONResponse(w, http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  "internal_error",
	})
}
