package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taxonomy/internal/apperr"
	"github.com/starford/taxonomy/internal/checksum"
	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/store"
	"github.com/starford/taxonomy/internal/taxonservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *taxonservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *taxonservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetTaxonomy handles GET /api/taxonomy.
//
//	@Summary		Export the stored taxonomy as a path-keyed document
//	@Tags			taxonomy
//	@Produce		json
//	@Param			format	query		string	false	"Document format"	Enums(json, toml, yaml)
//	@Success		200		{object}	map[string]any
//	@Success		304
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/taxonomy [get]
func (h *Handler) GetTaxonomy(w http.ResponseWriter, r *http.Request) {
	format := codec.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := codec.ParseFormat(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		format = f
	}
	c, err := codec.For(format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Load(r.Context(), &buf, format); err != nil {
		if errors.Is(err, store.ErrNoTable) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		slog.Error("api: export failed", slog.String("format", string(format)), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	etag := checksum.ETag(buf.Bytes())
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GetEntry handles GET /api/taxonomy/entries/{name}.
//
//	@Summary		Get a single entry with its full path and children
//	@Tags			taxonomy
//	@Produce		json
//	@Param			name	path		string	true	"Entry identifier"
//	@Success		200		{object}	taxonservice.EntryDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/taxonomy/entries/{name} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := h.svc.Lookup(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, store.ErrNoTable):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		default:
			slog.Error("api: lookup failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
