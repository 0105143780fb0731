package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	apppublic "hilo-casino/internal/app/public"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type PublicHandlers struct {
	publicSvc *apppublic.Service
}

func NewPublicHandlers(publicSvc *apppublic.Service) *PublicHandlers {
	return &PublicHandlers{publicSvc: publicSvc}
}

func (h *PublicHandlers) Rooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicQueryTotal.Add(1)
		writeJSON(w, h.publicSvc.Rooms())
	}
}

func (h *PublicHandlers) Room() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicQueryTotal.Add(1)
		resp, err := h.publicSvc.Room(chi.URLParam(r, "room_id"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicQueryTotal.Add(1)
		resp, err := h.publicSvc.Leaderboard(chi.URLParam(r, "room_id"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Rounds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicQueryTotal.Add(1)
		limit, offset := ParsePagination(r)
		resp, err := h.publicSvc.Rounds(r.Context(), chi.URLParam(r, "room_id"), limit, offset)
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricVerifyTotal.Add(1)
		q := r.URL.Query()
		resp, err := h.publicSvc.Verify(r.Context(), q.Get("seed"), q.Get("commit"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writePublicError(w http.ResponseWriter, err error) {
	metricPublicQueryErrors.Add(1)
	switch {
	case errors.Is(err, apppublic.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, apppublic.ErrRoomNotFound):
		WriteHTTPError(w, http.StatusNotFound, "room_not_found")
	case errors.Is(err, apppublic.ErrArchiveDisabled):
		WriteHTTPError(w, http.StatusServiceUnavailable, "archive_disabled")
	default:
		log.Error().Err(err).Msg("public_query_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
