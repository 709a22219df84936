package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"leadscout/internal/domain"
)

// LeadReader is the read side the API needs; app.LeadQueryService fits.
type LeadReader interface {
	GetLead(ctx context.Context, store domain.Store, appID string) (domain.Lead, error)
	ListLeads(ctx context.Context, q domain.LeadsQuery) (domain.LeadsPage, error)
}

type Handlers struct{ Q LeadReader }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/leads", h.listLeads)
	s.mux.Get("/v1/leads/{store}/{bundleID}", h.getLead)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func parseStore(s string) (domain.Store, bool) {
	st := domain.Store(strings.ToLower(s))
	return st, st.Valid()
}

func (h *Handlers) getLead(w http.ResponseWriter, r *http.Request) {
	store, ok := parseStore(chi.URLParam(r, "store"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid store", "store must be ios or android")
		return
	}
	id := chi.URLParam(r, "bundleID")

	lead, err := h.Q.GetLead(r.Context(), store, id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "lead not found")
		return
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("store", string(store)).Str("bundle_id", id).Msg("get lead failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, r, lead)
}

func (h *Handlers) listLeads(w http.ResponseWriter, r *http.Request) {
	q := domain.LeadsQuery{Limit: 50}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}
	if ss := r.URL.Query().Get("store"); ss != "" {
		st, ok := parseStore(ss)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid store", "store must be ios or android")
			return
		}
		q.Store = &st
	}

	out, err := h.Q.ListLeads(r.Context(), q)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list leads failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, r, out)
}
