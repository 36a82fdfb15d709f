package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/tenders-api/pkg/model"
	"github.com/Sternrassler/tenders-api/pkg/query"
	"github.com/rs/zerolog"
)

// TenderReader answers tender queries. Implemented by *query.Service.
type TenderReader interface {
	ListTenders(ctx context.Context, spec query.Spec) (model.Page[model.Tender], error)
	GetTenderByID(ctx context.Context, id int) (model.Tender, bool, error)
}

// ReadinessChecker reports whether a snapshot has been published.
// Implemented by *refresher.Refresher.
type ReadinessChecker interface {
	Ready() bool
}

// Handlers serves the tender endpoints.
type Handlers struct {
	reader  TenderReader
	ready   ReadinessChecker
	timeout time.Duration
}

// NewHandlers creates handlers bound to reader. A nil ready checker reports always ready.
func NewHandlers(reader TenderReader, ready ReadinessChecker, timeout time.Duration) *Handlers {
	return &Handlers{reader: reader, ready: ready, timeout: timeout}
}

// ListTenders handles GET /api/tenders.
func (h *Handlers) ListTenders(w http.ResponseWriter, r *http.Request) {
	spec, err := parseListRequest(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := h.reader.ListTenders(ctx, spec)
	if err != nil {
		h.fail(w, r, fmt.Errorf("list tenders: %w", err))
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

// GetTender handles GET /api/tenders/{id}.
func (h *Handlers) GetTender(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	tender, found, err := h.reader.GetTenderByID(ctx, id)
	if err != nil {
		h.fail(w, r, fmt.Errorf("get tender %d: %w", id, err))
		return
	}
	if !found {
		h.fail(w, r, NotFoundProblem(fmt.Sprintf("Tender with id %d was not found.", id)))
		return
	}
	writeJSON(w, r, http.StatusOK, tender)
}

// Health handles GET /health. It only reports that the process serves requests.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

// Ready handles GET /ready.
func (h *Handlers) Ready(w http.ResponseWriter, _ *http.Request) {
	if h.ready != nil && !h.ready.Ready() {
		writeText(w, http.StatusServiceUnavailable, "NOT READY")
		return
	}
	writeText(w, http.StatusOK, "READY")
}

// fail writes err as a problem. Errors that are not problems become a 500.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var p *Problem
	if errors.As(err, &p) {
		writeProblem(w, r, p)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeProblem(w, r, UnexpectedProblem())
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
