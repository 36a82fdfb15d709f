package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Problem titles.
const (
	TitleValidation = "Validation error."
	TitleNotFound   = "Not found."
	TitleUnexpected = "Unexpected server error."
)

// Problem is an HTTP problem-details response body.
type Problem struct {
	Status   int                 `json:"status"`
	Title    string              `json:"title"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// Error implements the error interface.
func (p *Problem) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%d %s %s", p.Status, p.Title, p.Detail)
	}
	return fmt.Sprintf("%d %s", p.Status, p.Title)
}

// ValidationProblem returns a 400 problem carrying per-parameter messages.
func ValidationProblem(errs map[string][]string) *Problem {
	return &Problem{
		Status: http.StatusBadRequest,
		Title:  TitleValidation,
		Detail: "One or more validation errors occurred.",
		Errors: errs,
	}
}

// NotFoundProblem returns a 404 problem.
func NotFoundProblem(detail string) *Problem {
	return &Problem{
		Status: http.StatusNotFound,
		Title:  TitleNotFound,
		Detail: detail,
	}
}

// UnexpectedProblem returns a 500 problem. The cause is logged, not exposed.
func UnexpectedProblem() *Problem {
	return &Problem{
		Status: http.StatusInternalServerError,
		Title:  TitleUnexpected,
		Detail: "An unexpected error occurred while processing the request.",
	}
}

// writeProblem sends p as application/problem+json.
func writeProblem(w http.ResponseWriter, r *http.Request, p *Problem) {
	if p.Instance == "" {
		p.Instance = r.URL.Path
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write problem response")
	}
}

// writeJSON sends v as application/json with status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write response")
	}
}
