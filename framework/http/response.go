package http

import (
	"encoding/json"
	"net/http"

	"github.com/km-arc/go-resolver/framework/http/validation"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response writes the API's JSON envelopes:
//
//	{"data": ...}                    success
//	{"message": "..."}               error
//	{"message": "...", "data": ...}  failure that still has a body
//	{"errors": {"field": [...]}}     validation
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// JSON encodes data before touching the header, so a value that cannot be
// encoded becomes a 500 rather than a truncated 200.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(envelope{"message": "Response could not be encoded."})
	}
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_, _ = res.w.Write(append(body, '\n'))
}

// ── Success ───────────────────────────────────────────────────────────────────

// Success sends 200 {"data": v}.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// ── Failures ──────────────────────────────────────────────────────────────────

// Error sends {"message": message}.
//
//	res.Error(http.StatusServiceUnavailable, "Container is shutting down.")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// Fail sends an error that carries a body, such as the state of a service
// whose resolution failed.
func (res *Response) Fail(status int, message string, data any) {
	res.JSON(status, envelope{"message": message, "data": data})
}

func (res *Response) BadRequest(message ...string) {
	res.Error(http.StatusBadRequest, first(message, "Bad request."))
}

func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// Timeout sends 504, for work that did not finish in the time allowed.
func (res *Response) Timeout(message ...string) {
	res.Error(http.StatusGatewayTimeout, first(message, "Timed out."))
}

// ValidationError sends 422 with the error bag.
//
//	res.ValidationError(v.Errors())
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errors)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
