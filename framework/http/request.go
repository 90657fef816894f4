package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBody = 1 << 20 // 1 MB

// Request wraps *http.Request with input helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Binding ──────────────────────────────────────────────────────────────────

// ErrEmptyBody is returned by Bind when there is nothing to decode.
var ErrEmptyBody = errors.New("empty request body")

// Bind decodes a JSON request body into v.
func (req *Request) Bind(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// All returns all input as a flat map: the query string, then a form body,
// then the top-level string fields of a JSON body, later sources winning.
func (req *Request) All() (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range req.raw.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}

	if req.IsJSON() {
		var body map[string]any
		if err := req.Bind(&body); err != nil && !errors.Is(err, ErrEmptyBody) {
			return nil, err
		}
		for k, v := range body {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out, nil
	}

	if err := req.raw.ParseForm(); err != nil {
		return nil, err
	}
	for k, v := range req.raw.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

// Duration parses input[key] as a time.Duration, returning fallback when
// the key is absent. Validate first: malformed values also yield fallback.
func Duration(input map[string]string, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input[key])
	if err != nil {
		return fallback
	}
	return d
}

// ID returns the request id set by the router, or "".
func (req *Request) ID() string {
	return middleware.GetReqID(req.raw.Context())
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON reports whether the body is JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.ContentType(), "application/json")
}
