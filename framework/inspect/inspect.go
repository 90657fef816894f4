// Package inspect serves a small JSON API over a running container: the
// defined services and their state, on-demand resolution and lint.
//
//	GET  /services                  ?state=idle|pending|resolved|failed
//	GET  /services/{id}
//	POST /services/{id}/resolve     timeout=2s (query, form or JSON body)
//	GET  /tags/{tag}
//	GET  /lint
package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/extensions"
	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/http/validation"
	"github.com/km-arc/go-resolver/framework/routing"
)

// DefaultTimeout bounds POST /services/{id}/resolve when no timeout is given.
const DefaultTimeout = 5 * time.Second

// Handlers serves the inspection API for one container.
type Handlers struct {
	c       *container.Container
	logger  *slog.Logger
	timeout time.Duration
}

// New creates the handlers. A zero timeout means DefaultTimeout.
func New(c *container.Container, logger *slog.Logger, timeout time.Duration) *Handlers {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handlers{c: c, logger: logger, timeout: timeout}
}

// Routes registers every endpoint on r.
func (h *Handlers) Routes(r *routing.Router) {
	r.Get("/services", h.List)
	r.Get("/services/{id}", h.Show)
	r.Post("/services/{id}/resolve", h.Resolve)
	r.Get("/tags/{tag}", h.Tagged)
	r.Get("/lint", h.Lint)
}

// Router returns a new router serving the API under prefix.
func (h *Handlers) Router(prefix string) *routing.Router {
	r := routing.New(h.logger)
	if prefix == "" || prefix == "/" {
		h.Routes(r)
		return r
	}
	r.Prefix(prefix, h.Routes)
	return r
}

// ── Views ─────────────────────────────────────────────────────────────────────

// ServiceView is the JSON shape of one service.
type ServiceView struct {
	ID         string                `json:"id"`
	State      container.State       `json:"state"`
	Definition *container.Definition `json:"definition,omitempty"`
	Type       string                `json:"type,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func (h *Handlers) view(id string, detailed bool) ServiceView {
	v := ServiceView{ID: id, State: h.c.State(id)}
	if !detailed {
		return v
	}
	v.Definition, _ = h.c.Definition(id)
	if f, ok := h.c.Peek(id); ok {
		if instance, err, done := f.Poll(); done {
			if err != nil {
				v.Error = err.Error()
			} else {
				v.Type = fmt.Sprintf("%T", instance)
			}
		}
	}
	return v
}

// ── Endpoints ─────────────────────────────────────────────────────────────────

// List returns every service with its state, optionally filtered by ?state=.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	state := req.Query("state")

	v := validation.Make(map[string]string{"state": state}, validation.Rules{
		"state": "sometimes|in:idle,pending,resolved,failed",
	})
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	views := make([]ServiceView, 0, len(h.c.ServiceIDs()))
	for _, id := range h.c.ServiceIDs() {
		sv := h.view(id, false)
		if state == "" || string(sv.State) == state {
			views = append(views, sv)
		}
	}
	res.Success(views)
}

// Show returns one service with its definition, and its outcome once settled.
func (h *Handlers) Show(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	id := req.RouteParam("id")
	if !h.c.Has(id) {
		res.NotFound(fmt.Sprintf("Service %s is not defined.", id))
		return
	}
	res.Success(h.view(id, true))
}

// Resolve gets the service and waits for it, at most the requested timeout.
func (h *Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	id := req.RouteParam("id")
	if !h.c.Has(id) {
		res.NotFound(fmt.Sprintf("Service %s is not defined.", id))
		return
	}

	input, err := req.All()
	if err != nil {
		res.BadRequest("Malformed request body.")
		return
	}
	v := validation.Make(input, validation.Rules{
		"timeout": "sometimes|duration|max_duration:1m",
	})
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}
	timeout := gohttp.Duration(input, "timeout", h.timeout)

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	_, err = h.c.Get(ctx, id).Await(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		res.Timeout(fmt.Sprintf("Service %s did not resolve within %s.", id, timeout))
	case err != nil:
		h.logger.Warn("service resolution failed", "service", id, "request_id", req.ID(), "error", err)
		res.Fail(http.StatusInternalServerError, err.Error(), h.view(id, true))
	default:
		res.Success(h.view(id, true))
	}
}

// Tagged lists the ids of the services carrying a tag.
func (h *Handlers) Tagged(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	ids := extensions.TaggedIDs(h.c, req.RouteParam("tag"))
	if ids == nil {
		ids = []string{}
	}
	res.Success(ids)
}

// Lint runs the container lint.
func (h *Handlers) Lint(w http.ResponseWriter, r *http.Request) {
	errs := h.c.Lint(r.Context())
	if errs == nil {
		errs = []string{}
	}
	gohttp.NewResponse(w).Success(errs)
}
