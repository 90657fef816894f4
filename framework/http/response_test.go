package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/http/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	return m
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q want application/json", ct)
	}
	m := decodeJSON(t, rr)
	if m["key"] != "val" {
		t.Errorf("body key: got %v want val", m["key"])
	}
}

func TestResponse_Success(t *testing.T) {
	res, rr := newResponse(t)
	res.Success([]string{"db", "mailer"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	data, ok := decodeJSON(t, rr)["data"].([]any)
	if !ok || len(data) != 2 || data[0] != "db" {
		t.Errorf("data: got %v", data)
	}
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestResponse_Error(t *testing.T) {
	res, rr := newResponse(t)
	res.Error(http.StatusGatewayTimeout, "Resolution timed out.")

	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("status: got %d want 504", rr.Code)
	}
	if m := decodeJSON(t, rr); m["message"] != "Resolution timed out." {
		t.Errorf("message: got %v", m["message"])
	}
}

func TestResponse_NotFound(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", nil, "Not found."},
		{"custom", []string{"Service not defined."}, "Service not defined."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			res.NotFound(tt.args...)
			if rr.Code != http.StatusNotFound {
				t.Errorf("status: got %d want 404", rr.Code)
			}
			if m := decodeJSON(t, rr); m["message"] != tt.want {
				t.Errorf("message: got %v want %q", m["message"], tt.want)
			}
		})
	}
}

func TestResponse_ServerError(t *testing.T) {
	res, rr := newResponse(t)
	res.ServerError()

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d want 500", rr.Code)
	}
	if m := decodeJSON(t, rr); m["message"] != "Server Error." {
		t.Errorf("message: got %v", m["message"])
	}
}

func TestResponse_UnencodableBecomes500(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"ch": make(chan int)})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d want 500", rr.Code)
	}
	if m := decodeJSON(t, rr); m["message"] != "Response could not be encoded." {
		t.Errorf("message: got %v", m["message"])
	}
}

func TestResponse_Fail(t *testing.T) {
	res, rr := newResponse(t)
	res.Fail(http.StatusInternalServerError, "boom", map[string]any{"state": "failed"})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d want 500", rr.Code)
	}
	m := decodeJSON(t, rr)
	if m["message"] != "boom" {
		t.Errorf("message: got %v", m["message"])
	}
	if data, ok := m["data"].(map[string]any); !ok || data["state"] != "failed" {
		t.Errorf("data: got %v", m["data"])
	}
}

func TestResponse_Defaults(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*gohttp.Response)
		status int
		want   string
	}{
		{"bad request", func(r *gohttp.Response) { r.BadRequest() }, http.StatusBadRequest, "Bad request."},
		{"timeout", func(r *gohttp.Response) { r.Timeout() }, http.StatusGatewayTimeout, "Timed out."},
		{"timeout custom", func(r *gohttp.Response) { r.Timeout("slow") }, http.StatusGatewayTimeout, "slow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			if rr.Code != tt.status {
				t.Errorf("status: got %d want %d", rr.Code, tt.status)
			}
			if m := decodeJSON(t, rr); m["message"] != tt.want {
				t.Errorf("message: got %v want %q", m["message"], tt.want)
			}
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{"state": "sleeping"}, validation.Rules{
		"state": "in:idle,pending,resolved,failed",
	})
	if v.Passes() {
		t.Fatal("expected validation to fail")
	}

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d want 422", rr.Code)
	}
	errs, ok := decodeJSON(t, rr)["errors"].(map[string]any)
	if !ok {
		t.Fatal("expected errors object in body")
	}
	if msgs, ok := errs["state"].([]any); !ok || len(msgs) == 0 {
		t.Errorf("expected state error, got %v", errs)
	}
}

func TestResponse_Raw(t *testing.T) {
	res, rr := newResponse(t)
	if res.Raw() != rr {
		t.Error("Raw() should return the wrapped ResponseWriter")
	}
}
