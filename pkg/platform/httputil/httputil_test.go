package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "collegedesk/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("validation error maps to 400 with message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "Phone number is required"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "Phone number is required" {
			t.Fatalf("expected validation message, got %q", body["error"])
		}
	})

	t.Run("unclassified error maps to 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})

	t.Run("coded error hides wrapped cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		cause := errors.New("pq: password authentication failed")
		WriteError(w, dErrors.Wrap(cause, dErrors.CodeUnavailable, "store unreachable"))

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "store unreachable" {
			t.Fatalf("expected wrapped message only, got %q", body["error"])
		}
	})
}

func TestMessage(t *testing.T) {
	t.Run("coded error exposes message, not cause", func(t *testing.T) {
		err := dErrors.Wrap(errors.New("pq: password authentication failed"), dErrors.CodeUnavailable, "store unreachable")
		if got := Message(err); got != "store unreachable" {
			t.Fatalf("expected wrapped message only, got %q", got)
		}
	})

	t.Run("plain error exposes its string", func(t *testing.T) {
		if got := Message(errors.New("boom")); got != "boom" {
			t.Fatalf("expected error string, got %q", got)
		}
	})
}

type stubRequest struct {
	Name string `json:"name"`
}

func (r *stubRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"mit"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[stubRequest](w, r, nil, r.Context(), "req-1")
		if !ok {
			t.Fatalf("expected ok, response: %s", w.Body.String())
		}
		if req.Name != "mit" {
			t.Fatalf("expected decoded name, got %q", req.Name)
		}
	})

	t.Run("malformed body writes 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[stubRequest](w, r, nil, r.Context(), "req-2")
		if ok {
			t.Fatal("expected decode failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("validation failure writes error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":" "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[stubRequest](w, r, nil, r.Context(), "req-3")
		if ok {
			t.Fatal("expected validation failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}
