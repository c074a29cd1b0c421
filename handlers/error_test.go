package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"citrus-link/models"
	"citrus-link/repositories/base"

	"github.com/labstack/echo/v4"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body
}

func TestServiceError(t *testing.T) {
	t.Run("Not Found Is 404", func(t *testing.T) {
		c, rec := newTestContext(t)
		err := serviceError(c, base.NewEntityNotFoundError("t_biz_task", "id abc"))
		if err != nil {
			t.Fatalf("Handler returned error: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("Validation Is 400", func(t *testing.T) {
		c, rec := newTestContext(t)
		verr := base.NewValidationError("battery_level", "120", "must be within [0,100]")
		if err := serviceError(c, verr); err != nil {
			t.Fatalf("Handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
		body := decodeErrorBody(t, rec)
		if body.Detail == "" {
			t.Error("Expected constraint detail in response body")
		}
	})

	t.Run("Duplicate Is 400", func(t *testing.T) {
		c, rec := newTestContext(t)
		derr := base.NewDuplicateEntityError("t_sys_robot", "id", "UGV-01")
		if err := serviceError(c, derr); err != nil {
			t.Fatalf("Handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("Unexpected Is 500 Without Detail Leak", func(t *testing.T) {
		c, rec := newTestContext(t)
		if err := serviceError(c, errors.New("pq: connection reset")); err != nil {
			t.Fatalf("Handler returned error: %v", err)
		}
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", rec.Code)
		}
		body := decodeErrorBody(t, rec)
		if body.Detail == "pq: connection reset" {
			t.Error("Internal error detail must not leak to the client")
		}
	})
}

func TestBadRequest(t *testing.T) {
	c, rec := newTestContext(t)
	if err := badRequest(c, errors.New("ripeness out of range")); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body.Detail != "ripeness out of range" {
		t.Errorf("Expected failure detail, got %q", body.Detail)
	}
}
