package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "reservation not found",
			},
			expected: "NOT_FOUND: reservation not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeStorage,
				Message: "insert failed",
				Err:     errors.New("database connection failed"),
			},
			expected: "STORAGE_ERROR: insert failed (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"invalid interval", InvalidInterval("ends_at must be after starts_at"), CodeInvalidInterval, http.StatusBadRequest},
		{"resource unavailable", ResourceUnavailable("res-1"), CodeResourceUnavailable, http.StatusNotFound},
		{"conflict", Conflict("overlap"), CodeConflict, http.StatusConflict},
		{"invalid transition", InvalidTransition("cancelled", "cancelled"), CodeInvalidTransition, http.StatusConflict},
		{"busy timeout", BusyTimeout("res-1"), CodeBusyTimeout, http.StatusServiceUnavailable},
		{"storage", Storage("write failed", errors.New("boom")), CodeStorage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := Conflict("overlap detected")

	if !IsCode(err, CodeConflict) {
		t.Error("expected IsCode to match CONFLICT")
	}
	if IsCode(err, CodeBusyTimeout) {
		t.Error("expected IsCode not to match BUSY_TIMEOUT")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Error("expected IsCode to reject non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("plain failure")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}
	if appErr.Unwrap() != plain {
		t.Error("expected original error to be preserved")
	}
}
