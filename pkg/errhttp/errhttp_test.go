package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/storage"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	identitydomain "github.com/spicyjump/storefront/services/identity/domain"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	paymentdomain "github.com/spicyjump/storefront/services/payment/domain"
	reviewdomain "github.com/spicyjump/storefront/services/review/domain"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	return body
}

func TestWriteError_StatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized, "SECURITY002"},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, "SECURITY003"},
		{"email taken", identitydomain.ErrEmailTaken, http.StatusConflict, "AUTH001"},
		{"bad credentials", identitydomain.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH002"},
		{"wrapped refresh", fmt.Errorf("refresh: %w", identitydomain.ErrInvalidRefreshToken), http.StatusUnauthorized, "AUTH006"},
		{"category", catalogdomain.ErrCategoryNotFound, http.StatusNotFound, "CATEGORY001"},
		{"product stock", catalogdomain.ErrInsufficientStock, http.StatusConflict, "PRODUCT007"},
		{"order access", orderingdomain.ErrOrderAccessDenied, http.StatusForbidden, "ORDER006"},
		{"order transition", orderingdomain.ErrInvalidStatusTransition, http.StatusConflict, "ORDER010"},
		{"payment amount", paymentdomain.ErrAmountMismatch, http.StatusBadRequest, "PAYMENT002"},
		{"gateway", fmt.Errorf("%w: card declined", paymentdomain.ErrGatewayRejected), http.StatusBadGateway, "PAYMENT006"},
		{"review dup", reviewdomain.ErrAlreadyReviewed, http.StatusConflict, "REVIEW003"},
		{"storage", storage.ErrUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		{"validation", fmt.Errorf("%w: price must be positive", catalogdomain.ErrInvalidProduct), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if body := decode(t, w); body.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, body.Code)
			}
		})
	}
}

func TestWriteError_FirstMatchWins(t *testing.T) {
	// An error wrapping two sentinels resolves to the earlier row.
	err := fmt.Errorf("%w: %w", orderingdomain.ErrInsufficientStock, catalogdomain.ErrInsufficientStock)
	w := httptest.NewRecorder()
	WriteError(w, err)
	if body := decode(t, w); body.Code != "PRODUCT007" {
		t.Fatalf("expected earliest mapping PRODUCT007, got %s", body.Code)
	}
}

func TestWriteError_Messages(t *testing.T) {
	t.Run("sentinel text hides wrapping context", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("get profile: %w", identitydomain.ErrUserNotFound))
		if body := decode(t, w); body.Error != "user not found" {
			t.Fatalf("unexpected message %q", body.Error)
		}
	})

	t.Run("validation keeps detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("%w: rating must be 1-5", reviewdomain.ErrInvalidReview))
		if body := decode(t, w); body.Error != "invalid review: rating must be 1-5" {
			t.Fatalf("unexpected message %q", body.Error)
		}
	})

	t.Run("production hides internal errors", func(t *testing.T) {
		SetProduction(true)
		defer SetProduction(false)

		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: relation \"orders\" does not exist"))
		if body := decode(t, w); body.Error != "Internal Server Error" {
			t.Fatalf("expected sanitised message, got %q", body.Error)
		}

		w = httptest.NewRecorder()
		WriteError(w, identitydomain.ErrEmailTaken)
		if body := decode(t, w); body.Error != "email is already registered" {
			t.Fatalf("4xx messages must stay readable, got %q", body.Error)
		}
	})
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, orderingdomain.ErrOrderNotFound)

	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected Content-Type %q", ct)
	}
}
