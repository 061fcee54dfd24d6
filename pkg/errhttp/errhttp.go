// Package errhttp maps domain sentinel errors to HTTP status codes and stable
// business codes. Add a row to mappings for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/storage"
	admindomain "github.com/spicyjump/storefront/services/admin/domain"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	identitydomain "github.com/spicyjump/storefront/services/identity/domain"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	paymentdomain "github.com/spicyjump/storefront/services/payment/domain"
	reviewdomain "github.com/spicyjump/storefront/services/review/domain"
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "STORAGE_UNAVAILABLE"
)

type mapping struct {
	err      error
	status   int
	code     string
	detailed bool // respond with the full wrapped message, not the sentinel text
}

// Order matters: the first match wins, so errors wrapping several sentinels
// resolve to the earliest row.
var mappings = []mapping{
	{auth.ErrUnauthenticated, http.StatusUnauthorized, auth.CodeUnauthenticated, false},
	{auth.ErrForbidden, http.StatusForbidden, auth.CodeForbidden, false},

	{identitydomain.ErrEmailTaken, http.StatusConflict, "AUTH001", false},
	{identitydomain.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH002", false},
	{identitydomain.ErrAccountSuspended, http.StatusForbidden, "AUTH003", false},
	{identitydomain.ErrAccountInactive, http.StatusForbidden, "AUTH004", false},
	{identitydomain.ErrUserNotFound, http.StatusNotFound, "AUTH005", false},
	{identitydomain.ErrInvalidRefreshToken, http.StatusUnauthorized, "AUTH006", false},
	{identitydomain.ErrUserNotActive, http.StatusForbidden, "AUTH007", false},
	{identitydomain.ErrInvalidUser, http.StatusBadRequest, CodeValidation, true},

	{catalogdomain.ErrCategoryNotFound, http.StatusNotFound, "CATEGORY001", false},
	{catalogdomain.ErrProductCategoryNotFound, http.StatusNotFound, "PRODUCT002", false},
	{catalogdomain.ErrProductNotFound, http.StatusNotFound, "PRODUCT003", false},
	{catalogdomain.ErrNotProductOwner, http.StatusForbidden, "PRODUCT004", false},
	{catalogdomain.ErrDeleteForbidden, http.StatusForbidden, "PRODUCT005", false},
	{catalogdomain.ErrStatusChangeForbidden, http.StatusForbidden, "PRODUCT006", false},
	{catalogdomain.ErrInsufficientStock, http.StatusConflict, "PRODUCT007", true},
	{catalogdomain.ErrInvalidStatusTransition, http.StatusConflict, "PRODUCT008", true},
	{catalogdomain.ErrInvalidProduct, http.StatusBadRequest, CodeValidation, true},

	{orderingdomain.ErrBuyerNotFound, http.StatusNotFound, "ORDER001", false},
	{orderingdomain.ErrSellerNotFound, http.StatusNotFound, "ORDER002", false},
	{orderingdomain.ErrProductNotFound, http.StatusNotFound, "ORDER003", true},
	{orderingdomain.ErrInsufficientStock, http.StatusConflict, "ORDER004", true},
	{orderingdomain.ErrOrderNotFound, http.StatusNotFound, "ORDER005", false},
	{orderingdomain.ErrOrderAccessDenied, http.StatusForbidden, "ORDER006", false},
	{orderingdomain.ErrNotOrderSeller, http.StatusForbidden, "ORDER007", false},
	{orderingdomain.ErrNotOrderBuyer, http.StatusForbidden, "ORDER008", false},
	{orderingdomain.ErrNotCancellable, http.StatusConflict, "ORDER009", false},
	{orderingdomain.ErrInvalidStatusTransition, http.StatusConflict, "ORDER010", true},
	{orderingdomain.ErrInvalidOrder, http.StatusBadRequest, CodeValidation, true},

	{paymentdomain.ErrOrderNotFound, http.StatusNotFound, "PAYMENT001", false},
	{paymentdomain.ErrAmountMismatch, http.StatusBadRequest, "PAYMENT002", false},
	{paymentdomain.ErrPaymentInProgress, http.StatusConflict, "PAYMENT003", false},
	{paymentdomain.ErrPaymentNotFound, http.StatusNotFound, "PAYMENT004", false},
	{paymentdomain.ErrAlreadyProcessed, http.StatusConflict, "PAYMENT005", false},
	{paymentdomain.ErrGatewayRejected, http.StatusBadGateway, "PAYMENT006", true},
	{paymentdomain.ErrNotRefundable, http.StatusConflict, "PAYMENT007", false},
	{paymentdomain.ErrUnsupportedProvider, http.StatusBadRequest, "PAYMENT008", true},
	{paymentdomain.ErrRefundFailed, http.StatusBadGateway, "PAYMENT009", true},
	{paymentdomain.ErrPaymentAccessDenied, http.StatusForbidden, "PAYMENT010", false},
	{paymentdomain.ErrInvalidPayment, http.StatusBadRequest, CodeValidation, true},

	{reviewdomain.ErrUserNotFound, http.StatusNotFound, "REVIEW001", false},
	{reviewdomain.ErrProductNotFound, http.StatusNotFound, "REVIEW002", false},
	{reviewdomain.ErrAlreadyReviewed, http.StatusConflict, "REVIEW003", false},
	{reviewdomain.ErrReviewNotFound, http.StatusNotFound, "REVIEW004", false},
	{reviewdomain.ErrNotReviewAuthor, http.StatusForbidden, "REVIEW005", false},
	{reviewdomain.ErrDeleteForbidden, http.StatusForbidden, "REVIEW006", false},
	{reviewdomain.ErrInvalidReview, http.StatusBadRequest, CodeValidation, true},

	{admindomain.ErrSelfStatusChange, http.StatusConflict, "ADMIN001", false},
	{admindomain.ErrInvalidDateRange, http.StatusBadRequest, "ADMIN002", true},

	{storage.ErrUnavailable, http.StatusServiceUnavailable, CodeUnavailable, false},
	{storage.ErrUnsupportedContentType, http.StatusBadRequest, CodeValidation, true},
}

var production atomic.Bool

// SetProduction switches 5xx messages to the generic status text.
func SetProduction(on bool) {
	production.Store(on)
}

// Classify returns the status, code and client message for err.
// Unrecognised errors are 500 INTERNAL_ERROR.
func Classify(err error) (status int, code, message string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			message = m.err.Error()
			if m.detailed {
				message = err.Error()
			}
			return m.status, m.code, httpx.SafeError(errors.New(message), m.status, production.Load())
		}
	}
	return http.StatusInternalServerError, CodeInternal,
		httpx.SafeError(err, http.StatusInternalServerError, production.Load())
}

// WriteError maps err and writes {"error": message, "code": code}.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
func WriteError(w http.ResponseWriter, err error) {
	status, code, message := Classify(err)
	httpx.JSONErrorCode(w, status, code, message)
}
