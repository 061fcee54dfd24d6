package validator_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
)

type lineReq struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"min=1,max=99"`
	Price     decimal.Decimal `json:"price" validate:"money"`
	Currency  string          `json:"currency" validate:"omitempty,iso4217"`
	Images    []string        `json:"images" validate:"max=2,dive,url"`
	Status    string          `json:"status" validate:"omitempty,oneof=ACTIVE SUSPENDED"`
}

func validLine() lineReq {
	return lineReq{
		ProductID: "550e8400-e29b-41d4-a716-446655440000",
		Quantity:  2,
		Price:     decimal.RequireFromString("4.50"),
		Currency:  "KRW",
	}
}

func TestValidate_Valid(t *testing.T) {
	l := validLine()
	assert.NoError(t, pkgvalidator.Validate(&l))
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	l := validLine()
	l.ProductID = ""
	l.Quantity = 0

	m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&l))
	assert.Equal(t, "This field is required", m["product_id"])
	assert.Equal(t, "Must be at least 1", m["quantity"])
}

func TestFormatValidationErrors_Messages(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*lineReq)
		field string
		want  string
	}{
		{"uuid", func(l *lineReq) { l.ProductID = "nope" }, "product_id", "Must be a valid UUID"},
		{"number max", func(l *lineReq) { l.Quantity = 100 }, "quantity", "Must be at most 99"},
		{"collection max", func(l *lineReq) { l.Images = []string{"https://a", "https://b", "https://c"} }, "images", "Must contain at most 2 entries"},
		{"oneof", func(l *lineReq) { l.Status = "GONE" }, "status", "Must be one of: ACTIVE, SUSPENDED"},
		{"currency", func(l *lineReq) { l.Currency = "XYZ" }, "currency", "Must be an ISO 4217 currency code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLine()
			tt.edit(&l)
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&l))
			assert.Equal(t, tt.want, m[tt.field])
		})
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		price string
		ok    bool
	}{
		{"4.50", true},
		{"1200", true},
		{"0.01", true},
		{"0", false},
		{"-3.00", false},
		{"1.999", false},
	}
	for _, tt := range tests {
		l := validLine()
		l.Price = decimal.RequireFromString(tt.price)
		err := pkgvalidator.Validate(&l)
		assert.Equal(t, tt.ok, err == nil, "price %s: %v", tt.price, err)
	}
}

func TestFormatValidationErrorsIn_Korean(t *testing.T) {
	l := validLine()
	l.ProductID = ""
	m := pkgvalidator.FormatValidationErrorsIn(i18n.Korean, pkgvalidator.Validate(&l))
	assert.Equal(t, "필수 항목입니다", m["product_id"])
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	assert.Empty(t, pkgvalidator.FormatValidationErrors(http.ErrNoCookie))
}

func post(body string, lang i18n.Lang) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(i18n.WithLang(r.Context(), lang))
}

func TestValidateRequest_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	req, ok := pkgvalidator.ValidateRequest[lineReq](w, post(`{"product_id":"550e8400-e29b-41d4-a716-446655440000","quantity":3,"price":"9.90"}`, i18n.English))

	require.True(t, ok, w.Body.String())
	assert.Equal(t, 3, req.Quantity)
	assert.True(t, req.Price.Equal(decimal.RequireFromString("9.90")))
}

func TestValidateRequest_InvalidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	_, ok := pkgvalidator.ValidateRequest[lineReq](w, post("{bad json", i18n.English))

	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid JSON", body.Error)
	assert.Equal(t, pkgvalidator.CodeValidation, body.Code)
}

func TestValidateRequest_TooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	r := post(`{"product_id":"550e8400-e29b-41d4-a716-446655440000","quantity":3,"price":"9.90"}`, i18n.English)
	r.Body = http.MaxBytesReader(w, r.Body, 8)

	_, ok := pkgvalidator.ValidateRequest[lineReq](w, r)
	require.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestValidateRequest_FieldErrorsInRequestLanguage(t *testing.T) {
	w := httptest.NewRecorder()
	_, ok := pkgvalidator.ValidateRequest[lineReq](w, post(`{"quantity":1,"price":"1.00"}`, i18n.Korean))

	require.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body pkgvalidator.ValidationErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, pkgvalidator.CodeValidation, body.Code)
	assert.Equal(t, "필수 항목입니다", body.Fields["product_id"])
}
