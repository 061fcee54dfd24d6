package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
)

// CodeValidation matches the code errhttp uses for domain validation errors.
const CodeValidation = "VALIDATION_ERROR"

// maxMoneyPlaces is the finest unit any supported currency is priced in.
const maxMoneyPlaces = 2

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// money: a positive decimal.Decimal with at most two fractional digits.
	if err := validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive() && d.Exponent() >= -maxMoneyPlaces
	}); err != nil {
		panic(err)
	}
}

// Validate runs the struct's validate tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors maps each failing field to an English message.
func FormatValidationErrors(err error) map[string]string {
	return FormatValidationErrorsIn(i18n.English, err)
}

// FormatValidationErrorsIn maps each failing field to a message in lang.
// Non-validation errors give an empty map.
func FormatValidationErrorsIn(lang i18n.Lang, err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(lang, e)
	}
	return errs
}

func formatFieldError(lang i18n.Lang, e validator.FieldError) string {
	p := e.Param()
	switch e.Tag() {
	case "required":
		return i18n.Pick(lang, "필수 항목입니다", "This field is required")
	case "uuid", "uuid4":
		return i18n.Pick(lang, "올바른 UUID가 아닙니다", "Must be a valid UUID")
	case "min":
		if isCollection(e) {
			return i18n.Pick(lang, fmt.Sprintf("최소 %s개 이상이어야 합니다", p), fmt.Sprintf("Must contain at least %s entries", p))
		}
		if isNumber(e) {
			return i18n.Pick(lang, fmt.Sprintf("%s 이상이어야 합니다", p), fmt.Sprintf("Must be at least %s", p))
		}
		return i18n.Pick(lang, fmt.Sprintf("최소 %s자 이상이어야 합니다", p), fmt.Sprintf("Minimum length is %s", p))
	case "max":
		if isCollection(e) {
			return i18n.Pick(lang, fmt.Sprintf("최대 %s개까지 가능합니다", p), fmt.Sprintf("Must contain at most %s entries", p))
		}
		if isNumber(e) {
			return i18n.Pick(lang, fmt.Sprintf("%s 이하여야 합니다", p), fmt.Sprintf("Must be at most %s", p))
		}
		return i18n.Pick(lang, fmt.Sprintf("최대 %s자까지 가능합니다", p), fmt.Sprintf("Maximum length is %s", p))
	case "len":
		return i18n.Pick(lang, fmt.Sprintf("길이는 %s자여야 합니다", p), fmt.Sprintf("Must be exactly %s characters", p))
	case "email":
		return i18n.Pick(lang, "올바른 이메일 주소가 아닙니다", "Must be a valid email address")
	case "url":
		return i18n.Pick(lang, "올바른 URL이 아닙니다", "Must be a valid URL")
	case "oneof":
		opts := strings.ReplaceAll(p, " ", ", ")
		return i18n.Pick(lang, fmt.Sprintf("다음 중 하나여야 합니다: %s", opts), fmt.Sprintf("Must be one of: %s", opts))
	case "iso4217":
		return i18n.Pick(lang, "올바른 통화 코드가 아닙니다", "Must be an ISO 4217 currency code")
	case "money":
		return i18n.Pick(lang, "소수점 둘째 자리까지의 양수 금액이어야 합니다", "Must be a positive amount with at most 2 decimal places")
	default:
		return i18n.Pick(lang, fmt.Sprintf("'%s' 검증에 실패했습니다", e.Tag()), fmt.Sprintf("Validation failed on '%s'", e.Tag()))
	}
}

func isCollection(e validator.FieldError) bool {
	switch e.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func isNumber(e validator.FieldError) bool {
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// ValidationErrorBody is the 422 response for a request that failed its
// validate tags.
type ValidationErrorBody struct {
	Error  string            `json:"error" example:"Validation failed"`
	Code   string            `json:"code" example:"VALIDATION_ERROR"`
	Fields map[string]string `json:"fields"`
} // @name ValidationErrorBody

// ValidateRequest decodes the JSON body into T and validates it. On failure
// it writes 400 for malformed JSON, 413 for an oversized body or 422 with
// per-field messages in the request language, and returns false.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONErrorCode(w, http.StatusRequestEntityTooLarge, CodeValidation, "Request body too large")
			return nil, false
		}
		httpx.JSONErrorCode(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, ValidationErrorBody{
			Error:  "Validation failed",
			Code:   CodeValidation,
			Fields: FormatValidationErrorsIn(i18n.FromCtx(r.Context()), err),
		})
		return nil, false
	}
	return &req, true
}
