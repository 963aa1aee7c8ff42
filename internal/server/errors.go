package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/masarmall/leasing/internal/export"
	itemdomain "github.com/masarmall/leasing/internal/item/domain"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	leaseinvoicedomain "github.com/masarmall/leasing/internal/leaseinvoice/domain"
	propertydomain "github.com/masarmall/leasing/internal/property/domain"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/internal/scheduler"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog gives request logs a low-cardinality error type and code.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, err.Error()
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, export.ErrUnsupportedFormat):
		return true
	case isItemValidationError(err),
		isPropertyValidationError(err),
		isLeaseValidationError(err),
		isInvoiceValidationError(err):
		return true
	default:
		return false
	}
}

func isItemValidationError(err error) bool {
	switch {
	case errors.Is(err, itemdomain.ErrInvalidID),
		errors.Is(err, itemdomain.ErrInvalidCode),
		errors.Is(err, itemdomain.ErrInvalidName),
		errors.Is(err, itemdomain.ErrInvalidServicePercentage):
		return true
	default:
		return false
	}
}

func isPropertyValidationError(err error) bool {
	switch {
	case errors.Is(err, propertydomain.ErrInvalidID),
		errors.Is(err, propertydomain.ErrInvalidName),
		errors.Is(err, propertydomain.ErrInvalidArea),
		errors.Is(err, propertydomain.ErrPropertyRequired),
		errors.Is(err, propertydomain.ErrFloorRequired),
		errors.Is(err, propertydomain.ErrFloorNotInProperty):
		return true
	default:
		return false
	}
}

func isLeaseValidationError(err error) bool {
	switch {
	case errors.Is(err, leasecontractdomain.ErrInvalidID),
		errors.Is(err, leasecontractdomain.ErrInvalidTenant),
		errors.Is(err, leasecontractdomain.ErrPropertyRequired),
		errors.Is(err, leasecontractdomain.ErrLeaseDatesRequired),
		errors.Is(err, leasecontractdomain.ErrInvalidLeaseDate),
		errors.Is(err, leasecontractdomain.ErrInvalidLeasePeriod),
		errors.Is(err, leasecontractdomain.ErrInvalidAllowance),
		errors.Is(err, leasecontractdomain.ErrPayTypeRequired),
		errors.Is(err, leasecontractdomain.ErrPayTypeExceedsPeriod),
		errors.Is(err, leasecontractdomain.ErrDetailsRequired),
		errors.Is(err, leasecontractdomain.ErrInvalidDetail),
		errors.Is(err, leasecontractdomain.ErrInvalidTaxTemplate),
		errors.Is(err, scheduledomain.ErrInvalidID),
		errors.Is(err, scheduledomain.ErrInvalidPlan):
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, leaseinvoicedomain.ErrInvalidID),
		errors.Is(err, leaseinvoicedomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, itemdomain.ErrNotFound),
		errors.Is(err, propertydomain.ErrPropertyNotFound),
		errors.Is(err, propertydomain.ErrFloorNotFound),
		errors.Is(err, propertydomain.ErrFloorUnitNotFound),
		errors.Is(err, leasecontractdomain.ErrNotFound),
		errors.Is(err, leasecontractdomain.ErrPropertyNotFound),
		errors.Is(err, leasecontractdomain.ErrTaxTemplateNotFound),
		errors.Is(err, leaseinvoicedomain.ErrNotFound),
		errors.Is(err, scheduler.ErrUnknownJob),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, itemdomain.ErrDuplicateCode),
		errors.Is(err, propertydomain.ErrDuplicateProperty),
		errors.Is(err, propertydomain.ErrUnitNotRented),
		errors.Is(err, propertydomain.ErrUnitAlreadyReturned),
		errors.Is(err, leasecontractdomain.ErrLeaseNotDraft),
		errors.Is(err, leasecontractdomain.ErrLeaseNotRunning),
		errors.Is(err, leasecontractdomain.ErrDuplicateTaxTemplate),
		errors.Is(err, scheduledomain.ErrScheduleExists),
		errors.Is(err, leaseinvoicedomain.ErrInvalidStatusTransition):
		return true
	default:
		return false
	}
}

// notFoundMessage keeps domain codes such as lease_not_found visible to clients.
func notFoundMessage(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return err.Error()
}

func conflictMessage(err error) string {
	if errors.Is(err, ErrConflict) {
		return "conflict"
	}
	return err.Error()
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	case strings.HasSuffix(code, "_required"):
		return strings.TrimSuffix(code, "_required")
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch {
	case code == "invalid_request":
		return "invalid request"
	case strings.HasSuffix(code, "_required"):
		return "required"
	default:
		return "invalid value"
	}
}
