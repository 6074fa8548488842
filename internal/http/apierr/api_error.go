package apierr

import (
	"errors"
	"net/http"

	"github.com/tuanvumaihuynh/product-management/pkg/validator"
	"github.com/tuanvumaihuynh/product-management/pkg/zerror"
)

const internalServerErrorMsg = "Internal server error"

// ErrorResponse is the failure form of the response envelope.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details []validator.FieldError `json:"details,omitempty"`

	// StatusCode is the HTTP status written with the response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = ErrorResponse{
	Success:    false,
	Error:      internalServerErrorMsg,
	Code:       "INTERNAL",
	StatusCode: http.StatusInternalServerError,
}

func errorToErrorResponse(err error) ErrorResponse {
	var zErr zerror.ZError
	if !errors.As(err, &zErr) {
		return InternalServerErr
	}

	statusCode := ZErrorStatusToHTTPStatus(zErr.Status())
	if statusCode >= http.StatusInternalServerError {
		res := InternalServerErr
		res.StatusCode = statusCode
		return res
	}

	return ErrorResponse{
		Success:    false,
		Error:      zErr.Msg(),
		Code:       zErr.Code(),
		Details:    validator.FieldErrors(err),
		StatusCode: statusCode,
	}
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case zerror.StatusBadRequest, zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusTimeout:
		return http.StatusGatewayTimeout
	case zerror.StatusNotImplemented:
		return http.StatusNotImplemented
	case zerror.StatusBadGateway:
		return http.StatusBadGateway
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
