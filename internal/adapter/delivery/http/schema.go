package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/short-url/internal/entity"
)

// shortenRequest represents the body of a request to shorten a URL.
type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
}

// detailsResponse represents the full record behind a short token.
type detailsResponse struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortToken  string    `json:"token"`
	VisitCount  int64     `json:"visitCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toDetailsResponse(url *entity.URL) detailsResponse {
	return detailsResponse{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		ShortToken:  url.ShortToken,
		VisitCount:  url.VisitCount,
		CreatedAt:   url.CreatedAt,
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response. Code mirrors the HTTP status.
type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

func newErrorResponse(status int, message string) errorResponse {
	return errorResponse{
		Code:    strconv.Itoa(status),
		Message: message,
	}
}

var (
	emptyRequestBodyResponse   = newErrorResponse(http.StatusBadRequest, "empty request body")
	invalidRequestBodyResponse = newErrorResponse(http.StatusBadRequest, "invalid request body")
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

func validationErrorResponse(err error) errorResponse {
	resp := newErrorResponse(http.StatusBadRequest, "validation error")
	resp.Errors = getValidationErrors(err)
	return resp
}
