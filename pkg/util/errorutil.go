package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// StatusCoder is implemented by errors that know their own HTTP status.
type StatusCoder interface {
	error
	StatusCode() int
	ErrorCode() string
	Description() string
}

func NewBadRequest(err error) error {
	return &DomainError{
		Code:       "BAD_REQUEST",
		Message:    "bad request",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewUnprocessable(message string, err error) error {
	if message == "" {
		message = "unprocessable"
	}
	return &DomainError{
		Code:       "UNPROCESSABLE",
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

func NewNotFound(err error) error {
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    "resource not found",
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var coded StatusCoder
	if errors.As(err, &coded) {
		return &DomainError{
			Code:       coded.ErrorCode(),
			Message:    coded.Description(),
			HTTPStatus: coded.StatusCode(),
			Err:        err,
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Classify keeps already-typed errors and wraps anything else with the
// operation's fallback status.
func Classify(err error, fallback int) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var coded StatusCoder
	if errors.As(err, &coded) {
		return err
	}
	switch fallback {
	case http.StatusBadRequest:
		return NewBadRequest(err)
	case http.StatusNotFound:
		return NewNotFound(err)
	case http.StatusUnprocessableEntity:
		return NewUnprocessable("", err)
	default:
		return NewInternalError(err)
	}
}

func fromFiberError(err *fiber.Error) *DomainError {
	switch err.Code {
	case http.StatusNotFound:
		return &DomainError{Code: "NOT_FOUND", Message: "resource not found", HTTPStatus: http.StatusNotFound, Err: err}
	case http.StatusMethodNotAllowed:
		return &DomainError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed", HTTPStatus: http.StatusMethodNotAllowed, Err: err}
	case http.StatusUnprocessableEntity:
		return &DomainError{Code: "UNPROCESSABLE", Message: "unprocessable", HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case http.StatusRequestTimeout:
		return &DomainError{Code: "TIMEOUT", Message: "request timeout", HTTPStatus: http.StatusRequestTimeout, Err: err}
	}
	if err.Code >= http.StatusInternalServerError {
		return &DomainError{Code: "INTERNAL_ERROR", Message: "internal server error", HTTPStatus: err.Code, Err: err}
	}
	return &DomainError{Code: "BAD_REQUEST", Message: err.Message, HTTPStatus: err.Code, Err: err}
}
