package handlers

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
)

const MessageServerError = "Server error"

// Result is embedded in every response body so clients can read the outcome
// without inspecting the status code.
type Result struct {
	Success bool   `doc:"Whether the request succeeded" json:"success"`
	Message string `doc:"Human readable outcome"        json:"message"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	status int

	Success bool   `doc:"Always false"           json:"success"`
	Message string `doc:"What went wrong"        json:"message"`
}

func (e *ErrorBody) Error() string {
	return e.Message
}

func (e *ErrorBody) GetStatus() int {
	return e.status
}

// NewError builds the error envelope. It replaces huma.NewError so request
// validation failures share the same shape as handler errors.
//
// Validation failures are reported as 400, and server errors never expose
// their cause.
func NewError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	switch {
	case status >= http.StatusInternalServerError:
		msg = MessageServerError
	case len(errs) > 0:
		details := make([]string, 0, len(errs))
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}

		if len(details) > 0 {
			msg += ": " + strings.Join(details, "; ")
		}
	}

	return &ErrorBody{status: status, Success: false, Message: msg}
}

// NewAPI mounts a huma API on router with the shared error envelope.
func NewAPI(router chi.Router, title, version string) huma.API {
	huma.NewError = NewError

	return humachi.New(router, huma.DefaultConfig(title, version))
}
