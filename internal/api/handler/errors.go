package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/homeguess/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeMethodNotAllowed   = apierr.CodeMethodNotAllowed
	CodeSessionNotFound    = apierr.CodeSessionNotFound
	CodePlayerNotInSession = apierr.CodePlayerNotInSession
	CodeSessionFull        = apierr.CodeSessionFull
	CodeSessionFinished    = apierr.CodeSessionFinished
	CodeNotAllGuessed      = apierr.CodeNotAllGuessed
	CodeNoActiveRound      = apierr.CodeNoActiveRound
	CodeRoundScored        = apierr.CodeRoundScored
	CodeStoreUnavailable   = apierr.CodeStoreUnavailable
	CodeSessionCorrupt     = apierr.CodeSessionCorrupt
	CodeCatalogEmpty       = apierr.CodeCatalogEmpty
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// MethodNotAllowed answers requests whose method the path does not serve
func MethodNotAllowed(allowed ...string) http.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
