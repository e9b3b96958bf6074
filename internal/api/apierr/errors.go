package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/homeguess/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodePlayerNotInSession = "PLAYER_NOT_IN_SESSION"
	CodeSessionFull        = "SESSION_FULL"
	CodeSessionFinished    = "SESSION_FINISHED"
	CodeNotAllGuessed      = "NOT_ALL_GUESSED"
	CodeNoActiveRound      = "NO_ACTIVE_ROUND"
	CodeRoundScored        = "ROUND_SCORED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeSessionCorrupt     = "SESSION_CORRUPT"
	CodeCatalogEmpty       = "CATALOG_EMPTY"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrPlayerNotInSession):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotInSession, "Player is not in this session"}}
	case errors.Is(err, model.ErrSessionFull):
		return &httpError{http.StatusBadRequest, APIError{CodeSessionFull, "Session is full"}}
	case errors.Is(err, model.ErrNotAllGuessed):
		return &httpError{http.StatusBadRequest, APIError{CodeNotAllGuessed, "Not all players have guessed"}}
	case errors.Is(err, model.ErrSessionFinished):
		return &httpError{http.StatusConflict, APIError{CodeSessionFinished, "Session is finished"}}
	case errors.Is(err, model.ErrNoActiveRound):
		return &httpError{http.StatusConflict, APIError{CodeNoActiveRound, "No round in progress"}}
	case errors.Is(err, model.ErrRoundScored):
		return &httpError{http.StatusConflict, APIError{CodeRoundScored, "Round has already been scored"}}

	// Infrastructure
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Session store unavailable"}}
	case errors.Is(err, model.ErrSessionCorrupt):
		return &httpError{http.StatusInternalServerError, APIError{CodeSessionCorrupt, "Stored session is malformed"}}
	case errors.Is(err, model.ErrCatalogEmpty):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCatalogEmpty, "No properties available"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewMethodNotAllowedError creates an error for a known path hit with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
