package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrMessageNotFound is returned when a message is not found.
	ErrMessageNotFound = errors.New("message not found")
	// ErrConstraintViolation is returned when the store rejects a write on a uniqueness,
	// non-null, check or foreign key rule. The driver error stays wrapped alongside it.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrUnauthorized is returned when an operation needs an authenticated actor and there is none.
	ErrUnauthorized = errors.New("access unauthorized")
	// ErrForbidden is returned when the actor may not touch the target resource.
	ErrForbidden = errors.New("operation not permitted")
	// ErrEmptyPassword is returned when a password is missing.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrPasswordTooLong is returned when a password exceeds what bcrypt accepts.
	ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")
	// ErrInvalidImageURL is returned when an image URL is not a usable URL or path.
	ErrInvalidImageURL = errors.New("invalid image url")
	// ErrMessageTooLong is returned when a message body exceeds 140 characters.
	ErrMessageTooLong = errors.New("message text must not exceed 140 characters")
	// ErrMalformedHash is returned when a stored password is not a bcrypt hash.
	ErrMalformedHash = errors.New("stored password is not a valid hash")
	// ErrCannotFollowSelf is returned when a user tries to follow themselves.
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	// ErrInvalidCredentials is returned by login when authentication does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// IsMalformedInput reports whether err is one of the synchronous input errors.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrEmptyPassword) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrInvalidImageURL) ||
		errors.Is(err, ErrMessageTooLong)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrMessageNotFound):
		return NewHTTPError(http.StatusNotFound, ErrMessageNotFound.Error(), "MESSAGE_NOT_FOUND")
	case errors.Is(err, ErrConstraintViolation):
		return NewHTTPError(http.StatusConflict, ErrConstraintViolation.Error(), "CONSTRAINT_VIOLATION")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, "Access unauthorized.", "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case IsMalformedInput(err):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, ErrCannotFollowSelf):
		return NewHTTPError(http.StatusBadRequest, ErrCannotFollowSelf.Error(), "CANNOT_FOLLOW_SELF")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
