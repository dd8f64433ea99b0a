package errors

import (
	"errors"
	"net/http"
)

// Domain errors. Repositories translate driver signals into these exactly
// once; services and handlers never inspect database error codes.
var (
	// ErrInvalidRegistration is returned when registration input is incomplete.
	ErrInvalidRegistration = errors.New("name, email and a password of at least 6 characters are required")
	// ErrEmailRequired is returned when a reset request carries no email.
	ErrEmailRequired = errors.New("email is required")
	// ErrInvalidResetRequest is returned when a reset consumption is incomplete.
	ErrInvalidResetRequest = errors.New("a token and a password of at least 6 characters are required")
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrInvalidResetToken is returned for unknown, used, or expired reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrMailDelivery is returned when a configured mail transport fails to send.
	ErrMailDelivery = errors.New("failed to send email")
	// ErrUserNotFound is returned when a valid session references an account
	// that no longer exists.
	ErrUserNotFound = errors.New("account no longer exists")

	// ErrNoteNotFound is returned when a note is absent or owned by someone else.
	ErrNoteNotFound = errors.New("note not found")
	// ErrCategoryNotFound is returned when a category is absent or owned by someone else.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrFileNotFound is returned when an attachment is absent, not reachable
	// through a note the caller owns, or missing from disk.
	ErrFileNotFound = errors.New("file not found")
	// ErrDuplicateKey is the repository-level translation of a unique
	// constraint violation; services map it to a resource-specific conflict.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrCategoryExists is returned on a category name collision within one owner.
	ErrCategoryExists = errors.New("category already exists")
	// ErrCategoryNameRequired is returned for empty (after trimming) category names.
	ErrCategoryNameRequired = errors.New("category name is required")
	// ErrCategoryNameTooLong is returned for category names over 60 characters.
	ErrCategoryNameTooLong = errors.New("category name must be 60 characters or fewer")
	// ErrInvalidNoteID is returned for non-numeric note ids in the path.
	ErrInvalidNoteID = errors.New("invalid note id")
	// ErrInvalidFileID is returned for non-numeric file ids in the path.
	ErrInvalidFileID = errors.New("invalid file id")
	// ErrCategoryNotUsable is returned when a note references a category id
	// that does not resolve to a category owned by the caller.
	ErrCategoryNotUsable = errors.New("selected category is not usable")
	// ErrInvalidCategoryID is returned for non-numeric category filter values.
	ErrInvalidCategoryID = errors.New("invalid category id")

	// ErrFileTooLarge is returned when an upload exceeds the per-file cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrFileTypeNotAllowed is returned for uploads outside the MIME allow-list.
	ErrFileTypeNotAllowed = errors.New("unsupported file type")
	// ErrTooManyFiles is returned when a request carries too many uploads.
	ErrTooManyFiles = errors.New("too many files in one request")

	// ErrMigrationRequired is returned for category operations against a
	// database where the categories migration has not been applied.
	ErrMigrationRequired = errors.New("category support requires a database migration; run the migrate command")
	// ErrTooManyRequests is returned when the auth throttle trips.
	ErrTooManyRequests = errors.New("too many requests, try again later")
)

// ErrorResponse is the wire shape of every error the API returns.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError pairs a domain error with its transport status.
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
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized
// becomes a generic 500; the caller is expected to log the original error.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidRegistration):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REGISTRATION")
	case errors.Is(err, ErrEmailRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_REQUIRED")
	case errors.Is(err, ErrInvalidResetRequest):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_RESET_REQUEST")
	case errors.Is(err, ErrCategoryNameRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CATEGORY_NAME_REQUIRED")
	case errors.Is(err, ErrCategoryNameTooLong):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CATEGORY_NAME_TOO_LONG")
	case errors.Is(err, ErrInvalidNoteID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_NOTE_ID")
	case errors.Is(err, ErrInvalidFileID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_FILE_ID")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidResetToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_RESET_TOKEN")
	case errors.Is(err, ErrMailDelivery):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "MAIL_DELIVERY_FAILED")
	case errors.Is(err, ErrNoteNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOTE_NOT_FOUND")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrFileNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "FILE_NOT_FOUND")
	case errors.Is(err, ErrCategoryExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "CATEGORY_EXISTS")
	case errors.Is(err, ErrCategoryNotUsable):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CATEGORY_NOT_USABLE")
	case errors.Is(err, ErrInvalidCategoryID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CATEGORY_ID")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, ErrFileTypeNotAllowed):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED")
	case errors.Is(err, ErrTooManyFiles):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TOO_MANY_FILES")
	case errors.Is(err, ErrMigrationRequired):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "MIGRATION_REQUIRED")
	case errors.Is(err, ErrTooManyRequests):
		return NewHTTPError(http.StatusTooManyRequests, err.Error(), "TOO_MANY_REQUESTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
