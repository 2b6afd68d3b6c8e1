package chatvault

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	ENOCONTENT   = "no_content"
	EPERMISSION  = "permission"
	ETOOLARGE    = "too_large"
	EUNAVAILABLE = "unavailable"
	ETIMEOUT     = "timeout"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("chatvault error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// userMessages holds the text shown to users for each error code.
var userMessages = map[string]string{
	EINVALID:     "The request could not be processed.",
	ENOTFOUND:    "The requested item was not found.",
	ENOCONTENT:   "No messages were found on this page.",
	EPERMISSION:  "Access to the vault folder was denied. Grant access again to save files directly.",
	ETOOLARGE:    "The content is too large for this save method.",
	EUNAVAILABLE: "The save service is unavailable. Reload the page and try again.",
	ETIMEOUT:     "Saving took too long and was cancelled.",
	EINTERNAL:    "Something went wrong while saving.",
}

// UserMessage returns human-readable text for err that is safe to show in
// user-facing feedback. Internal details are left to the logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := userMessages[ErrorCode(err)]; ok {
		return msg
	}
	return userMessages[EINTERNAL]
}
