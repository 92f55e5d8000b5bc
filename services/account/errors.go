package account

import (
	"fmt"
	"net/http"
)

// Error is a failure that is safe to show to the client as-is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

var (
	ErrMissingFields     = newError(http.StatusBadRequest, "All fields are required")
	ErrInvalidEmail      = newError(http.StatusBadRequest, "Please enter a valid email address")
	ErrPasswordTooShort  = newError(http.StatusBadRequest, "Password must be at least 6 characters long")
	ErrPasswordTooLong   = newError(http.StatusBadRequest, "Password must be at most 72 bytes long")
	ErrUserExists        = newError(http.StatusBadRequest, "User already exists")
	ErrInvalidCredential = newError(http.StatusBadRequest, "Invalid credentials")
	ErrUnknownEmail      = newError(http.StatusNotFound, "User not found, please sign up")
	ErrUserNotFound      = newError(http.StatusNotFound, "User not found")
	ErrAlreadyVerified   = newError(http.StatusBadRequest, "User is already verified")
	ErrEmptyVerification = newError(http.StatusBadRequest, "Invalid verification token!")
	ErrBadVerification   = newError(http.StatusBadRequest, "Invalid or expired verification token")
	ErrEmailRequired     = newError(http.StatusBadRequest, "Email is required")
	ErrPasswordRequired  = newError(http.StatusBadRequest, "Password is required")
	ErrBadResetToken     = newError(http.StatusBadRequest, "Invalid or expired reset token")
	ErrInvalidPassword   = newError(http.StatusBadRequest, "Invalid password")
	ErrEmailNotSent      = newError(http.StatusInternalServerError, "Email could not be sent")
	ErrCannotListUsers   = newError(http.StatusInternalServerError, "Cannot get users")
	ErrCannotDeleteUser  = newError(http.StatusInternalServerError, "Cannot delete User")
)

func passwordTooShort(minLen int) *Error {
	if minLen == 6 {
		return ErrPasswordTooShort
	}
	return newError(http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters long", minLen))
}
