package apperr

import (
	"errors"
	"net/http"
)

// Error is an application error that knows which HTTP status it maps to
// and which message may be shown to the user.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		if e.Message != "" {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so that wrapped copies compare equal to their base.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches err to a copy of base. A non-empty message replaces the base message.
func Wrap(err error, base *Error, message string) *Error {
	if err == nil {
		return nil
	}
	if base == nil {
		base = ErrInternal
	}
	cp := *base
	if message != "" {
		cp.Message = message
	}
	cp.Err = err
	return &cp
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

func Status(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message returns the text that is safe to show to users. Internal errors
// never leak their cause.
func Message(err error) string {
	e, ok := As(err)
	if !ok || e.Message == "" {
		return "An unexpected error occurred."
	}
	return e.Message
}

var (
	ErrBadRequest   = New("bad_request", http.StatusBadRequest, "Invalid request.")
	ErrValidation   = New("validation_error", http.StatusBadRequest, "")
	ErrAccessDenied = New("access_denied", http.StatusForbidden, "Access denied.")
	ErrNotFound     = New("not_found", http.StatusNotFound, "Not found.")
	ErrInternal     = New("internal_error", http.StatusInternalServerError, "")
	ErrDatabase     = New("database_error", http.StatusInternalServerError, "")
	ErrPDF          = New("pdf_failed", http.StatusInternalServerError, "The PDF could not be created.")
	ErrMail         = New("mail_failed", http.StatusInternalServerError, "")
)
