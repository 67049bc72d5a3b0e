// Package apperror is the single error envelope used between services and the HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindUnexpected     Kind = "unexpected"
)

const GenericMessage = "Terjadi kesalahan pada server"

// Error carries everything the HTTP layer needs to render a failure.
type Error struct {
	Status        int            `json:"-"`
	Message       string         `json:"error"`
	Cause         error          `json:"-"`
	Code          string         `json:"code,omitempty"`
	Type          Kind           `json:"type"`
	Details       any            `json:"details,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Documentation string         `json:"documentation,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

func New(status int, kind Kind, code, message string) *Error {
	return &Error{
		Status:    status,
		Message:   message,
		Code:      code,
		Type:      kind,
		Timestamp: time.Now(),
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches two envelopes by code so sentinel envelopes work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy carrying cause. Sentinels stay untouched.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	cp.Timestamp = time.Now()
	return &cp
}

func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *Error) WithMeta(key string, value any) *Error {
	cp := *e
	cp.Metadata = make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		cp.Metadata[k] = v
	}
	cp.Metadata[key] = value
	return &cp
}

// Detail is the client visible diagnostic, taken from the cause.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, "VALIDATION_ERROR", message)
}

func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, KindAuthentication, "UNAUTHENTICATED", message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, KindAuthorization, "FORBIDDEN", message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, KindNotFound, "NOT_FOUND", message)
}

// Conflict covers business rule rejections. They surface as 400.
func Conflict(code, message string) *Error {
	return New(http.StatusBadRequest, KindConflict, code, message)
}

func Internal(cause error) *Error {
	return New(http.StatusInternalServerError, KindUnexpected, "INTERNAL_ERROR", GenericMessage).WithCause(cause)
}

// As extracts an envelope from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Normalize converts any error into an envelope. Classified errors pass through
// as a copy stamped with the current time, storage errors are mapped, everything
// else becomes a 500.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		cp := *e
		cp.Timestamp = time.Now()
		return &cp
	}
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Data tidak ditemukan").WithCause(err)
	}
	if errors.Is(err, repository.ErrInsufficientStock) {
		return Conflict("INSUFFICIENT_STOCK", "Stok tidak mencukupi").WithCause(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Conflict("DUPLICATE", "Data sudah terdaftar").
				WithCause(err).
				WithMeta("constraint", pgErr.ConstraintName)
		case "23503":
			return Validation("Data referensi tidak valid").
				WithCause(err).
				WithMeta("constraint", pgErr.ConstraintName)
		case "23514":
			return Conflict("CHECK_VIOLATION", "Data melanggar aturan").WithCause(err)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Conflict("DUPLICATE", "Data sudah terdaftar").WithCause(err)
	}
	return Internal(err)
}
