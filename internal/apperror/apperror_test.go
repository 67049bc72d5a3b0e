package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

func TestNormalize_PassesClassifiedErrors(t *testing.T) {
	orig := Forbidden("Akses ditolak")
	wrapped := fmt.Errorf("login: %w", orig)

	got := Normalize(wrapped)
	assert.ErrorIs(t, got, orig)
	assert.Equal(t, orig.Message, got.Message)
	assert.Equal(t, http.StatusForbidden, got.Status)
}

func TestNormalize_StampsSentinelCopy(t *testing.T) {
	sentinel := Conflict("NO_CHANGES", "Tidak ada perubahan data")
	stale := time.Now().Add(-time.Hour)
	sentinel.Timestamp = stale

	got := Normalize(sentinel)
	assert.NotSame(t, sentinel, got)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Second)
	assert.Equal(t, stale, sentinel.Timestamp)
	assert.ErrorIs(t, got, sentinel)
}

func TestNormalize_MapsStorageErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   Kind
	}{
		{"not found", fmt.Errorf("find: %w", repository.ErrNotFound), http.StatusNotFound, KindNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, KindNotFound},
		{"stock", repository.ErrInsufficientStock, http.StatusBadRequest, KindConflict},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}, http.StatusBadRequest, KindConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, KindValidation},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, KindUnexpected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.kind, got.Type)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestInternal_KeepsCauseForDiagnostics(t *testing.T) {
	e := Internal(errors.New("boom"))
	assert.Equal(t, GenericMessage, e.Message)
	assert.Equal(t, "boom", e.Detail())
}

func TestWithCause_DoesNotMutateSentinel(t *testing.T) {
	sentinel := Conflict("NO_CHANGES", "Tidak ada perubahan data")
	_ = sentinel.WithCause(errors.New("x"))
	assert.Nil(t, sentinel.Cause)
	assert.ErrorIs(t, sentinel.WithCause(errors.New("y")), sentinel)
}
