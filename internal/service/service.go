package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/audit"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
	"github.com/DimasAnjayMabar/agusplastik-backend/pkg/validator"
)

var (
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, apperror.KindAuthentication, "INVALID_CREDENTIALS", "Username atau password salah")
	ErrMissingToken       = apperror.New(http.StatusUnauthorized, apperror.KindAuthentication, "MISSING_TOKEN", "Token tidak ditemukan")
	ErrInvalidSession     = apperror.New(http.StatusUnauthorized, apperror.KindAuthentication, "INVALID_TOKEN", "Token tidak valid")
	ErrSessionExpired     = apperror.New(http.StatusUnauthorized, apperror.KindAuthentication, "SESSION_EXPIRED", "Sesi telah berakhir")
	ErrNoShop             = apperror.New(http.StatusForbidden, apperror.KindAuthorization, "NO_SHOP", "Akun belum terhubung dengan toko")
	ErrNoChanges          = apperror.Conflict("NO_CHANGES", "Tidak ada perubahan data")
)

// Actor is the authenticated caller attached to every request.
type Actor struct {
	ID       uuid.UUID  `json:"id"`
	Role     model.Role `json:"role"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	ShopID   *uuid.UUID `json:"shopId"`
}

func (a *Actor) Can(c policy.Capability) bool {
	return a != nil && policy.Allows(a.Role, c)
}

func (a *Actor) require(c policy.Capability) error {
	if !a.Can(c) {
		return apperror.Forbidden("Anda tidak memiliki akses untuk operasi ini").WithMeta("capability", string(c))
	}
	return nil
}

// shop returns the shop the actor works in.
func (a *Actor) shop() (uuid.UUID, error) {
	if a.ShopID == nil {
		return uuid.Nil, ErrNoShop
	}
	return *a.ShopID, nil
}

// sees reports whether a row belonging to shopID is inside the actor's scope.
func (a *Actor) sees(shopID *uuid.UUID) bool {
	if !policy.ShopScoped(a.Role) {
		return true
	}
	return a.ShopID != nil && shopID != nil && *a.ShopID == *shopID
}

// Publisher receives realtime events after a unit of work commits.
type Publisher interface {
	Publish(e ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

type Clock func() time.Time

type base struct {
	store repository.Store
	now   Clock
	pub   Publisher
}

type Option func(*base)

func WithClock(c Clock) Option {
	return func(b *base) { b.now = c }
}

func WithPublisher(p Publisher) Option {
	return func(b *base) {
		if p != nil {
			b.pub = p
		}
	}
}

func newBase(store repository.Store, opts []Option) base {
	b := base{store: store, now: time.Now, pub: nopPublisher{}}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// validate runs the struct tags of req and turns failures into a 400 envelope.
func validate(req any) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation("Data tidak valid").WithDetails(errs)
	}
	return nil
}

// notFound rewrites repository misses with a resource specific message.
func notFound(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(message).WithCause(err)
	}
	return err
}

func record(ctx context.Context, tx repository.Store, subject model.HistorySubject, id uuid.UUID, action string, changes []audit.Change, actor *Actor) error {
	var by *uuid.UUID
	if actor != nil {
		by = &actor.ID
	}
	return tx.History().Append(ctx, model.NewHistory(subject, id, action, changes, by))
}

func historyResponses(rows []model.History) []model.HistoryResponse {
	out := make([]model.HistoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToResponse())
	}
	return out
}

// MessageResult is returned by operations whose outcome is a sentence.
type MessageResult struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
