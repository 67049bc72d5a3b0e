package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/pkg/jwt"
)

type AuthService interface {
	Login(ctx context.Context, endpoint model.Role, req LoginRequest) (*LoginResponse, error)
	Authenticate(ctx context.Context, bearer string) (*Actor, error)
	Logout(ctx context.Context, bearer string) error
	RegisterSuperadmin(ctx context.Context, req RegisterRequest) (*model.UserResponse, error)
	ChangePassword(ctx context.Context, actor *Actor, req ChangePasswordRequest) error
}

// SessionConfig controls the sliding expiry of session rows.
type SessionConfig struct {
	TTL         time.Duration
	RenewWindow time.Duration
	ReuseWindow time.Duration
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token        string              `json:"token"`
	ExpiresAt    time.Time           `json:"expiresAt"`
	User         model.UserResponse  `json:"user"`
	Capabilities []policy.Capability `json:"capabilities"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type authService struct {
	base
	signer *jwt.Signer
	cfg    SessionConfig
}

func NewAuthService(store repository.Store, signer *jwt.Signer, cfg SessionConfig, opts ...Option) AuthService {
	return &authService{
		base:   newBase(store, opts),
		signer: signer,
		cfg:    cfg,
	}
}

func (s *authService) Login(ctx context.Context, endpoint model.Role, req LoginRequest) (*LoginResponse, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	// 1. Find user, same message for unknown, inactive and wrong password
	user, err := s.store.Users().FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// 2. Endpoint audience
	if !policy.CanLogin(endpoint, user.Role) {
		return nil, apperror.Forbidden("Akses hanya untuk " + endpoint.Label())
	}

	// 3. Session row
	session, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	// 4. Signed bearer around the session id
	token, err := s.signer.Sign(session.Token, user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &LoginResponse{
		Token:        token,
		ExpiresAt:    session.ExpiresAt(),
		User:         user.ToResponse(),
		Capabilities: policy.Capabilities(user.Role),
	}, nil
}

// openSession reuses a fresh session for roles with a reuse window, otherwise
// rotates (reuse roles) or adds (everyone else) a session row.
func (s *authService) openSession(ctx context.Context, user *model.User) (*model.AuthToken, error) {
	now := s.now()
	window := policy.SessionReuseWindow(user.Role, s.cfg.ReuseWindow)

	if window > 0 {
		latest, err := s.store.Tokens().LatestForUser(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if latest != nil && latest.Valid(now) && now.Sub(latest.LastActive) < window {
			return latest, nil
		}
	}

	session := &model.AuthToken{
		Token:      uuid.NewString(),
		UserID:     user.ID,
		LastActive: now,
		ExpiresIn:  int64(s.cfg.TTL / time.Second),
		CreatedAt:  now,
	}
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if window > 0 {
			if err := tx.Tokens().DeleteForUser(ctx, user.ID); err != nil {
				return err
			}
		}
		return tx.Tokens().Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *authService) Authenticate(ctx context.Context, bearer string) (*Actor, error) {
	sessionID, userID, err := s.signer.Parse(bearer)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return nil, ErrMissingToken
		}
		return nil, ErrInvalidSession
	}

	var actor *Actor
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		session, err := tx.Tokens().Find(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidSession
			}
			return err
		}
		if session.UserID != userID {
			return ErrInvalidSession
		}

		now := s.now()
		if !session.Valid(now) {
			// Opportunistic cleanup. Returning nil keeps the delete committed.
			if err := tx.Tokens().Delete(ctx, sessionID); err != nil {
				return err
			}
			return nil
		}
		if now.Before(session.LastActive.Add(s.cfg.RenewWindow)) {
			if err := tx.Tokens().Touch(ctx, sessionID, now, int64(s.cfg.TTL/time.Second)); err != nil {
				return err
			}
		}

		user, err := tx.Users().FindByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidSession
			}
			return err
		}
		if !user.IsActive {
			return ErrInvalidSession
		}
		actor = &Actor{
			ID:       user.ID,
			Role:     user.Role,
			Username: user.Username,
			Name:     user.Name,
			ShopID:   user.ShopID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrSessionExpired
	}
	return actor, nil
}

func (s *authService) Logout(ctx context.Context, bearer string) error {
	sessionID, _, err := s.signer.Parse(bearer)
	if err != nil {
		return ErrInvalidSession
	}
	return s.store.Tokens().Delete(ctx, sessionID)
}

// RegisterSuperadmin bootstraps the first superadmin. It is closed once one is active.
func (s *authService) RegisterSuperadmin(ctx context.Context, req RegisterRequest) (*model.UserResponse, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	var created *model.User
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		exists, err := tx.Users().ExistsActive(ctx, model.RoleSuperadmin)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Forbidden("Superadmin sudah terdaftar")
		}

		user := &model.User{
			Username: req.Username,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			NIK:      req.NIK,
			Role:     model.RoleSuperadmin,
			IsActive: true,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return apperror.Internal(err)
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		created = user
		return record(ctx, tx, model.HistoryUser, user.ID, model.ActionCreated, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor *Actor, req ChangePasswordRequest) error {
	if err := validate(&req); err != nil {
		return err
	}
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return notFound(err, "Akun tidak ditemukan")
	}

	// 1. Verify old password
	if !user.CheckPassword(req.OldPassword) {
		return apperror.Validation("Password lama salah")
	}

	// 2. Hash and store
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperror.Internal(err)
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Users().UpdatePassword(ctx, user.ID, user.Password); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryUser, user.ID, model.ActionPassword, nil, actor)
	})
}
