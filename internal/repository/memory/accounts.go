package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

type userRepo struct{ st *state }

func (r userRepo) withShop(u model.User) *model.User {
	u.Shop = nil
	if u.ShopID != nil {
		if shop, ok := r.st.d.shops[*u.ShopID]; ok {
			shop.Admin = nil
			u.Shop = &shop
		}
	}
	return &u
}

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.d.users {
		if u.Username == user.Username {
			return duplicate("users_username_key")
		}
	}
	r.st.stamp(&user.BaseModel)
	stored := *user
	stored.Shop = nil
	r.st.d.users[user.ID] = stored
	return nil
}

func (r userRepo) Save(_ context.Context, user *model.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for id, u := range r.st.d.users {
		if id != user.ID && u.Username == user.Username {
			return duplicate("users_username_key")
		}
	}
	r.st.stamp(&user.BaseModel)
	stored := *user
	stored.Shop = nil
	r.st.d.users[user.ID] = stored
	return nil
}

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	u, ok := r.st.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withShop(u), nil
}

func (r userRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := r.st.d.users[id]; ok {
			out = append(out, *r.withShop(u))
		}
	}
	return out, nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, u := range r.st.d.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.User
	for _, u := range r.st.d.users {
		if len(f.Roles) > 0 && !slices.Contains(f.Roles, u.Role) {
			continue
		}
		if f.ShopID != nil && (u.ShopID == nil || *u.ShopID != *f.ShopID) {
			continue
		}
		if !activeMatches(f.IsActive, u.IsActive) || !contains(f.Search, u.Name, u.Username, u.NIK) {
			continue
		}
		rows = append(rows, *r.withShop(u))
	}
	less := byCreated(func(u model.User) time.Time { return u.CreatedAt })
	switch f.SortBy {
	case "name":
		less = func(a, b model.User) bool { return a.Name < b.Name }
	case "username":
		less = func(a, b model.User) bool { return a.Username < b.Username }
	case "role":
		less = func(a, b model.User) bool { return a.Role < b.Role }
	}
	items, total := page(rows, f.ListParams, less)
	return items, total, nil
}

func (r userRepo) CountActiveStaff(_ context.Context, shopID uuid.UUID) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var n int64
	for _, u := range r.st.d.users {
		if u.IsActive && u.Role.IsStaff() && u.ShopID != nil && *u.ShopID == shopID {
			n++
		}
	}
	return n, nil
}

func (r userRepo) ExistsActive(_ context.Context, role model.Role) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, u := range r.st.d.users {
		if u.Role == role && u.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hashedPassword
	r.st.d.users[id] = u
	return nil
}

type shopRepo struct{ st *state }

func (r shopRepo) withAdmin(s model.Shop) model.Shop {
	s.Admin = nil
	if s.AdminID != nil {
		if u, ok := r.st.d.users[*s.AdminID]; ok {
			u.Shop = nil
			s.Admin = &u
		}
	}
	return s
}

func (r shopRepo) checkUnique(shop *model.Shop) error {
	for id, s := range r.st.d.shops {
		if id == shop.ID {
			continue
		}
		if s.Name == shop.Name {
			return duplicate("shops_name_key")
		}
		if shop.AdminID != nil && s.AdminID != nil && *s.AdminID == *shop.AdminID {
			return duplicate("idx_shops_admin_id")
		}
	}
	return nil
}

func (r shopRepo) Create(_ context.Context, shop *model.Shop) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if err := r.checkUnique(shop); err != nil {
		return err
	}
	r.st.stamp(&shop.BaseModel)
	stored := *shop
	stored.Admin = nil
	r.st.d.shops[shop.ID] = stored
	return nil
}

func (r shopRepo) Save(ctx context.Context, shop *model.Shop) error {
	return r.Create(ctx, shop)
}

func (r shopRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	s, ok := r.st.d.shops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s = r.withAdmin(s)
	return &s, nil
}

func (r shopRepo) FindByAdmin(_ context.Context, adminID uuid.UUID) (*model.Shop, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, s := range r.st.d.shops {
		if s.AdminID != nil && *s.AdminID == adminID {
			cp := s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r shopRepo) List(_ context.Context, p repository.ListParams) ([]model.Shop, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.Shop
	for _, s := range r.st.d.shops {
		if !activeMatches(p.IsActive, s.IsActive) || !contains(p.Search, s.Name, s.Address) {
			continue
		}
		rows = append(rows, r.withAdmin(s))
	}
	less := byCreated(func(s model.Shop) time.Time { return s.CreatedAt })
	switch p.SortBy {
	case "name":
		less = func(a, b model.Shop) bool { return a.Name < b.Name }
	case "address":
		less = func(a, b model.Shop) bool { return a.Address < b.Address }
	}
	items, total := page(rows, p, less)
	return items, total, nil
}

type tokenRepo struct{ st *state }

func (r tokenRepo) Create(_ context.Context, token *model.AuthToken) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.d.tokens[token.Token]; ok {
		return duplicate("auth_tokens_pkey")
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.st.now()
	}
	stored := *token
	stored.User = nil
	r.st.d.tokens[token.Token] = stored
	return nil
}

func (r tokenRepo) Find(_ context.Context, token string) (*model.AuthToken, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	t, ok := r.st.d.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r tokenRepo) LatestForUser(_ context.Context, userID uuid.UUID) (*model.AuthToken, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var latest *model.AuthToken
	for _, t := range r.st.d.tokens {
		if t.UserID != userID {
			continue
		}
		if latest == nil || t.LastActive.After(latest.LastActive) {
			cp := t
			latest = &cp
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r tokenRepo) Touch(_ context.Context, token string, lastActive time.Time, expiresIn int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.d.tokens[token]
	if !ok {
		return nil
	}
	t.LastActive = lastActive
	t.ExpiresIn = expiresIn
	r.st.d.tokens[token] = t
	return nil
}

func (r tokenRepo) Delete(_ context.Context, token string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.d.tokens, token)
	return nil
}

func (r tokenRepo) DeleteForUser(_ context.Context, userID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for k, t := range r.st.d.tokens {
		if t.UserID == userID {
			delete(r.st.d.tokens, k)
		}
	}
	return nil
}
