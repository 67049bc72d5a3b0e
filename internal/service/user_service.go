package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/audit"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

// UserService manages accounts below the caller in the role hierarchy.
type UserService interface {
	Register(ctx context.Context, actor *Actor, role model.Role, req RegisterRequest) (*model.UserResponse, error)
	List(ctx context.Context, actor *Actor, q UserQuery) (repository.Page[model.UserResponse], error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.UserResponse, error)
	Update(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateUserRequest) (*model.UserResponse, error)
	Deactivate(ctx context.Context, actor *Actor, id uuid.UUID) error
	History(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error)
	TransferStaff(ctx context.Context, actor *Actor, req TransferStaffRequest) (*MessageResult, error)
	TransferAdmin(ctx context.Context, actor *Actor, req TransferAdminRequest) (*MessageResult, error)
	Profile(ctx context.Context, actor *Actor) (*model.UserResponse, error)
	UpdateProfile(ctx context.Context, actor *Actor, req UpdateUserRequest) (*model.UserResponse, error)
}

type RegisterRequest struct {
	Username  string     `json:"username" validate:"required,min=3,max=100"`
	Password  string     `json:"password" validate:"required,min=6"`
	Name      string     `json:"name" validate:"required"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone" validate:"omitempty,max=20"`
	NIK       string     `json:"nik" validate:"omitempty,max=32"`
	PhotoPath string     `json:"photoPath"`
	ShopID    *uuid.UUID `json:"shopId"`
}

// UpdateUserRequest is a partial update. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name      *string     `json:"name" validate:"omitempty,min=1"`
	Email     *string     `json:"email" validate:"omitempty,email"`
	Phone     *string     `json:"phone" validate:"omitempty,max=20"`
	NIK       *string     `json:"nik" validate:"omitempty,max=32"`
	PhotoPath *string     `json:"photoPath"`
	Role      *model.Role `json:"role"`
}

type UserQuery struct {
	repository.ListParams
	Roles  []model.Role
	ShopID *uuid.UUID
}

type TransferStaffRequest struct {
	StaffIDs     []uuid.UUID `json:"staffIds" validate:"required,min=1"`
	TargetShopID uuid.UUID   `json:"targetShopId" validate:"uuid_required"`
}

type TransferAdminRequest struct {
	AdminID      uuid.UUID `json:"adminId" validate:"uuid_required"`
	TargetShopID uuid.UUID `json:"targetShopId" validate:"uuid_required"`
}

type userService struct {
	base
}

func NewUserService(store repository.Store, opts ...Option) UserService {
	return &userService{base: newBase(store, opts)}
}

func (s *userService) Register(ctx context.Context, actor *Actor, role model.Role, req RegisterRequest) (*model.UserResponse, error) {
	// 1. Role hierarchy
	if !policy.CanManage(actor.Role, role) {
		return nil, apperror.Forbidden("Anda tidak dapat mendaftarkan akun " + role.Label())
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	// 2. Resolve the shop. Shop scoped actors always register into their own shop.
	shopID := req.ShopID
	if policy.ShopScoped(actor.Role) {
		id, err := actor.shop()
		if err != nil {
			return nil, err
		}
		shopID = &id
	}
	if shopID == nil {
		return nil, apperror.Validation("shopId wajib diisi")
	}

	var created *model.User
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		shop, err := tx.Shops().FindByID(ctx, *shopID)
		if err != nil {
			return notFound(err, "Toko tidak ditemukan")
		}
		if !shop.IsActive {
			return apperror.Conflict("SHOP_INACTIVE", "Toko sudah tidak aktif")
		}
		if role == model.RoleAdmin && shop.AdminID != nil {
			return apperror.Conflict("SHOP_HAS_ADMIN", "Toko sudah memiliki admin")
		}

		// 3. Create account
		user := &model.User{
			Username: req.Username,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			NIK:      req.NIK,
			Role:     role,
			ShopID:   &shop.ID,
			IsActive: true,
		}
		if req.PhotoPath != "" {
			user.PhotoPath = &req.PhotoPath
		}
		if err := user.SetPassword(req.Password); err != nil {
			return apperror.Internal(err)
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		// 4. Admins are attached to the shop row as well
		if role == model.RoleAdmin {
			shop.AdminID = &user.ID
			if err := tx.Shops().Save(ctx, shop); err != nil {
				return err
			}
		}
		user.Shop = shop
		created = user
		return record(ctx, tx, model.HistoryUser, user.ID, model.ActionCreated,
			[]audit.Change{{Field: "shop", New: shop.Name}}, actor)
	})
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

// managed loads an account the actor may act on. Anything else looks absent.
func (s *userService) managed(ctx context.Context, tx repository.Store, actor *Actor, id uuid.UUID) (*model.User, error) {
	user, err := tx.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Akun tidak ditemukan")
	}
	if !policy.CanManage(actor.Role, user.Role) || !actor.sees(user.ShopID) {
		return nil, apperror.NotFound("Akun tidak ditemukan")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor *Actor, q UserQuery) (repository.Page[model.UserResponse], error) {
	if err := actor.require(policy.ViewAccounts); err != nil {
		return repository.Page[model.UserResponse]{}, err
	}
	q.ListParams = q.ListParams.Normalize()

	// Requested roles are narrowed to what the actor manages
	allowed := policy.ManagedRoles(actor.Role)
	roles := allowed
	if len(q.Roles) > 0 {
		roles = nil
		for _, r := range q.Roles {
			if policy.CanManage(actor.Role, r) {
				roles = append(roles, r)
			}
		}
		if len(roles) == 0 {
			return repository.NewPage[model.UserResponse](nil, 0, q.ListParams), nil
		}
	}

	filter := repository.UserFilter{ListParams: q.ListParams, Roles: roles, ShopID: q.ShopID}
	if policy.ShopScoped(actor.Role) {
		shopID, err := actor.shop()
		if err != nil {
			return repository.Page[model.UserResponse]{}, err
		}
		filter.ShopID = &shopID
	}

	users, total, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return repository.Page[model.UserResponse]{}, err
	}
	items := make([]model.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, users[i].ToResponse())
	}
	return repository.NewPage(items, total, q.ListParams), nil
}

func (s *userService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.UserResponse, error) {
	if err := actor.require(policy.ViewAccounts); err != nil {
		return nil, err
	}
	user, err := s.managed(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateUserRequest) (*model.UserResponse, error) {
	if err := actor.require(policy.ManageAccounts); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	var updated *model.User
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		user, err := s.managed(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !user.IsActive {
			return apperror.NotFound("Akun tidak ditemukan")
		}

		var d audit.Diff
		applyProfile(&d, user, req)
		if req.Role != nil && *req.Role != user.Role {
			// Only the superadmin may move staff between the warehouse and cashier roles
			if actor.Role != model.RoleSuperadmin || !user.Role.IsStaff() || !req.Role.IsStaff() {
				return apperror.Forbidden("Perubahan role tidak diizinkan")
			}
			d.Record("role", string(user.Role), string(*req.Role))
			user.Role = *req.Role
		}
		if d.Empty() {
			return ErrNoChanges
		}

		if err := tx.Users().Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return record(ctx, tx, model.HistoryUser, user.ID, model.ActionUpdated, d.Changes(), actor)
	})
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

func applyProfile(d *audit.Diff, user *model.User, req UpdateUserRequest) {
	user.Name = d.String("name", user.Name, req.Name)
	user.Email = d.String("email", user.Email, req.Email)
	user.Phone = d.String("phone", user.Phone, req.Phone)
	user.NIK = d.String("nik", user.NIK, req.NIK)
	user.PhotoPath = d.OptionalString("photoPath", user.PhotoPath, req.PhotoPath)
}

func (s *userService) Deactivate(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := actor.require(policy.ManageAccounts); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		user, err := s.managed(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !user.IsActive {
			return apperror.NotFound("Akun tidak ditemukan")
		}

		var d audit.Diff
		d.Record("isActive", "true", "false")

		// Admins must hand over their staff first, then release the shop
		if user.Role == model.RoleAdmin && user.ShopID != nil {
			n, err := tx.Users().CountActiveStaff(ctx, *user.ShopID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperror.Conflict("ADMIN_HAS_STAFF",
					fmt.Sprintf("Admin masih membawahi %d staff aktif, pindahkan staff terlebih dahulu", n))
			}
			if err := detachAdmin(ctx, tx, user.ID); err != nil {
				return err
			}
			d.Record("shop", shopName(user.Shop), "")
			user.ShopID, user.Shop = nil, nil
		}

		user.IsActive = false
		if err := tx.Users().Save(ctx, user); err != nil {
			return err
		}
		if err := tx.Tokens().DeleteForUser(ctx, user.ID); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryUser, user.ID, model.ActionDeactivated, d.Changes(), actor)
	})
}

// detachAdmin clears the admin slot of whichever shop adminID holds.
func detachAdmin(ctx context.Context, tx repository.Store, adminID uuid.UUID) error {
	shop, err := tx.Shops().FindByAdmin(ctx, adminID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	shop.AdminID, shop.Admin = nil, nil
	return tx.Shops().Save(ctx, shop)
}

func shopName(s *model.Shop) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func (s *userService) History(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error) {
	if err := actor.require(policy.ViewAccountHistory); err != nil {
		return nil, err
	}
	if _, err := s.managed(ctx, s.store, actor, id); err != nil {
		return nil, err
	}
	rows, err := s.store.History().List(ctx, model.HistoryUser, id)
	if err != nil {
		return nil, err
	}
	return historyResponses(rows), nil
}

// TransferStaff moves active staff to another shop in one atomic unit.
// Staff already at the target shop are skipped.
func (s *userService) TransferStaff(ctx context.Context, actor *Actor, req TransferStaffRequest) (*MessageResult, error) {
	if err := actor.require(policy.TransferStaff); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	var result *MessageResult
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		target, err := tx.Shops().FindByID(ctx, req.TargetShopID)
		if err != nil {
			return notFound(err, "Toko tujuan tidak ditemukan")
		}
		if !target.IsActive {
			return apperror.NotFound("Toko tujuan tidak ditemukan")
		}

		candidates, err := tx.Users().FindByIDs(ctx, req.StaffIDs)
		if err != nil {
			return err
		}
		var valid []model.User
		for _, u := range candidates {
			if u.IsActive && u.Role.IsStaff() {
				valid = append(valid, u)
			}
		}
		if len(valid) == 0 {
			return apperror.NotFound("Tidak ada staff valid ditemukan")
		}

		moved := 0
		for i := range valid {
			staff := &valid[i]
			if staff.ShopID != nil && *staff.ShopID == target.ID {
				continue
			}
			from := shopName(staff.Shop)
			staff.ShopID, staff.Shop = &target.ID, nil
			if err := tx.Users().Save(ctx, staff); err != nil {
				return err
			}
			changes := []audit.Change{{Field: "shop", Old: from, New: target.Name}}
			if err := record(ctx, tx, model.HistoryUser, staff.ID, model.ActionTransferred, changes, actor); err != nil {
				return err
			}
			moved++
		}

		if moved == 0 {
			result = &MessageResult{Message: "Semua staff sudah berada di toko tujuan"}
			return nil
		}
		result = &MessageResult{
			Message: fmt.Sprintf("%d staff berhasil ditransfer ke toko '%s'", moved, target.Name),
			Count:   moved,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferAdmin moves an admin to a target shop. A displaced admin takes the
// mover's former shop, or no shop when the mover had none. Both slots are
// detached before either is attached so the unique admin index never sees a duplicate.
func (s *userService) TransferAdmin(ctx context.Context, actor *Actor, req TransferAdminRequest) (*MessageResult, error) {
	if err := actor.require(policy.TransferAdmin); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	var result *MessageResult
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		mover, err := tx.Users().FindByID(ctx, req.AdminID)
		if err != nil {
			return notFound(err, "Admin yang akan dipindah tidak ditemukan")
		}
		if mover.Role != model.RoleAdmin || !mover.IsActive {
			return apperror.NotFound("Admin yang akan dipindah tidak ditemukan")
		}
		target, err := tx.Shops().FindByID(ctx, req.TargetShopID)
		if err != nil {
			return notFound(err, "Toko tujuan tidak ditemukan")
		}
		if !target.IsActive {
			return apperror.NotFound("Toko tujuan tidak ditemukan")
		}
		if target.AdminID != nil && *target.AdminID == mover.ID {
			result = &MessageResult{Message: fmt.Sprintf("Admin '%s' sudah berada di toko '%s'", mover.Name, target.Name)}
			return nil
		}

		source, err := tx.Shops().FindByAdmin(ctx, mover.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		var displaced *model.User
		if target.AdminID != nil {
			if displaced, err = tx.Users().FindByID(ctx, *target.AdminID); err != nil {
				return err
			}
		}

		// 1. Detach both
		if source != nil {
			source.AdminID, source.Admin = nil, nil
			if err := tx.Shops().Save(ctx, source); err != nil {
				return err
			}
		}
		if displaced != nil {
			target.AdminID, target.Admin = nil, nil
			if err := tx.Shops().Save(ctx, target); err != nil {
				return err
			}
		}

		// 2. Attach both
		target.AdminID = &mover.ID
		if err := tx.Shops().Save(ctx, target); err != nil {
			return err
		}
		if err := moveAdmin(ctx, tx, actor, mover, source, target); err != nil {
			return err
		}
		if displaced != nil {
			var dest *model.Shop
			if source != nil {
				source.AdminID = &displaced.ID
				if err := tx.Shops().Save(ctx, source); err != nil {
					return err
				}
				dest = source
			}
			if err := moveAdmin(ctx, tx, actor, displaced, target, dest); err != nil {
				return err
			}
		}

		result = &MessageResult{
			Message: fmt.Sprintf("Admin '%s' berhasil dipindahkan ke toko '%s'", mover.Name, target.Name),
			Count:   1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// moveAdmin points the admin account at dest (nil clears it) and writes its audit row.
func moveAdmin(ctx context.Context, tx repository.Store, actor *Actor, admin *model.User, from, dest *model.Shop) error {
	changes := []audit.Change{{Field: "shop", Old: shopName(from), New: shopName(dest)}}
	admin.Shop = nil
	if dest != nil {
		admin.ShopID = &dest.ID
	} else {
		admin.ShopID = nil
	}
	if err := tx.Users().Save(ctx, admin); err != nil {
		return err
	}
	return record(ctx, tx, model.HistoryUser, admin.ID, model.ActionTransferred, changes, actor)
}

func (s *userService) Profile(ctx context.Context, actor *Actor) (*model.UserResponse, error) {
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "Akun tidak ditemukan")
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor *Actor, req UpdateUserRequest) (*model.UserResponse, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Role != nil {
		return nil, apperror.Forbidden("Role tidak dapat diubah sendiri")
	}

	var updated *model.User
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, actor.ID)
		if err != nil {
			return notFound(err, "Akun tidak ditemukan")
		}
		var d audit.Diff
		applyProfile(&d, user, req)
		if d.Empty() {
			return ErrNoChanges
		}
		if err := tx.Users().Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return record(ctx, tx, model.HistoryUser, user.ID, model.ActionUpdated, d.Changes(), actor)
	})
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}
