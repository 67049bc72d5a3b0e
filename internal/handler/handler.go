// Package handler adapts HTTP requests to service calls. Every success is
// answered with 200 and {data}; every failure is returned to the app's
// error handler.
package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/middleware"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

const dateLayout = "2006-01-02"

func ok(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": data})
}

func actor(c *fiber.Ctx) *service.Actor {
	return middleware.CurrentActor(c)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Format JSON tidak valid").WithCause(err)
	}
	return nil
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("ID tidak valid").WithCause(err)
	}
	return id, nil
}

func paramRole(c *fiber.Ctx) (model.Role, error) {
	role, valid := model.ParseRole(c.Params("role"))
	if !valid {
		return "", apperror.NotFound("Role tidak dikenal")
	}
	return role, nil
}

// listParams reads search, page, pageSize, sortBy, sortOrder and isActive.
func listParams(c *fiber.Ctx) (repository.ListParams, error) {
	p := repository.ListParams{
		Search:    strings.TrimSpace(c.Query("search")),
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("pageSize", repository.DefaultPageSize),
		SortBy:    c.Query("sortBy"),
		SortOrder: strings.ToLower(c.Query("sortOrder")),
	}
	if p.SortOrder != "" && p.SortOrder != "asc" && p.SortOrder != "desc" {
		return p, apperror.Validation("sortOrder harus asc atau desc")
	}
	active, err := queryBool(c, "isActive")
	if err != nil {
		return p, err
	}
	p.IsActive = active
	return p.Normalize(), nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Validation(key + " harus true atau false")
	}
	return &v, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.Validation(key + " harus berupa angka")
	}
	return &v, nil
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation(key + " harus berupa angka")
	}
	return &v, nil
}

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation(key + " tidak valid")
	}
	return &v, nil
}

// queryTime accepts a date or an RFC 3339 timestamp. A bare date used as an
// upper bound covers the whole day.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, apperror.Validation(key + " harus berformat YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// queryRoles accepts roles=a,b as well as repeated roles[]=a&roles[]=b.
func queryRoles(c *fiber.Ctx) ([]model.Role, error) {
	var raw []string
	args := c.Context().QueryArgs()
	for _, key := range []string{"roles", "roles[]", "role"} {
		for _, v := range args.PeekMulti(key) {
			raw = append(raw, strings.Split(string(v), ",")...)
		}
	}
	var roles []model.Role
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		role, valid := model.ParseRole(r)
		if !valid {
			return nil, apperror.Validation("Role tidak dikenal: " + r)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func productFilter(c *fiber.Ctx) (repository.ProductFilter, error) {
	var (
		f   repository.ProductFilter
		err error
	)
	if f.ListParams, err = listParams(c); err != nil {
		return f, err
	}
	if f.TypeID, err = queryUUID(c, "typeId"); err != nil {
		return f, err
	}
	if f.DistributorID, err = queryUUID(c, "distributorId"); err != nil {
		return f, err
	}
	if f.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.MinStock, err = queryInt(c, "minStock"); err != nil {
		return f, err
	}
	if f.MaxStock, err = queryInt(c, "maxStock"); err != nil {
		return f, err
	}
	return f, nil
}

func userQuery(c *fiber.Ctx) (service.UserQuery, error) {
	var (
		q   service.UserQuery
		err error
	)
	if q.ListParams, err = listParams(c); err != nil {
		return q, err
	}
	if q.Roles, err = queryRoles(c); err != nil {
		return q, err
	}
	if q.ShopID, err = queryUUID(c, "shopId"); err != nil {
		return q, err
	}
	return q, nil
}
