package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

const ActorKey = "actor"

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The result is a copy and stays valid after the request returns.
func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return utils.CopyString(strings.TrimSpace(parts[1]))
}

// RequireAuth validates the bearer against its session row and stores the actor in Locals.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Authenticate(c.UserContext(), BearerToken(c))
		if err != nil {
			return err
		}
		c.Locals(ActorKey, actor)
		return c.Next()
	}
}

// CurrentActor returns the actor set by RequireAuth.
func CurrentActor(c *fiber.Ctx) *service.Actor {
	actor, _ := c.Locals(ActorKey).(*service.Actor)
	return actor
}

// RequireCapability rejects actors whose role lacks every one of caps.
func RequireCapability(caps ...policy.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := CurrentActor(c)
		if actor == nil {
			return service.ErrMissingToken
		}
		for _, want := range caps {
			if actor.Can(want) {
				return c.Next()
			}
		}
		return apperror.Forbidden("Anda tidak memiliki akses untuk operasi ini").
			WithMeta("role", string(actor.Role))
	}
}
