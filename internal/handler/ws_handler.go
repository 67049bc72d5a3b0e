package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/middleware"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
)

const feedShopKey = "feed_shop"

// WSHandler upgrades authenticated clients onto the realtime stock feed.
// Browsers cannot set headers on a websocket handshake, so the bearer may
// also come from the token query parameter.
type WSHandler struct {
	auth service.AuthService
	hub  *ws.Hub
}

func NewWSHandler(auth service.AuthService, hub *ws.Hub) *WSHandler {
	return &WSHandler{auth: auth, hub: hub}
}

// Upgrade authenticates the handshake and decides which shop the client follows.
// Shop-scoped roles follow their own shop; superadmin may pick one with shopId.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	bearer := middleware.BearerToken(c)
	if bearer == "" {
		bearer = c.Query("token")
	}
	a, err := h.auth.Authenticate(c.UserContext(), bearer)
	if err != nil {
		return err
	}
	if !a.Can(policy.SubscribeStockFeeds) {
		return apperror.Forbidden("Anda tidak memiliki akses untuk operasi ini")
	}

	var shop *uuid.UUID
	if policy.ShopScoped(a.Role) {
		if a.ShopID == nil {
			return service.ErrNoShop
		}
		shop = a.ShopID
	} else if shop, err = queryUUID(c, "shopId"); err != nil {
		return err
	}
	c.Locals(middleware.ActorKey, a)
	c.Locals(feedShopKey, shop)
	return c.Next()
}

func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		shop, _ := conn.Locals(feedShopKey).(*uuid.UUID)
		h.hub.Serve(conn, shop)
	})
}
