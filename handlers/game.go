// handlers/room_routes.go
package handlers

import (
	"club-games-system/game"
	"club-games-system/middleware"
	"club-games-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRoomRoutes(app *fiber.App, reg *game.Registry, identities *services.IdentityService) {
	// 🔓 Public route — no user context, but still behind Gateway auth
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "rooms": reg.Rooms()})
	})

	// 🔐 Secured routes — require user context (userID, roles)
	secured := app.Group("/", middleware.UserContextMiddleware())

	// REST mirror of the lobby directory, for club pages that embed a
	// room list without holding a socket open.
	secured.Get("/rooms", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		id, err := identities.Resolve(userID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unknown or banned user"})
		}

		gt := game.GameType(c.Query("game_type"))
		if gt != "" && !gt.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown game type"})
		}
		scope := c.Query("scope", game.ScopePublic)
		if !id.MemberOf(scope) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a member of this club"})
		}

		return c.JSON(fiber.Map{"rooms": reg.ListOpenRooms(gt, scope)})
	})
}
