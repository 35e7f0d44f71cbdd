package controller

import (
	"github.com/gofiber/fiber/v2"

	"collabhub/utils"
)

// Storage is the blob backend for team file uploads, set during startup.
var Storage utils.ObjectStorage = utils.NewMemoryStorage()

// actorID returns the authenticated user id placed in the request context
// by the JWT middleware.
func actorID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}
