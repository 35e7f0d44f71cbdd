package controller

import (
	"github.com/gofiber/fiber/v2"

	"collabhub/config"
	"collabhub/store"
	"collabhub/utils"
)

func ListNotifications(c *fiber.Ctx) error {
	notifications, err := store.NewNotificationStore(config.DB).ListForUser(actorID(c))
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

func MarkNotificationRead(c *fiber.Ctx) error {
	notificationID := utils.ParseUint(c.Params("notificationId"))
	if notificationID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid notification id")
	}

	if err := store.NewNotificationStore(config.DB).MarkRead(actorID(c), notificationID); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
