package controller

import (
	"github.com/gofiber/fiber/v2"

	"collabhub/config"
	"collabhub/store"
	"collabhub/utils"
)

type PostDiscussionRequest struct {
	TeamID       uint   `json:"teamId" validate:"required"`
	Content      string `json:"content" validate:"required,max=5000"`
	ParentPostID *uint  `json:"parentPostId"`
}

type UpdateDiscussionRequest struct {
	PostID  uint   `json:"postId" validate:"required"`
	Content string `json:"content" validate:"required,max=5000"`
}

type DeleteDiscussionRequest struct {
	PostID uint `json:"postId" validate:"required"`
}

func PostDiscussion(c *fiber.Ctx) error {
	var req PostDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	post, err := store.NewDiscussionStore(config.DB).Post(actorID(c), req.TeamID, req.Content, req.ParentPostID)
	if err != nil {
		return utils.StoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Discussion posted successfully",
		"post":    post,
	})
}

func UpdateDiscussion(c *fiber.Ctx) error {
	var req UpdateDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewDiscussionStore(config.DB).Update(actorID(c), req.PostID, req.Content); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Discussion updated successfully"})
}

func DeleteDiscussion(c *fiber.Ctx) error {
	var req DeleteDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewDiscussionStore(config.DB).Delete(actorID(c), req.PostID); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Discussion deleted successfully"})
}

func ListDiscussions(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	threads, err := store.NewDiscussionStore(config.DB).List(actorID(c), teamID)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"discussions": threads})
}
