package controller

import (
	"github.com/gofiber/fiber/v2"

	"collabhub/config"
	"collabhub/store"
	"collabhub/utils"
)

type AddCommentRequest struct {
	TaskID  uint   `json:"taskId" validate:"required"`
	Content string `json:"content" validate:"required,max=2000"`
}

type UpdateCommentRequest struct {
	TaskID    uint   `json:"taskId" validate:"required"`
	CommentID uint   `json:"commentId" validate:"required"`
	Content   string `json:"content" validate:"required,max=2000"`
}

type DeleteCommentRequest struct {
	TaskID    uint `json:"taskId" validate:"required"`
	CommentID uint `json:"commentId" validate:"required"`
}

func AddTaskComment(c *fiber.Ctx) error {
	var req AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	comment, err := store.NewCommentStore(config.DB).Add(actorID(c), req.TaskID, req.Content)
	if err != nil {
		return utils.StoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func UpdateTaskComment(c *fiber.Ctx) error {
	var req UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewCommentStore(config.DB).Update(actorID(c), req.TaskID, req.CommentID, req.Content); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment updated successfully"})
}

func DeleteTaskComment(c *fiber.Ctx) error {
	var req DeleteCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewCommentStore(config.DB).Delete(actorID(c), req.TaskID, req.CommentID); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}

func ListTaskComments(c *fiber.Ctx) error {
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id")
	}

	comments, err := store.NewCommentStore(config.DB).ListForTask(actorID(c), taskID)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}
