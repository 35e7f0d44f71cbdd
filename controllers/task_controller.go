package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"collabhub/config"
	"collabhub/store"
	"collabhub/utils"
)

type CreateTaskRequest struct {
	TaskName        string `json:"task_name" validate:"required,max=255"`
	TaskDescription string `json:"task_description" validate:"omitempty,max=2000"`
	DueDate         string `json:"due_date" validate:"omitempty"`
	TeamID          uint   `json:"team_id" validate:"required"`
	ParentTaskID    *uint  `json:"parent_task_id"`
}

type UpdateTaskRequest struct {
	TaskName        *string `json:"task_name"`
	TaskDescription *string `json:"task_description"`
	DueDate         *string `json:"due_date"`
	Status          *string `json:"status" validate:"omitempty,oneof=open in-progress completed"`
}

type AssignTaskRequest struct {
	TaskID         uint `json:"taskId" validate:"required"`
	UserIDToAssign uint `json:"user_id_to_assign" validate:"required"`
}

// parseDueDate accepts either a bare date or a full RFC 3339 timestamp.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due date")
	}

	task, err := store.NewTaskStore(config.DB).Create(actorID(c), store.CreateTaskInput{
		Name:         req.TaskName,
		Description:  req.TaskDescription,
		DueDate:      dueDate,
		TeamID:       req.TeamID,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		return utils.StoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"task":    task,
	})
}

func ListTasks(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}
	topLevelOnly := c.Query("topLevelOnly") == "true"

	tasks, err := store.NewTaskStore(config.DB).List(actorID(c), teamID, topLevelOnly)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func GetTask(c *fiber.Ctx) error {
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id")
	}

	task, err := store.NewTaskStore(config.DB).Detail(actorID(c), taskID)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(task)
}

func UpdateTask(c *fiber.Ctx) error {
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id")
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	in := store.UpdateTaskInput{
		Name:        req.TaskName,
		Description: req.TaskDescription,
		Status:      req.Status,
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due date")
		}
		in.DueDate = dueDate
	}

	if err := store.NewTaskStore(config.DB).Update(actorID(c), taskID, in); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task updated successfully"})
}

func DeleteTask(c *fiber.Ctx) error {
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id")
	}

	if err := store.NewTaskStore(config.DB).Delete(actorID(c), taskID); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

func AssignUserToTask(c *fiber.Ctx) error {
	var req AssignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewTaskStore(config.DB).Assign(actorID(c), req.TaskID, req.UserIDToAssign); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User assigned successfully"})
}

func ReassignUserToTask(c *fiber.Ctx) error {
	var req AssignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewTaskStore(config.DB).Reassign(actorID(c), req.TaskID, req.UserIDToAssign); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User reassigned successfully"})
}
