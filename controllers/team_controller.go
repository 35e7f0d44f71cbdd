package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"collabhub/config"
	"collabhub/store"
	"collabhub/utils"
)

type CreateTeamRequest struct {
	TeamName        string `json:"team_name" validate:"required,max=255"`
	TeamDescription string `json:"team_description" validate:"omitempty,max=1000"`
}

type UpdateTeamRequest struct {
	TeamName        string `json:"team_name" validate:"required,max=255"`
	TeamDescription string `json:"team_description" validate:"omitempty,max=1000"`
}

type AddMembersRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
}

type RemoveMemberRequest struct {
	UserID uint `json:"userId" validate:"required"`
}

type UpdateRoleRequest struct {
	UserID uint   `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=member admin"`
}

func CreateTeam(c *fiber.Ctx) error {
	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	team, err := store.NewTeamStore(config.DB).Create(actorID(c), req.TeamName, req.TeamDescription)
	if err != nil {
		return utils.StoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Team created successfully",
		"team":    team,
	})
}

func ListUserTeams(c *fiber.Ctx) error {
	teams, err := store.NewTeamStore(config.DB).ListForUser(actorID(c))
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"teams": teams})
}

func GetTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	team, err := store.NewTeamStore(config.DB).Get(actorID(c), teamID)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(team)
}

func ListTeamMembers(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	members, err := store.NewTeamStore(config.DB).ListMembers(actorID(c), teamID)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

func UpdateTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewTeamStore(config.DB).Update(actorID(c), teamID, req.TeamName, req.TeamDescription); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Team updated successfully"})
}

func AddTeamMembers(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	var req AddMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	members, err := store.NewTeamStore(config.DB).AddMembersByEmail(actorID(c), teamID, req.Emails)
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Members added successfully",
		"members": members,
	})
}

func RemoveTeamMember(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	var req RemoveMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewTeamStore(config.DB).RemoveMember(actorID(c), teamID, req.UserID); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed successfully"})
}

func UpdateTeamMemberRole(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := store.NewTeamStore(config.DB).UpdateRole(actorID(c), teamID, req.UserID, req.Role); err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated successfully"})
}

func DeleteTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	files, err := store.NewTeamStore(config.DB).Delete(actorID(c), teamID)
	if err != nil {
		return utils.StoreError(c, err)
	}

	// Blob cleanup is best-effort; the rows are already gone.
	for _, f := range files {
		if err := Storage.Delete(context.Background(), f.ObjectKey); err != nil {
			logrus.WithError(err).WithField("object_key", f.ObjectKey).Warn("failed to delete stored object")
		}
	}

	return c.JSON(fiber.Map{"message": "Team deleted successfully"})
}
