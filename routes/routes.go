package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	controller "collabhub/controllers"
	"collabhub/middleware"
)

func SetupRoutes(app *fiber.App) {
	routeLogger := log.New(os.Stdout, "ROUTES: ", log.Ldate|log.Ltime|log.Lshortfile)

	requestLog := logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})

	// Public auth endpoints (no authentication required)
	auth := app.Group("/auth/api", requestLog)
	auth.Post("/signup", controller.Signup)
	auth.Post("/login", middleware.LoginRateLimiter(), controller.Login)

	// Team management
	team := app.Group("/team/api", requestLog, middleware.Protected())
	team.Post("/createTeam", controller.CreateTeam)
	team.Get("/user/teams", controller.ListUserTeams)
	team.Get("/allUsersInTeam/:teamId", controller.ListTeamMembers)
	team.Get("/teams/:teamId", controller.GetTeam)
	team.Put("/teams/:teamId", controller.UpdateTeam)
	team.Delete("/teams/:teamId", controller.DeleteTeam)
	team.Post("/teams/:teamId/add-members", controller.AddTeamMembers)
	team.Delete("/teams/:teamId/remove-member", controller.RemoveTeamMember)
	team.Put("/teams/:teamId/update-role", controller.UpdateTeamMemberRole)

	// Tasks, subtasks and task comments
	tasks := app.Group("/tasks/api", requestLog, middleware.Protected())
	tasks.Post("/createTask", controller.CreateTask)
	tasks.Get("/alltasks/:teamId", controller.ListTasks)
	tasks.Get("/task/:taskId", controller.GetTask)
	tasks.Put("/updateTask/:taskId", controller.UpdateTask)
	tasks.Delete("/deleteTask/:taskId", controller.DeleteTask)
	tasks.Post("/assignUserToTask", controller.AssignUserToTask)
	tasks.Put("/updateUserToTask", controller.ReassignUserToTask)
	tasks.Post("/addTaskcomment", controller.AddTaskComment)
	tasks.Put("/updateTaskComment", controller.UpdateTaskComment)
	tasks.Delete("/deleteTaskComment", controller.DeleteTaskComment)
	tasks.Get("/allTaskcomments/:taskId", controller.ListTaskComments)

	// Team discussions
	discussion := app.Group("/discussion/api", requestLog, middleware.Protected())
	discussion.Post("/postDiscussion", controller.PostDiscussion)
	discussion.Put("/updateDiscussion", controller.UpdateDiscussion)
	discussion.Delete("/deleteDiscussion", controller.DeleteDiscussion)
	discussion.Get("/allDiscussions/:teamId", controller.ListDiscussions)

	// Team files
	files := app.Group("/files/api", requestLog, middleware.Protected())
	files.Post("/uploadFile/:teamId", controller.UploadFile)
	files.Get("/allFiles/:teamId", controller.ListFiles)
	files.Get("/downloadFile/:fileId", controller.DownloadFile)
	files.Delete("/deleteFiles/:fileId", controller.DeleteFile)

	// Notification inbox
	notifications := app.Group("/notifications/api", requestLog, middleware.Protected())
	notifications.Get("/allnotifications", controller.ListNotifications)
	notifications.Put("/markRead/:notificationId", controller.MarkNotificationRead)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "running"})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})

	routeLogger.Println("Routes initialized successfully")
}
