package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"collabhub/config"
	controller "collabhub/controllers"
	"collabhub/routes"
	"collabhub/utils"
)

// newTestApp wires the full HTTP surface against an in-memory database and
// an in-memory object store.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.MigrateDB(db))

	config.DB = db
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.MaxUploadMB = 25
	controller.Storage = utils.NewMemoryStorage()

	app := fiber.New()
	routes.SetupRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func signupAndLogin(t *testing.T, app *fiber.App, firstName, email string) string {
	t.Helper()

	status, _ := doJSON(t, app, http.MethodPost, "/auth/api/signup", "", fiber.Map{
		"firstname": firstName,
		"lastname":  "Tester",
		"email":     email,
		"password":  "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/auth/api/login", "", fiber.Map{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/auth/api/signup", "", fiber.Map{
		"firstname": "Alice",
		"lastname":  "Tester",
		"email":     "alice@example.com",
		"password":  "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status)

	// Duplicate email
	status, _ = doJSON(t, app, http.MethodPost, "/auth/api/signup", "", fiber.Map{
		"firstname": "Alice",
		"lastname":  "Again",
		"email":     "alice@example.com",
		"password":  "s3cret-pass",
	})
	require.Equal(t, http.StatusConflict, status)

	// Short password rejected before touching the database.
	status, _ = doJSON(t, app, http.MethodPost, "/auth/api/signup", "", fiber.Map{
		"firstname": "Bob",
		"lastname":  "Tester",
		"email":     "bob@example.com",
		"password":  "short",
	})
	require.Equal(t, http.StatusBadRequest, status)

	// Wrong password and unknown email produce the same answer.
	status, body := doJSON(t, app, http.MethodPost, "/auth/api/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid email or password", body["error"])

	status, body = doJSON(t, app, http.MethodPost, "/auth/api/login", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid email or password", body["error"])

	// Protected routes refuse missing and garbage tokens.
	status, _ = doJSON(t, app, http.MethodGet, "/team/api/user/teams", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = doJSON(t, app, http.MethodGet, "/team/api/user/teams", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	token := signupAndLoginExisting(t, app, "alice@example.com")
	status, _ = doJSON(t, app, http.MethodGet, "/team/api/user/teams", token, nil)
	require.Equal(t, http.StatusOK, status)
}

func signupAndLoginExisting(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/auth/api/login", "", fiber.Map{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestTeamTaskScenario(t *testing.T) {
	app := newTestApp(t)
	aliceToken := signupAndLogin(t, app, "Alice", "alice@example.com")
	bobToken := signupAndLogin(t, app, "Bob", "bob@example.com")

	// Alice creates team Eng and becomes its admin.
	status, body := doJSON(t, app, http.MethodPost, "/team/api/createTeam", aliceToken, fiber.Map{
		"team_name": "Eng",
	})
	require.Equal(t, http.StatusCreated, status)
	team := body["team"].(map[string]interface{})
	teamID := uint(team["team_id"].(float64))
	require.Equal(t, "admin", team["role"])

	// Bob joins by email.
	status, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/team/api/teams/%d/add-members", teamID), aliceToken, fiber.Map{
			"emails": []string{"bob@example.com"},
		})
	require.Equal(t, http.StatusOK, status)

	// Task Spec with a due date, then subtask Draft under it.
	status, body = doJSON(t, app, http.MethodPost, "/tasks/api/createTask", aliceToken, fiber.Map{
		"task_name": "Spec",
		"due_date":  "2025-01-10",
		"team_id":   teamID,
	})
	require.Equal(t, http.StatusCreated, status)
	specID := uint(body["task"].(map[string]interface{})["task_id"].(float64))

	status, body = doJSON(t, app, http.MethodPost, "/tasks/api/createTask", aliceToken, fiber.Map{
		"task_name":      "Draft",
		"team_id":        teamID,
		"parent_task_id": specID,
	})
	require.Equal(t, http.StatusCreated, status)
	draftID := uint(body["task"].(map[string]interface{})["task_id"].(float64))

	// Assign Bob to Draft.
	status, body = doJSON(t, app, http.MethodGet, "/team/api/user/teams", bobToken, nil)
	require.Equal(t, http.StatusOK, status)

	var bobID uint
	status, body = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/team/api/allUsersInTeam/%d", teamID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	for _, m := range body["members"].([]interface{}) {
		member := m.(map[string]interface{})
		if member["email"] == "bob@example.com" {
			bobID = uint(member["user_id"].(float64))
		}
	}
	require.NotZero(t, bobID)

	status, _ = doJSON(t, app, http.MethodPost, "/tasks/api/assignUserToTask", aliceToken, fiber.Map{
		"taskId":            draftID,
		"user_id_to_assign": bobID,
	})
	require.Equal(t, http.StatusOK, status)

	// Assigning again is a conflict; reassignment is the replace operation.
	status, _ = doJSON(t, app, http.MethodPost, "/tasks/api/assignUserToTask", aliceToken, fiber.Map{
		"taskId":            draftID,
		"user_id_to_assign": bobID,
	})
	require.Equal(t, http.StatusConflict, status)

	// Spec detail shows one subtask Draft, assigned to Bob, status open.
	status, body = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/tasks/api/task/%d", specID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	subtasks := body["subtasks"].([]interface{})
	require.Len(t, subtasks, 1)
	draft := subtasks[0].(map[string]interface{})
	require.Equal(t, "Draft", draft["task_name"])
	require.Equal(t, "open", draft["status"])
	require.Equal(t, "bob@example.com", draft["assignee"].(map[string]interface{})["email"])

	// A user outside the team gets 403 on every team-scoped call.
	eveToken := signupAndLogin(t, app, "Eve", "eve@example.com")
	status, _ = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/tasks/api/alltasks/%d", teamID), eveToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/tasks/api/task/%d", specID), eveToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	// Deleting Spec takes Draft with it.
	status, _ = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/tasks/api/deleteTask/%d", specID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/tasks/api/task/%d", draftID), aliceToken, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestFileLifecycle(t *testing.T) {
	app := newTestApp(t)
	aliceToken := signupAndLogin(t, app, "Alice", "alice@example.com")
	bobToken := signupAndLogin(t, app, "Bob", "bob@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/team/api/createTeam", aliceToken, fiber.Map{
		"team_name": "Eng",
	})
	require.Equal(t, http.StatusCreated, status)
	teamID := uint(body["team"].(map[string]interface{})["team_id"].(float64))

	status, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/team/api/teams/%d/add-members", teamID), aliceToken, fiber.Map{
			"emails": []string{"bob@example.com"},
		})
	require.Equal(t, http.StatusOK, status)

	upload := func(token, filename string) (int, map[string]interface{}) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("file body"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/files/api/uploadFile/%d", teamID), &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		var decoded map[string]interface{}
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &decoded))
		}
		return resp.StatusCode, decoded
	}

	// Disallowed extension.
	status, _ = upload(bobToken, "script.sh")
	require.Equal(t, http.StatusBadRequest, status)

	status, body = upload(bobToken, "report.pdf")
	require.Equal(t, http.StatusCreated, status)
	fileID := uint(body["file"].(map[string]interface{})["file_id"].(float64))

	// The other member was notified about the upload.
	status, body = doJSON(t, app, http.MethodGet, "/notifications/api/allnotifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	notifications := body["notifications"].([]interface{})
	require.Len(t, notifications, 1)
	first := notifications[0].(map[string]interface{})
	require.Equal(t, "file_upload", first["notification_type"])
	require.Equal(t, false, first["read_status"])
	notificationID := uint(first["notification_id"].(float64))

	status, _ = doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/notifications/api/markRead/%d", notificationID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	// Download streams the stored bytes back with a disposition header.
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/files/api/downloadFile/%d", fileID), nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "report.pdf")
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "file body", string(content))

	// Only admins delete files.
	status, _ = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/files/api/deleteFiles/%d", fileID), bobToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/files/api/deleteFiles/%d", fileID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/files/api/allFiles/%d", teamID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, body["files"])
}
