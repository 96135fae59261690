package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kolozjnr/hovertask/models"
	"github.com/kolozjnr/hovertask/services"
	"github.com/kolozjnr/hovertask/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newController(t *testing.T) (*TaskController, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Task{}, &models.CompletedTask{}, &models.FundsRecord{}, &models.Wallet{},
	))
	return NewTaskController(services.NewTaskService(db), services.NewSettlementService(db), nil), db
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateTaskRequiresAuth(t *testing.T) {
	c, _ := newController(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/create-task", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	c.CreateTask(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTaskValidationErrors(t *testing.T) {
	c, _ := newController(t)

	body := `{"title":"","status":"archived","priority":"high","category":"social_media","task_type":1}`
	req := utils.WithUserID(httptest.NewRequest(http.MethodPost, "/v1/tasks/create-task", strings.NewReader(body)), 1)
	rec := httptest.NewRecorder()
	c.CreateTask(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors, "title")
	assert.Contains(t, resp.Errors, "status")
}

func TestCreateTaskSucceeds(t *testing.T) {
	c, db := newController(t)

	body := `{
		"title":"Repost story","description":"Repost and tag us","status":"pending",
		"priority":"medium","category":"promotion","task_type":2,
		"task_amount":40,"task_count_total":10
	}`
	req := utils.WithUserID(httptest.NewRequest(http.MethodPost, "/v1/tasks/create-task", strings.NewReader(body)), 5)
	rec := httptest.NewRecorder()
	c.CreateTask(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var task models.Task
	require.NoError(t, db.Where("user_id = ?", 5).First(&task).Error)
	assert.Equal(t, 10, task.TaskCountRemaining)
}

func TestGetTaskNotFound(t *testing.T) {
	c, _ := newController(t)

	req := utils.WithUserID(httptest.NewRequest(http.MethodGet, "/v1/tasks/show-task/99", nil), 1)
	req = mux.SetURLVars(req, map[string]string{"id": "99"})
	rec := httptest.NewRecorder()
	c.GetTask(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasksEmptyIs404(t *testing.T) {
	c, _ := newController(t)

	req := utils.WithUserID(httptest.NewRequest(http.MethodGet, "/v1/tasks/show-all-task", nil), 1)
	rec := httptest.NewRecorder()
	c.ListTasks(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveTaskTwiceIs404(t *testing.T) {
	c, db := newController(t)

	task := models.Task{UserID: 1, Title: "T", Description: "D", Status: "pending", Priority: "low", Category: "telegram", TaskType: 1}
	require.NoError(t, db.Create(&task).Error)

	vars := map[string]string{"id": fmt.Sprintf("%d", task.ID)}

	req := mux.SetURLVars(utils.WithUserID(httptest.NewRequest(http.MethodPost, "/v1/tasks/approve-task/1", nil), 1), vars)
	rec := httptest.NewRecorder()
	c.ApproveTask(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = mux.SetURLVars(utils.WithUserID(httptest.NewRequest(http.MethodPost, "/v1/tasks/approve-task/1", nil), 1), vars)
	rec = httptest.NewRecorder()
	c.ApproveTask(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitTaskRequiresScreenshot(t *testing.T) {
	c, db := newController(t)

	task := models.Task{UserID: 1, Title: "T", Description: "D", Status: "approved", Priority: "low", Category: "telegram", TaskType: 1, TaskCountTotal: 3, TaskCountRemaining: 3}
	require.NoError(t, db.Create(&task).Error)

	req := utils.WithUserID(httptest.NewRequest(http.MethodPost, "/v1/tasks/submit-task/1", strings.NewReader("not multipart")), 2)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", task.ID)})
	rec := httptest.NewRecorder()
	c.SubmitTask(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Errors, "screenshot")
}
