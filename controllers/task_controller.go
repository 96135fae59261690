package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kolozjnr/hovertask/services"
	"github.com/kolozjnr/hovertask/utils"

	"github.com/gorilla/mux"
)

const maxScreenshotBytes = 2 << 20 // 2 MiB

// FileStore stores uploaded objects and returns durable URLs.
type FileStore interface {
	Upload(ctx context.Context, objectName string, file io.Reader, size int64) (string, error)
	Delete(ctx context.Context, objectName string) error
}

type TaskController struct {
	Tasks      *services.TaskService
	Settlement *services.SettlementService
	Files      FileStore
}

func NewTaskController(tasks *services.TaskService, settlement *services.SettlementService, files FileStore) *TaskController {
	return &TaskController{Tasks: tasks, Settlement: settlement, Files: files}
}

// POST /v1/tasks/create-task
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var in services.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}
	if errs, err := utils.ValidateStruct(&in); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	} else if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	task, err := c.Tasks.Create(uid, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created successfully", Data: task})
}

// POST /v1/tasks/update-task/{id}
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in services.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}
	if errs, _ := utils.ValidateStruct(&in); len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	task, err := c.Tasks.Update(id, in)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated successfully", Data: task})
}

// GET /v1/tasks/show-all-task
func (c *TaskController) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Tasks.ListAll()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(tasks) == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "No Available Tasks found at the moment"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task retrieved successfully", Data: tasks})
}

// GET /v1/tasks/show-task/{id}
func (c *TaskController) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := c.Tasks.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task retrieved successfully", Data: task})
}

// POST /v1/tasks/submit-task/{id} (multipart: screenshot, optional instagram_url)
func (c *TaskController) SubmitTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxScreenshotBytes + 1<<20); err != nil {
		utils.WriteValidationErrors(w, map[string]string{"screenshot": "The screenshot field is required"})
		return
	}
	file, header, err := r.FormFile("screenshot")
	if err != nil {
		utils.WriteValidationErrors(w, map[string]string{"screenshot": "The screenshot field is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		utils.WriteValidationErrors(w, map[string]string{"screenshot": "The screenshot must be a jpg, jpeg or png image"})
		return
	}
	if header.Size > maxScreenshotBytes {
		utils.WriteValidationErrors(w, map[string]string{"screenshot": "The screenshot may not be greater than 2MB"})
		return
	}

	objectName := fmt.Sprintf("tasks/%s%s", utils.GenerateReference(uid), ext)
	screenshotURL, err := c.Files.Upload(r.Context(), objectName, file, header.Size)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store screenshot"})
		return
	}

	instagramURL := strings.TrimSpace(r.FormValue("instagram_url"))

	task, err := c.Tasks.Submit(uid, id, &screenshotURL, utils.PtrString(instagramURL))
	if err != nil {
		// The submission never landed, so the screenshot is orphaned.
		if derr := c.Files.Delete(r.Context(), objectName); derr != nil {
			log.Printf("[tasks] orphaned screenshot %s not deleted: %v", objectName, derr)
		}
		switch {
		case errors.Is(err, services.ErrAlreadySubmitted):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You have already submitted this task"})
		case errors.Is(err, services.ErrTaskExhausted):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Task is not available"})
		case errors.Is(err, services.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		default:
			writeServiceError(w, err)
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task submitted successfully, kindly wait for approval", Data: task})
}

// POST /v1/tasks/approve-task/{id}
func (c *TaskController) ApproveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := c.Tasks.Approve(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found or already approved"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task approved successfully", Data: task})
}

// POST /v1/tasks/approve-completed-task/{id}
func (c *TaskController) ApproveCompletedTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sub, err := c.Settlement.ApproveSubmission(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found or already approved"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task approved successfully", Data: sub})
}

// POST /v1/tasks/reject-completed-task/{id}
func (c *TaskController) RejectCompletedTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sub, err := c.Settlement.RejectSubmission(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found or already reviewed"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task rejected", Data: sub})
}

// DELETE /v1/tasks/delete-task/{id}
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := c.Tasks.Delete(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted successfully", Data: task})
}

// GET /v1/tasks/pending-task
func (c *TaskController) PendingTasks(w http.ResponseWriter, r *http.Request) {
	c.writeCount(w, c.Tasks.PendingCount, "No Pending Tasks found at the moment")
}

// GET /v1/tasks/completed-task
func (c *TaskController) CompletedTasks(w http.ResponseWriter, r *http.Request) {
	c.writeCount(w, c.Tasks.CompletedCount, "No Completed Tasks found at the moment")
}

// GET /v1/tasks/rejected-task
func (c *TaskController) RejectedTasks(w http.ResponseWriter, r *http.Request) {
	c.writeCount(w, c.Tasks.RejectedCount, "No Rejected Tasks found at the moment")
}

// GET /v1/tasks/task-history
func (c *TaskController) TaskHistory(w http.ResponseWriter, r *http.Request) {
	subs, err := c.Tasks.History()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(subs) == 0 {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: false, Message: "No Task History found at the moment"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task retrieved successfully", Data: subs})
}

func (c *TaskController) writeCount(w http.ResponseWriter, count func() (int64, error), emptyMsg string) {
	n, err := count()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if n == 0 {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: false, Message: emptyMsg})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task retrieved successfully", Data: n})
}

// pathID parses the {id} route variable, answering 404 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		return 0, false
	}
	return uint(id), true
}
