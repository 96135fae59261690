package services

import (
	"errors"
	"time"

	"github.com/kolozjnr/hovertask/models"
	"github.com/kolozjnr/hovertask/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskService owns the task lifecycle: creation, updates, submissions and the
// pending -> approved transition of the task itself. Funds settlement for
// approved submissions lives in SettlementService.
type TaskService struct {
	DB *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db}
}

type CreateTaskInput struct {
	Title            string  `json:"title" validate:"required"`
	Description      string  `json:"description" validate:"required"`
	Status           string  `json:"status" validate:"required,oneof=pending approved rejected"`
	Priority         string  `json:"priority" validate:"required,oneof=high medium low"`
	Category         string  `json:"category" validate:"required,oneof=social_media video_marketing micro_influence promotion telegram"`
	TaskType         int     `json:"task_type" validate:"required"`
	TaskAmount       float64 `json:"task_amount" validate:"min=0"`
	TaskCountTotal   int     `json:"task_count_total" validate:"min=0"`
	Location         *string `json:"location,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	Religion         *string `json:"religion,omitempty"`
	NoOfParticipants *string `json:"no_of_participants,omitempty"`
	SocialMediaURL   *string `json:"social_media_url,omitempty"`
	TypeOfComment    *string `json:"type_of_comment,omitempty"`
	PaymentPerTask   *string `json:"payment_per_task,omitempty"`
	TaskDuration     *string `json:"task_duration,omitempty"`
}

type UpdateTaskInput struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Status         *string  `json:"status,omitempty" validate:"oneof=pending approved rejected"`
	Priority       *string  `json:"priority,omitempty" validate:"oneof=high medium low"`
	TaskAmount     *float64 `json:"task_amount,omitempty"`
	TaskType       *int     `json:"task_type,omitempty"`
	TaskCountTotal *int     `json:"task_count_total,omitempty"`
}

// TaskView is a task plus the fields computed at read time. The outer fields
// shadow the model's JSON keys where the presentation differs.
type TaskView struct {
	models.Task
	Completed            string  `json:"completed"`
	CompletionPercentage float64 `json:"completion_percentage"`
	PostedStatus         string  `json:"posted_status"`
}

func presentTask(t models.Task, now time.Time) TaskView {
	view := TaskView{Task: t}

	if t.TaskCountTotal > 0 {
		done := t.TaskCountTotal - t.TaskCountRemaining
		view.CompletionPercentage = utils.RoundFloat(float64(done)/float64(t.TaskCountTotal)*100, 2)
	}

	if t.Completed {
		view.Completed = "Completed"
	} else {
		view.Completed = "Available"
	}

	if now.Sub(t.CreatedAt) < 12*time.Hour {
		view.PostedStatus = "New Task"
	}

	return view
}

// Create inserts a task owned by the caller. Status is taken as supplied;
// remaining capacity starts at the full total.
func (s *TaskService) Create(ownerID uint, in CreateTaskInput) (*models.Task, error) {
	task := models.Task{
		UserID:             ownerID,
		Title:              in.Title,
		Description:        in.Description,
		Status:             in.Status,
		Priority:           in.Priority,
		Category:           in.Category,
		TaskType:           in.TaskType,
		TaskAmount:         in.TaskAmount,
		TaskCountTotal:     in.TaskCountTotal,
		TaskCountRemaining: in.TaskCountTotal,
		Location:           in.Location,
		Gender:             in.Gender,
		Religion:           in.Religion,
		NoOfParticipants:   in.NoOfParticipants,
		SocialMediaURL:     in.SocialMediaURL,
		TypeOfComment:      in.TypeOfComment,
		PaymentPerTask:     in.PaymentPerTask,
		TaskDuration:       in.TaskDuration,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update. Derived fields are never stored, so no
// recomputation happens here.
func (s *TaskService) Update(id uint, in UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.TaskAmount != nil {
		updates["task_amount"] = *in.TaskAmount
	}
	if in.TaskType != nil {
		updates["task_type"] = *in.TaskType
	}
	if in.TaskCountTotal != nil {
		updates["task_count_total"] = *in.TaskCountTotal
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &task, nil
}

// ListAll returns every task with read-time derived fields.
func (s *TaskService) ListAll() ([]TaskView, error) {
	var tasks []models.Task
	if err := s.DB.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, presentTask(t, now))
	}
	return views, nil
}

func (s *TaskService) Get(id uint) (*TaskView, error) {
	var task models.Task
	if err := s.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := presentTask(task, time.Now())
	return &view, nil
}

// Submit records one user's completion claim. The capacity check, the
// one-submission-per-user check, the decrement and both inserts run in a
// single transaction with the task row locked, so either all of it lands or
// none of it does.
func (s *TaskService) Submit(userID, taskID uint, screenshot, instagramURL *string) (*models.Task, error) {
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.CompletedTask{}).
			Where("user_id = ? AND task_id = ?", userID, task.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySubmitted
		}

		if task.TaskCountRemaining <= 0 {
			return ErrTaskExhausted
		}
		if err := tx.Model(&task).
			Update("task_count_remaining", gorm.Expr("task_count_remaining - 1")).Error; err != nil {
			return err
		}

		sub := models.CompletedTask{
			UserID:       userID,
			TaskID:       task.ID,
			Screenshot:   screenshot,
			InstagramURL: instagramURL,
			Status:       "pending",
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		record := models.FundsRecord{
			UserID:          userID,
			CompletedTaskID: sub.ID,
			Pending:         task.TaskAmount,
			Type:            "task",
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		task.TaskCountRemaining--
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Approve moves a task from pending to approved. Any other starting status
// reports ErrNotFound, matching the task-absent case.
func (s *TaskService) Approve(id uint) (*models.Task, error) {
	res := s.DB.Model(&models.Task{}).
		Where("id = ? AND status = ?", id, "pending").
		Update("status", "approved")
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var task models.Task
	if err := s.DB.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete soft-removes a task.
func (s *TaskService) Delete(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.Delete(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Submission queries, used by the review dashboard.

func (s *TaskService) PendingCount() (int64, error) {
	return s.countSubmissions("pending")
}

func (s *TaskService) CompletedCount() (int64, error) {
	return s.countSubmissions("approved")
}

func (s *TaskService) RejectedCount() (int64, error) {
	return s.countSubmissions("rejected")
}

func (s *TaskService) countSubmissions(status string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.CompletedTask{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// History returns every submission with its task.
func (s *TaskService) History() ([]models.CompletedTask, error) {
	var subs []models.CompletedTask
	if err := s.DB.Preload("Task").Order("id DESC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
