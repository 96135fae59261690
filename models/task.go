package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	Title            string         `gorm:"type:varchar(191);not null" json:"title"`
	Description      string         `gorm:"type:text;not null" json:"description"`
	Location         *string        `gorm:"type:varchar(100)" json:"location,omitempty"`
	Gender           *string        `gorm:"type:varchar(20)" json:"gender,omitempty"`
	Religion         *string        `gorm:"type:varchar(50)" json:"religion,omitempty"`
	NoOfParticipants *string        `gorm:"type:varchar(50)" json:"no_of_participants,omitempty"`
	SocialMediaURL   *string        `gorm:"type:text" json:"social_media_url,omitempty"`
	TypeOfComment    *string        `gorm:"type:varchar(100)" json:"type_of_comment,omitempty"`
	PaymentPerTask   *string        `gorm:"type:varchar(50)" json:"payment_per_task,omitempty"`
	TaskDuration     *string        `gorm:"type:varchar(50)" json:"task_duration,omitempty"`
	TaskType         int            `gorm:"not null" json:"task_type"`
	TaskAmount       float64        `gorm:"type:decimal(15,2);not null;default:0.00" json:"task_amount"`
	TaskCountTotal   int            `gorm:"not null;default:0" json:"task_count_total"`
	// Never negative; decremented once per accepted submission.
	TaskCountRemaining int            `gorm:"not null;default:0" json:"task_count_remaining"`
	Status             string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority           string         `gorm:"type:varchar(10);not null" json:"priority"`
	Category           string         `gorm:"type:varchar(50);not null" json:"category"`
	Completed          bool           `gorm:"not null;default:false" json:"completed"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// CompletedTask is one user's submission against a task, pending review.
// A user may submit a given task at most once.
type CompletedTask struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_user_task" json:"user_id"`
	TaskID       uint      `gorm:"not null;uniqueIndex:idx_user_task" json:"task_id"`
	Task         *Task     `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Screenshot   *string   `gorm:"type:text" json:"screenshot,omitempty"`
	InstagramURL *string   `gorm:"type:text" json:"instagram_url,omitempty"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (CompletedTask) TableName() string {
	return "completed_tasks"
}
