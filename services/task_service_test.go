package services

import (
	"testing"

	"github.com/kolozjnr/hovertask/models"
	"github.com/kolozjnr/hovertask/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskStartsWithFullCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	assert.Equal(t, uint(1), task.UserID)
	assert.Equal(t, 5, task.TaskCountTotal)
	assert.Equal(t, 5, task.TaskCountRemaining)
	assert.Equal(t, "pending", task.Status)
}

func TestSubmitDecrementsAndRecordsFunds(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	shot := "https://cdn.example.com/tasks/a.png"
	after, err := svc.Submit(2, task.ID, &shot, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, after.TaskCountRemaining)

	sub := submissionFor(t, db, 2, task.ID)
	assert.Equal(t, "pending", sub.Status)
	require.NotNil(t, sub.Screenshot)
	assert.Equal(t, shot, *sub.Screenshot)

	var record models.FundsRecord
	require.NoError(t, db.Where("completed_task_id = ?", sub.ID).First(&record).Error)
	assert.Equal(t, uint(2), record.UserID)
	assert.Equal(t, 50.0, record.Pending)
	assert.Equal(t, 0.0, record.Earned)
	assert.Equal(t, "task", record.Type)
}

func TestSubmitTwiceSameUserConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	_, err = svc.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)

	_, err = svc.Submit(2, task.ID, nil, nil)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	// nothing from the second attempt landed
	var fresh models.Task
	require.NoError(t, db.First(&fresh, task.ID).Error)
	assert.Equal(t, 4, fresh.TaskCountRemaining)

	var subs int64
	require.NoError(t, db.Model(&models.CompletedTask{}).Where("task_id = ?", task.ID).Count(&subs).Error)
	assert.EqualValues(t, 1, subs)
}

func TestSubmitExhaustedTask(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 1))
	require.NoError(t, err)

	_, err = svc.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)

	_, err = svc.Submit(3, task.ID, nil, nil)
	assert.ErrorIs(t, err, ErrTaskExhausted)

	var fresh models.Task
	require.NoError(t, db.First(&fresh, task.ID).Error)
	assert.Equal(t, 0, fresh.TaskCountRemaining)

	var records int64
	require.NoError(t, db.Model(&models.FundsRecord{}).Where("user_id = ?", 3).Count(&records).Error)
	assert.EqualValues(t, 0, records)
}

func TestSubmitUnknownTask(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	_, err := svc.Submit(2, 999, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveTaskOnlyFromPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	approved, err := svc.Approve(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	_, err = svc.Approve(task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	title := "New title"
	_, err = svc.Update(task.ID, UpdateTaskInput{Title: &title})
	require.NoError(t, err)

	var fresh models.Task
	require.NoError(t, db.First(&fresh, task.ID).Error)
	assert.Equal(t, "New title", fresh.Title)
	assert.Equal(t, task.Description, fresh.Description)
	assert.Equal(t, task.Priority, fresh.Priority)

	_, err = svc.Update(999, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTaskIsSoft(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	_, err = svc.Delete(task.ID)
	require.NoError(t, err)

	_, err = svc.Get(task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var total int64
	require.NoError(t, db.Unscoped().Model(&models.Task{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)

	_, err = svc.Delete(task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTaskDerivedFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)

	task, err := svc.Create(1, seedTaskInput(50, 4))
	require.NoError(t, err)

	_, err = svc.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)

	view, err := svc.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, view.CompletionPercentage)
	assert.Equal(t, "Available", view.Completed)
	assert.Equal(t, "New Task", view.PostedStatus)
}

func TestSubmissionCountsAndHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db)
	settlement := NewSettlementService(db)

	task, err := svc.Create(1, seedTaskInput(50, 5))
	require.NoError(t, err)

	_, err = svc.Submit(2, task.ID, nil, utils.PtrString("https://instagram.com/p/x"))
	require.NoError(t, err)
	_, err = svc.Submit(3, task.ID, nil, nil)
	require.NoError(t, err)

	sub := submissionFor(t, db, 2, task.ID)
	_, err = settlement.ApproveSubmission(sub.ID)
	require.NoError(t, err)

	pending, err := svc.PendingCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	completed, err := svc.CompletedCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, completed)

	rejected, err := svc.RejectedCount()
	require.NoError(t, err)
	assert.EqualValues(t, 0, rejected)

	history, err := svc.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[0].Task)
	assert.Equal(t, task.ID, history[0].Task.ID)
}
