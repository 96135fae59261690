package services

import (
	"testing"

	"github.com/kolozjnr/hovertask/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveSubmissionSettlesAllEffects(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskService(db)
	settlement := NewSettlementService(db)

	task, err := tasks.Create(1, seedTaskInput(75, 5))
	require.NoError(t, err)
	_, err = tasks.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)
	sub := submissionFor(t, db, 2, task.ID)

	approved, err := settlement.ApproveSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	assert.Equal(t, 75.0, walletBalance(t, db, 2))

	var record models.FundsRecord
	require.NoError(t, db.Where("completed_task_id = ?", sub.ID).First(&record).Error)
	assert.Equal(t, 0.0, record.Pending)
	assert.Equal(t, 75.0, record.Earned)
}

func TestApproveSubmissionNeverDoubleCredits(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskService(db)
	settlement := NewSettlementService(db)

	task, err := tasks.Create(1, seedTaskInput(75, 5))
	require.NoError(t, err)
	_, err = tasks.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)
	sub := submissionFor(t, db, 2, task.ID)

	_, err = settlement.ApproveSubmission(sub.ID)
	require.NoError(t, err)

	_, err = settlement.ApproveSubmission(sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 75.0, walletBalance(t, db, 2))
}

func TestApproveSubmissionMissing(t *testing.T) {
	db := newTestDB(t)
	settlement := NewSettlementService(db)

	_, err := settlement.ApproveSubmission(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveSubmissionAfterTaskDeleted(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskService(db)
	settlement := NewSettlementService(db)

	task, err := tasks.Create(1, seedTaskInput(30, 5))
	require.NoError(t, err)
	_, err = tasks.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)
	sub := submissionFor(t, db, 2, task.ID)

	_, err = tasks.Delete(task.ID)
	require.NoError(t, err)

	// the payout promise survives the task's removal
	_, err = settlement.ApproveSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, walletBalance(t, db, 2))
}

func TestRejectSubmissionReleasesPendingFunds(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskService(db)
	settlement := NewSettlementService(db)

	task, err := tasks.Create(1, seedTaskInput(60, 5))
	require.NoError(t, err)
	_, err = tasks.Submit(2, task.ID, nil, nil)
	require.NoError(t, err)
	sub := submissionFor(t, db, 2, task.ID)

	rejected, err := settlement.RejectSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)

	var record models.FundsRecord
	require.NoError(t, db.Where("completed_task_id = ?", sub.ID).First(&record).Error)
	assert.Equal(t, 0.0, record.Pending)
	assert.Equal(t, 0.0, record.Earned)
	assert.Equal(t, 0.0, walletBalance(t, db, 2))

	// a rejected submission can no longer be approved
	_, err = settlement.ApproveSubmission(sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreditWalletCreatesThenAccumulates(t *testing.T) {
	db := newTestDB(t)
	settlement := NewSettlementService(db)

	require.NoError(t, settlement.CreditWallet(db, 7, 10))
	require.NoError(t, settlement.CreditWallet(db, 7, 15))

	assert.Equal(t, 25.0, walletBalance(t, db, 7))

	var wallets int64
	require.NoError(t, db.Model(&models.Wallet{}).Where("user_id = ?", 7).Count(&wallets).Error)
	assert.EqualValues(t, 1, wallets)
}

func TestReconcilePaidOrder(t *testing.T) {
	db := newTestDB(t)
	settlement := NewSettlementService(db)

	product := models.Product{UserID: 1, Name: "Phone case", Price: 1200, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	order := models.Order{
		UserID: 2,
		Total:  2400,
		Status: "pending",
		Items:  []models.OrderItem{{ProductID: product.ID, Quantity: 2, Price: 1200}},
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.Cart{UserID: 2, ProductID: product.ID, Quantity: 2, Status: "pending"}).Error)

	require.NoError(t, settlement.ReconcilePaidOrder(db, order.ID, 2))

	var fresh models.Order
	require.NoError(t, db.First(&fresh, order.ID).Error)
	assert.Equal(t, "paid", fresh.Status)

	var carts int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", 2).Count(&carts).Error)
	assert.EqualValues(t, 0, carts)

	var stocked models.Product
	require.NoError(t, db.First(&stocked, product.ID).Error)
	assert.Equal(t, 3, stocked.Stock)

	var trending models.TrendingProduct
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&trending).Error)
	assert.EqualValues(t, 2, trending.ViewCount)

	// replaying the reconcile changes nothing
	require.NoError(t, settlement.ReconcilePaidOrder(db, order.ID, 2))
	require.NoError(t, db.First(&stocked, product.ID).Error)
	assert.Equal(t, 3, stocked.Stock)
}

func TestReconcileClampsOversoldStock(t *testing.T) {
	db := newTestDB(t)
	settlement := NewSettlementService(db)

	product := models.Product{UserID: 1, Name: "Sticker pack", Price: 500, Stock: 1}
	require.NoError(t, db.Create(&product).Error)

	order := models.Order{
		UserID: 2,
		Total:  1500,
		Status: "pending",
		Items:  []models.OrderItem{{ProductID: product.ID, Quantity: 3, Price: 500}},
	}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, settlement.ReconcilePaidOrder(db, order.ID, 2))

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 0, fresh.Stock)
}

func TestReconcileUnknownOrderIsNoOp(t *testing.T) {
	db := newTestDB(t)
	settlement := NewSettlementService(db)

	require.NoError(t, settlement.ReconcilePaidOrder(db, 404, 2))
}
