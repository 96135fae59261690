package services

import (
	"errors"
	"log"

	"github.com/kolozjnr/hovertask/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementService is the only code that credits wallets. It converts a
// pending FundsRecord into earned balance when a submission is approved, and
// reconciles order/stock/cart state when a payment verification reports an
// order id.
type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// ApproveSubmission settles one pending submission: marks it approved, credits
// the submitter's wallet with the task payout and resolves the funds record.
// All four effects commit together. A submission that is absent or no longer
// pending reports ErrNotFound, so a retried approval can never double-credit.
func (s *SettlementService) ApproveSubmission(id uint) (*models.CompletedTask, error) {
	var sub models.CompletedTask
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", id, "pending").
			First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// The task may have been soft-deleted since submission; the payout
		// promise still stands.
		var task models.Task
		if err := tx.Unscoped().First(&task, sub.TaskID).Error; err != nil {
			return err
		}

		if err := tx.Model(&sub).Update("status", "approved").Error; err != nil {
			return err
		}

		if err := s.CreditWallet(tx, sub.UserID, task.TaskAmount); err != nil {
			return err
		}

		return tx.Model(&models.FundsRecord{}).
			Where("completed_task_id = ?", sub.ID).
			Updates(map[string]interface{}{"pending": 0, "earned": task.TaskAmount}).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// RejectSubmission turns down a pending submission and releases its pending
// funds. The capacity slot is not returned to the task; the original promise
// was consumed by the submission attempt.
func (s *SettlementService) RejectSubmission(id uint) (*models.CompletedTask, error) {
	var sub models.CompletedTask
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", id, "pending").
			First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&sub).Update("status", "rejected").Error; err != nil {
			return err
		}

		return tx.Model(&models.FundsRecord{}).
			Where("completed_task_id = ?", sub.ID).
			Update("pending", 0).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreditWallet increments a user's balance inside the caller's transaction,
// creating the wallet with balance 0 on first use.
func (s *SettlementService) CreditWallet(tx *gorm.DB, userID uint, amount float64) error {
	var wallet models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		wallet = models.Wallet{UserID: userID, Balance: 0}
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
	}
	return tx.Model(&wallet).Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// ReconcilePaidOrder completes an order after a verified payment: order goes
// paid, the buyer's pending cart rows are cleared, stock is decremented per
// item and trending counters are bumped. Runs inside the caller's transaction
// and is a no-op for absent or already-paid orders.
func (s *SettlementService) ReconcilePaidOrder(tx *gorm.DB, orderID, userID uint) error {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if order.Status == "paid" {
		return nil
	}

	if err := tx.Model(&order).Update("status", "paid").Error; err != nil {
		return err
	}

	if err := tx.Where("user_id = ? AND status = ?", userID, "pending").
		Delete(&models.Cart{}).Error; err != nil {
		return err
	}

	for _, item := range order.Items {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}

		// Stock never goes negative; an oversold item is clamped and logged
		// for manual follow-up.
		newStock := product.Stock - item.Quantity
		if newStock < 0 {
			log.Printf("[settlement] order %d oversold product %d by %d, stock clamped to 0",
				order.ID, product.ID, -newStock)
			newStock = 0
		}
		if err := tx.Model(&product).Update("stock", newStock).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"view_count": gorm.Expr("view_count + ?", item.Quantity)}),
		}).Create(&models.TrendingProduct{ProductID: product.ID, ViewCount: int64(item.Quantity)}).Error; err != nil {
			return err
		}
	}

	return nil
}
