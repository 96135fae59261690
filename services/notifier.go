package services

import (
	"fmt"
	"log"

	"github.com/kolozjnr/hovertask/models"

	"gorm.io/gorm"
)

// WalletNotifier persists funded-wallet notices. Delivery failures are logged
// and never propagated; the settlement outcome must not depend on them.
type WalletNotifier struct {
	DB *gorm.DB
}

func NewWalletNotifier(db *gorm.DB) *WalletNotifier {
	return &WalletNotifier{DB: db}
}

func (n *WalletNotifier) WalletFunded(userID uint, amount float64, currency string) {
	notice := models.Notification{
		UserID:  userID,
		Type:    "wallet_funded",
		Message: fmt.Sprintf("Your wallet has been funded with %s %.2f", currency, amount),
	}
	if err := n.DB.Create(&notice).Error; err != nil {
		log.Printf("[notify] wallet funded notice for user %d failed: %v", userID, err)
	}
}
