package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/kolozjnr/hovertask/models"
	"github.com/kolozjnr/hovertask/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultMinAmount = 100

// PaymentGateway is the external hosted-payment collaborator.
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amount float64, metadata utils.PaystackMetadata) (*utils.PaystackInitializeData, error)
	Verify(ctx context.Context, reference string) (*utils.PaystackVerifyData, error)
}

// Notifier delivers fire-and-forget user notices.
type Notifier interface {
	WalletFunded(userID uint, amount float64, currency string)
}

// PaymentService drives the gateway initialize/verify flow and the deposit
// state machine (pending -> successful | failed, terminal either way).
// Gateway I/O always happens outside the local transactions.
type PaymentService struct {
	DB         *gorm.DB
	Gateway    PaymentGateway
	Settlement *SettlementService
	Notifier   Notifier
	MinAmount  float64
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, settlement *SettlementService, notifier Notifier) *PaymentService {
	min := float64(defaultMinAmount)
	if s := os.Getenv("PAYMENT_MIN_AMOUNT"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			min = v
		}
	}
	return &PaymentService{
		DB:         db,
		Gateway:    gateway,
		Settlement: settlement,
		Notifier:   notifier,
		MinAmount:  min,
	}
}

type InitializePaymentResult struct {
	Deposit          models.InitializeDeposit `json:"deposit"`
	Reference        string                   `json:"reference"`
	AuthorizationURL string                   `json:"authorization_url"`
	AccessCode       string                   `json:"access_code"`
}

type VerifyPaymentResult struct {
	Deposit models.InitializeDeposit  `json:"deposit"`
	Gateway *utils.PaystackVerifyData `json:"gateway"`
}

// InitializePayment obtains a hosted-payment session for the user and records
// a pending deposit keyed by the gateway reference. orderID is zero for plain
// wallet top-ups.
func (s *PaymentService) InitializePayment(ctx context.Context, userID uint, amount float64, orderID uint) (*InitializePaymentResult, error) {
	if amount < s.MinAmount {
		return nil, &ValidationError{Fields: map[string]string{
			"amount": fmt.Sprintf("The amount must be at least %.0f", s.MinAmount),
		}}
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data, err := s.Gateway.Initialize(ctx, user.Email, amount, utils.PaystackMetadata{
		UserID:  userID,
		OrderID: orderID,
	})
	if err != nil {
		return nil, &GatewayError{Message: err.Error()}
	}

	deposit := models.InitializeDeposit{
		UserID:    userID,
		Reference: data.Reference,
		Trx:       utils.GenerateTrx(10),
		Amount:    amount,
		Status:    "pending",
	}
	if err := s.DB.Create(&deposit).Error; err != nil {
		return nil, err
	}

	return &InitializePaymentResult{
		Deposit:          deposit,
		Reference:        data.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

// VerifyPayment confirms a reference with the gateway and settles its effects:
// deposit marked successful with the gateway-reported details, wallet credited,
// order reconciled when the metadata carries one. An already-successful
// reference fails fast with ErrAlreadyProcessed before any gateway call.
// The deposit flips to failed only when the settlement transaction did not
// commit; a post-commit notification problem is logged, never compensated.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (*VerifyPaymentResult, error) {
	var deposit models.InitializeDeposit
	if err := s.DB.Where("reference = ?", reference).First(&deposit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if deposit.Status == "successful" {
		return nil, ErrAlreadyProcessed
	}

	data, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		s.markFailed(reference)
		return nil, &GatewayError{Message: err.Error()}
	}
	if data.Status != "success" {
		s.markFailed(reference)
		return nil, &GatewayError{Message: "Payment not successful: " + data.GatewayResponse}
	}

	amount := float64(data.Amount) / 100

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check under the row lock: two concurrent verifies must not both
		// pass the fail-fast check above.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).
			First(&deposit).Error; err != nil {
			return err
		}
		if deposit.Status == "successful" {
			return ErrAlreadyProcessed
		}

		updates := map[string]interface{}{
			"status":   "successful",
			"amount":   amount,
			"method":   data.Channel,
			"currency": data.Currency,
			"token":    data.Authorization.AuthorizationCode,
		}
		if err := tx.Model(&deposit).Updates(updates).Error; err != nil {
			return err
		}

		if err := s.Settlement.CreditWallet(tx, deposit.UserID, amount); err != nil {
			return err
		}

		if data.Metadata.OrderID != 0 {
			if err := s.Settlement.ReconcilePaidOrder(tx, data.Metadata.OrderID, deposit.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return nil, ErrAlreadyProcessed
		}
		// Nothing committed; record the failure.
		s.markFailed(reference)
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.WalletFunded(deposit.UserID, amount, data.Currency)
	}

	return &VerifyPaymentResult{Deposit: deposit, Gateway: data}, nil
}

// markFailed is the compensating write for a verification that did not reach
// a committed success. Only a still-pending deposit flips to failed.
func (s *PaymentService) markFailed(reference string) {
	if err := s.DB.Model(&models.InitializeDeposit{}).
		Where("reference = ? AND status = ?", reference, "pending").
		Update("status", "failed").Error; err != nil {
		log.Printf("[payment] failed to mark deposit %s failed: %v", reference, err)
	}
}

// CheckoutCart turns the user's pending cart rows into a pending order and
// initializes a gateway payment carrying the order id in its metadata.
func (s *PaymentService) CheckoutCart(ctx context.Context, userID uint) (*InitializePaymentResult, error) {
	var carts []models.Cart
	if err := s.DB.Preload("Product").
		Where("user_id = ? AND status = ?", userID, "pending").
		Find(&carts).Error; err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"cart": "Your cart is empty"}}
	}

	order := models.Order{UserID: userID, Status: "pending"}
	for _, c := range carts {
		if c.Product == nil {
			continue
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: c.ProductID,
			Quantity:  c.Quantity,
			Price:     c.Product.Price,
		})
		order.Total += c.Product.Price * float64(c.Quantity)
	}
	if len(order.Items) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"cart": "Your cart is empty"}}
	}

	if err := s.DB.Create(&order).Error; err != nil {
		return nil, err
	}

	return s.InitializePayment(ctx, userID, order.Total, order.ID)
}

// GetBalance reads the wallet balance, 0 when no wallet exists yet.
func (s *PaymentService) GetBalance(userID uint) (float64, error) {
	var wallet models.Wallet
	if err := s.DB.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return wallet.Balance, nil
}
