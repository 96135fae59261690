package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kolozjnr/hovertask/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. The DSN is named after
// the test so gorm's connection pool keeps hitting the same shared cache.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.CompletedTask{},
		&models.FundsRecord{},
		&models.Wallet{},
		&models.InitializeDeposit{},
		&models.Product{},
		&models.TrendingProduct{},
		&models.Cart{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTaskInput(amount float64, total int) CreateTaskInput {
	return CreateTaskInput{
		Title:          "Follow and comment",
		Description:    "Follow the page and drop a comment",
		Status:         "pending",
		Priority:       "high",
		Category:       "social_media",
		TaskType:       1,
		TaskAmount:     amount,
		TaskCountTotal: total,
	}
}

func submissionFor(t *testing.T, db *gorm.DB, userID, taskID uint) models.CompletedTask {
	t.Helper()
	var sub models.CompletedTask
	require.NoError(t, db.Where("user_id = ? AND task_id = ?", userID, taskID).First(&sub).Error)
	return sub
}

func walletBalance(t *testing.T, db *gorm.DB, userID uint) float64 {
	t.Helper()
	var wallet models.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return wallet.Balance
}
