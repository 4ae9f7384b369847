package database

import (
	"errors"

	"giftpay/config"
	"giftpay/internal/domain"
	"giftpay/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.GiftcardBrand{},
		&models.GiftcardVariant{},
		&models.InventoryUnit{},
		&models.GiftcardTransaction{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the initial admin user and their wallet if missing.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) error {
	var admin models.User
	err := db.Where("email = ?", cfg.Email).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin = models.User{Email: cfg.Email, PasswordHash: string(hash), Role: domain.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	return db.Create(&models.WalletAccount{UserID: admin.ID, Currency: domain.Currency}).Error
}
