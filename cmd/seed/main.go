package main

import (
	"os"
	"time"

	"go-batch-inventory/internal/model"
	"go-batch-inventory/pkg/database"
	"go-batch-inventory/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeds a demo dataset: base and package units, the bootstrap admin, one
// product and its opening batch with the matching IN ledger line.
func main() {
	log := logger.New(os.Getenv("APP_ENV"))
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}

	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.User{},
		&model.Unit{},
		&model.Product{},
		&model.Batch{},
		&model.Transaction{},
	); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if err := seed(db); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed complete")
}

func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		piece := model.Unit{Code: "piece", Type: model.UnitBase, ConversionToBase: 1}
		if err := tx.Where("code = ?", piece.Code).FirstOrCreate(&piece).Error; err != nil {
			return err
		}

		carton := model.Unit{
			Code:             "carton",
			Type:             model.UnitPackage,
			BaseUnitID:       &piece.ID,
			ConversionToBase: 24,
		}
		if err := tx.Where("code = ?", carton.Code).FirstOrCreate(&carton).Error; err != nil {
			return err
		}

		admin := model.User{Name: "Admin", Email: "admin@local.test"}
		if err := tx.Where("email = ?", admin.Email).First(&admin).Error; err != nil {
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				password = "admin123"
			}
			if err := admin.SetPassword(password); err != nil {
				return err
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
		}

		product := model.Product{SKU: "PEPSI-330", Name: "Pepsi 330ml", MinStockLevel: 24}
		if err := tx.Where("sku = ?", product.SKU).First(&product).Error; err == nil {
			// Already seeded.
			return nil
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		batch := model.Batch{
			ProductID:    product.ID,
			UnitID:       &piece.ID,
			QtyReceived:  24,
			QtyRemaining: 24,
			Status:       model.BatchActive,
			ExpiresAt:    time.Now().AddDate(0, 0, 60),
		}
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}

		return tx.Create(&model.Transaction{
			Type:        model.TxIn,
			ProductID:   product.ID,
			BatchID:     &batch.ID,
			Qty:         24,
			CreatedByID: admin.ID,
		}).Error
	})
}
