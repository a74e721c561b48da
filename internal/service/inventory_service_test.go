package service

import (
	"testing"
	"time"

	"go-batch-inventory/internal/apperr"
	"go-batch-inventory/internal/model"
	"go-batch-inventory/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every sqlite :memory: connection is its own database; pin the pool to
	// one connection so all queries see the same schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Unit{},
		&model.Product{},
		&model.Batch{},
		&model.Transaction{},
	))
	return db
}

func newTestInventoryService(t *testing.T, db *gorm.DB) *inventoryService {
	t.Helper()
	svc := NewInventoryService(
		repository.NewProductRepo(db),
		repository.NewUnitRepo(db),
		repository.NewBatchRepo(db),
		repository.NewTransactionRepo(db),
		db, nil, zap.NewNop(),
	)
	return svc.(*inventoryService)
}

func createUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{Name: "Clerk", Email: "clerk@local.test", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBaseUnit(t *testing.T, db *gorm.DB, code string) *model.Unit {
	t.Helper()
	unit := &model.Unit{Code: code, Type: model.UnitBase, ConversionToBase: 1}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func createPackageUnit(t *testing.T, db *gorm.DB, code string, base *model.Unit, conversion int) *model.Unit {
	t.Helper()
	unit := &model.Unit{Code: code, Type: model.UnitPackage, BaseUnitID: &base.ID, ConversionToBase: conversion}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func createProduct(t *testing.T, db *gorm.DB, sku string, minStock int) *model.Product {
	t.Helper()
	product := &model.Product{SKU: sku, Name: "Product " + sku, MinStockLevel: minStock}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createBatch(t *testing.T, db *gorm.DB, product *model.Product, unit *model.Unit, received, remaining int, expiresAt time.Time) *model.Batch {
	t.Helper()
	batch := &model.Batch{
		ProductID:    product.ID,
		QtyReceived:  received,
		QtyRemaining: remaining,
		Status:       model.BatchActive,
		ExpiresAt:    expiresAt,
	}
	if unit != nil {
		batch.UnitID = &unit.ID
	}
	require.NoError(t, db.Create(batch).Error)
	return batch
}

func reloadBatch(t *testing.T, db *gorm.DB, id uint) *model.Batch {
	t.Helper()
	var batch model.Batch
	require.NoError(t, db.First(&batch, "id = ?", id).Error)
	return &batch
}

func TestSell(t *testing.T) {
	now := time.Now()

	t.Run("allocates soonest expiry first across batches", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "FEFO-1", 0)

		// Created out of expiry order on purpose.
		b10 := createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 10))
		b2 := createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 2))
		b30 := createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 30))

		result, err := svc.Sell(&SellRequest{ProductID: product.ID, QtyToSell: 25}, actor.ID)
		require.NoError(t, err)
		require.Len(t, result.Allocations, 3)

		assert.Equal(t, b2.ID, result.Allocations[0].BatchID)
		assert.Equal(t, 10, result.Allocations[0].QtyInBase)
		assert.Equal(t, b10.ID, result.Allocations[1].BatchID)
		assert.Equal(t, 10, result.Allocations[1].QtyInBase)
		assert.Equal(t, b30.ID, result.Allocations[2].BatchID)
		assert.Equal(t, 5, result.Allocations[2].QtyInBase)

		assert.Equal(t, 0, reloadBatch(t, db, b2.ID).QtyRemaining)
		assert.Equal(t, model.BatchDepleted, reloadBatch(t, db, b2.ID).Status)
		assert.Equal(t, 5, reloadBatch(t, db, b30.ID).QtyRemaining)
	})

	t.Run("appends one OUT ledger line for the whole sale", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "LEDGER-1", 0)
		createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 2))
		createBatch(t, db, product, piece, 5, 5, now.AddDate(0, 0, 10))

		_, err := svc.Sell(&SellRequest{ProductID: product.ID, QtyToSell: 12}, actor.ID)
		require.NoError(t, err)

		var lines []model.Transaction
		require.NoError(t, db.Where("type = ?", model.TxOut).Find(&lines).Error)
		require.Len(t, lines, 1)
		assert.Equal(t, product.ID, lines[0].ProductID)
		assert.Equal(t, 12, lines[0].Qty)
		assert.Equal(t, actor.ID, lines[0].CreatedByID)
		assert.Nil(t, lines[0].BatchID)
	})

	t.Run("renormalizes a carton batch sold in base units", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		carton := createPackageUnit(t, db, "carton", piece, 24)
		product := createProduct(t, db, "CARTON-1", 0)
		batch := createBatch(t, db, product, carton, 2, 1, now.AddDate(0, 0, 30))

		result, err := svc.Sell(&SellRequest{ProductID: product.ID, QtyToSell: 24}, actor.ID)
		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, 24, result.Allocations[0].QtyInBase)

		reloaded := reloadBatch(t, db, batch.ID)
		require.NotNil(t, reloaded.UnitID)
		assert.Equal(t, piece.ID, *reloaded.UnitID)
		assert.Equal(t, 0, reloaded.QtyRemaining)
		assert.Equal(t, 48, reloaded.QtyReceived)
		assert.Equal(t, model.BatchDepleted, reloaded.Status)
	})

	t.Run("rejects the whole sale when stock cannot cover it", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "SHORT-1", 0)
		batch := createBatch(t, db, product, piece, 5, 5, now.AddDate(0, 0, 5))

		_, err := svc.Sell(&SellRequest{ProductID: product.ID, QtyToSell: 8}, actor.ID)
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

		// Nothing was committed.
		assert.Equal(t, 5, reloadBatch(t, db, batch.ID).QtyRemaining)
		var count int64
		require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("distinguishes having no eligible batches at all", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "EMPTY-1", 0)
		// Only an already-expired batch.
		createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, -1))

		_, err := svc.Sell(&SellRequest{ProductID: product.ID, QtyToSell: 1}, actor.ID)
		assert.ErrorIs(t, err, apperr.ErrNoEligibleBatches)
	})

	t.Run("reports a missing product on its field", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)

		_, err := svc.Sell(&SellRequest{ProductID: 999, QtyToSell: 1}, actor.ID)
		var notFound *apperr.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "productId", notFound.Field)
	})

	t.Run("validates the request fields", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)

		_, err := svc.Sell(&SellRequest{ProductID: 0, QtyToSell: -3}, 1)
		var validation *apperr.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "productId")
		assert.Contains(t, validation.Fields, "qtyToSell")
	})
}

func TestCommitSaleConflicts(t *testing.T) {
	now := time.Now()

	t.Run("rolls back everything when a batch changed since planning", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "RACE-1", 0)
		b1 := createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 2))
		b2 := createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 10))

		batches, err := repository.NewBatchRepo(db).FindEligibleForSale(product.ID, now)
		require.NoError(t, err)
		plan, err := planAllocations(batches, 15)
		require.NoError(t, err)

		// A concurrent sale consumes from the second batch between plan and
		// commit.
		require.NoError(t, db.Model(&model.Batch{}).
			Where("id = ?", b2.ID).
			Update("qty_remaining", 7).Error)

		err = svc.commitSale(plan, product.ID, 15, actor.ID)
		assert.ErrorIs(t, err, apperr.ErrStaleBatch)

		// The first batch's update was rolled back with the rest.
		assert.Equal(t, 10, reloadBatch(t, db, b1.ID).QtyRemaining)
		assert.Equal(t, 7, reloadBatch(t, db, b2.ID).QtyRemaining)
		var count int64
		require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("reports a vanished batch as not found rather than a conflict", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "GONE-1", 0)
		batch := createBatch(t, db, product, piece, 10, 10, now.AddDate(0, 0, 2))

		batches, err := repository.NewBatchRepo(db).FindEligibleForSale(product.ID, now)
		require.NoError(t, err)
		plan, err := planAllocations(batches, 5)
		require.NoError(t, err)

		require.NoError(t, db.Delete(&model.Batch{}, batch.ID).Error)

		err = svc.commitSale(plan, product.ID, 5, actor.ID)
		var notFound *apperr.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "batchId", notFound.Field)
	})
}

func TestReceiveBatch(t *testing.T) {
	now := time.Now()

	t.Run("creates the batch and its IN ledger line together", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "RECV-1", 0)

		expiry := now.AddDate(0, 0, 30).Format("2006-01-02")
		batch, err := svc.ReceiveBatch(&ReceiveBatchRequest{
			ProductID:   product.ID,
			UnitID:      piece.ID,
			QtyReceived: 40,
			ExpiresAt:   expiry,
		}, actor.ID)
		require.NoError(t, err)

		assert.Equal(t, model.BatchActive, batch.Status)
		assert.Equal(t, 40, batch.QtyReceived)
		assert.Equal(t, 40, batch.QtyRemaining)
		assert.Equal(t, product.Name, batch.Product.Name)

		var line model.Transaction
		require.NoError(t, db.Where("type = ?", model.TxIn).First(&line).Error)
		assert.Equal(t, product.ID, line.ProductID)
		require.NotNil(t, line.BatchID)
		assert.Equal(t, batch.ID, *line.BatchID)
		assert.Equal(t, 40, line.Qty)
		assert.Equal(t, actor.ID, line.CreatedByID)
	})

	t.Run("rejects an expiry before tomorrow", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "RECV-2", 0)

		_, err := svc.ReceiveBatch(&ReceiveBatchRequest{
			ProductID:   product.ID,
			UnitID:      piece.ID,
			QtyReceived: 10,
			ExpiresAt:   now.Format("2006-01-02"),
		}, actor.ID)

		var validation *apperr.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "expiresAt")
	})

	t.Run("tags unknown product and unit on their fields", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")
		product := createProduct(t, db, "RECV-3", 0)
		expiry := now.AddDate(0, 0, 30).Format("2006-01-02")

		_, err := svc.ReceiveBatch(&ReceiveBatchRequest{
			ProductID: 999, UnitID: piece.ID, QtyReceived: 1, ExpiresAt: expiry,
		}, actor.ID)
		var notFound *apperr.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "productId", notFound.Field)

		_, err = svc.ReceiveBatch(&ReceiveBatchRequest{
			ProductID: product.ID, UnitID: 999, QtyReceived: 1, ExpiresAt: expiry,
		}, actor.ID)
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "unitId", notFound.Field)
	})
}

func TestCreateProduct(t *testing.T) {
	now := time.Now()

	t.Run("creates a bare product", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)

		product, err := svc.CreateProduct(&CreateProductRequest{
			SKU: "COLA-330", Name: "Cola 330ml", MinStockLevel: 12,
		}, actor.ID)
		require.NoError(t, err)
		assert.NotZero(t, product.ID)

		var count int64
		require.NoError(t, db.Model(&model.Batch{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("creates the opening batch and IN line with initial stock", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		piece := createBaseUnit(t, db, "piece")

		product, err := svc.CreateProduct(&CreateProductRequest{
			SKU: "COLA-500", Name: "Cola 500ml", MinStockLevel: 6,
			InitialStock: &InitialStockRequest{
				UnitID:      piece.ID,
				QtyReceived: 18,
				ExpiresAt:   now.AddDate(0, 0, 90).Format("2006-01-02"),
			},
		}, actor.ID)
		require.NoError(t, err)

		var batch model.Batch
		require.NoError(t, db.Where("product_id = ?", product.ID).First(&batch).Error)
		assert.Equal(t, 18, batch.QtyRemaining)

		var line model.Transaction
		require.NoError(t, db.Where("type = ?", model.TxIn).First(&line).Error)
		assert.Equal(t, product.ID, line.ProductID)
	})

	t.Run("rejects a duplicate SKU", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)
		actor := createUser(t, db)
		createProduct(t, db, "DUP-1", 0)

		_, err := svc.CreateProduct(&CreateProductRequest{SKU: "DUP-1", Name: "Dup"}, actor.ID)
		var validation *apperr.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "sku")
	})

	t.Run("rejects a malformed SKU", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestInventoryService(t, db)

		_, err := svc.CreateProduct(&CreateProductRequest{SKU: "bad sku!", Name: "Bad"}, 1)
		var validation *apperr.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "sku")
	})
}
