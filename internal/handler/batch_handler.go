package handler

import (
	"time"

	"go-batch-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BatchHandler struct {
	inventory service.InventoryService
	catalog   service.CatalogService
	log       *zap.Logger
}

func NewBatchHandler(inv service.InventoryService, cat service.CatalogService, log *zap.Logger) *BatchHandler {
	return &BatchHandler{inventory: inv, catalog: cat, log: log}
}

// GetBatches returns one page of batches with their product flattened in.
// Query params: page, pageSize, q, status.
func (h *BatchHandler) GetBatches(c *fiber.Ctx) error {
	rows, pageInfo, err := h.catalog.ListBatches(
		c.QueryInt("page", 1),
		c.QueryInt("pageSize", 0),
		c.Query("q"),
		c.Query("status"),
	)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": rows, "pageInfo": pageInfo})
}

// CreateBatch records a stock receipt.
func (h *BatchHandler) CreateBatch(c *fiber.Ctx) error {
	var req service.ReceiveBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON payload"})
	}

	batch, err := h.inventory.ReceiveBatch(&req, actorID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":           batch.ID,
		"productId":    batch.ProductID,
		"name":         batch.Product.Name,
		"sku":          batch.Product.SKU,
		"status":       batch.EffectiveStatus(time.Now()),
		"qtyReceived":  batch.QtyReceived,
		"qtyRemaining": batch.QtyRemaining,
		"expiresAt":    batch.ExpiresAt,
		"createdAt":    batch.CreatedAt,
		"updatedAt":    batch.UpdatedAt,
	}})
}
