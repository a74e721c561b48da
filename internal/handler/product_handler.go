package handler

import (
	"go-batch-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProductHandler struct {
	inventory service.InventoryService
	catalog   service.CatalogService
	log       *zap.Logger
}

func NewProductHandler(inv service.InventoryService, cat service.CatalogService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{inventory: inv, catalog: cat, log: log}
}

// GetProducts returns one page of products with aggregated current stock.
// Query params: page, pageSize, q.
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	rows, pageInfo, err := h.catalog.ListProducts(
		c.QueryInt("page", 1),
		c.QueryInt("pageSize", 0),
		c.Query("q"),
	)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": rows, "pageInfo": pageInfo})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON payload"})
	}

	product, err := h.inventory.CreateProduct(&req, actorID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// Sell allocates and commits a FEFO sale for a product.
func (h *ProductHandler) Sell(c *fiber.Ctx) error {
	var req service.SellRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON payload"})
	}

	result, err := h.inventory.Sell(&req, actorID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": result})
}
