package handler

import (
	"go-batch-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewTransactionHandler(cat service.CatalogService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{catalog: cat, log: log}
}

// GetTransactions returns one page of the stock ledger, newest first.
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	rows, pageInfo, err := h.catalog.ListTransactions(
		c.QueryInt("page", 1),
		c.QueryInt("pageSize", 0),
		c.Query("q"),
	)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": rows, "pageInfo": pageInfo})
}
