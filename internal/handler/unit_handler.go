package handler

import (
	"go-batch-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UnitHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewUnitHandler(cat service.CatalogService, log *zap.Logger) *UnitHandler {
	return &UnitHandler{catalog: cat, log: log}
}

func (h *UnitHandler) GetUnits(c *fiber.Ctx) error {
	units, err := h.catalog.ListUnits()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": units})
}
