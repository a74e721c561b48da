package service

import (
	"testing"
	"time"

	"go-batch-inventory/internal/apperr"
	"go-batch-inventory/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pieceUnit(id uint) *model.Unit {
	u := &model.Unit{Code: "piece", Type: model.UnitBase, ConversionToBase: 1}
	u.ID = id
	return u
}

func cartonUnit(id, baseID uint) *model.Unit {
	u := &model.Unit{Code: "carton", Type: model.UnitPackage, BaseUnitID: &baseID, ConversionToBase: 24}
	u.ID = id
	return u
}

func eligibleBatch(id uint, unit *model.Unit, received, remaining int, expiresAt time.Time) model.Batch {
	b := model.Batch{
		ProductID:    1,
		QtyReceived:  received,
		QtyRemaining: remaining,
		Status:       model.BatchActive,
		ExpiresAt:    expiresAt,
		Unit:         unit,
	}
	b.ID = id
	if unit != nil {
		b.UnitID = &unit.ID
	}
	return b
}

func TestPlanAllocations(t *testing.T) {
	now := time.Now()
	piece := pieceUnit(1)

	t.Run("splits greedily across batches in given order", func(t *testing.T) {
		batches := []model.Batch{
			eligibleBatch(1, piece, 10, 10, now.AddDate(0, 0, 2)),
			eligibleBatch(2, piece, 5, 5, now.AddDate(0, 0, 10)),
		}

		plan, err := planAllocations(batches, 12)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 2)

		assert.Equal(t, uint(1), plan.Allocations[0].BatchID)
		assert.Equal(t, 10, plan.Allocations[0].QtyInBase)
		assert.Equal(t, uint(2), plan.Allocations[1].BatchID)
		assert.Equal(t, 2, plan.Allocations[1].QtyInBase)

		assert.Equal(t, 0, plan.Updates[0].NewQtyRemaining)
		assert.Equal(t, model.BatchDepleted, plan.Updates[0].NewStatus)
		assert.Equal(t, 3, plan.Updates[1].NewQtyRemaining)
		assert.Equal(t, model.BatchActive, plan.Updates[1].NewStatus)
	})

	t.Run("leaves later batches untouched once satisfied", func(t *testing.T) {
		batches := []model.Batch{
			eligibleBatch(1, piece, 10, 10, now.AddDate(0, 0, 2)),
			eligibleBatch(2, piece, 10, 10, now.AddDate(0, 0, 10)),
			eligibleBatch(3, piece, 10, 10, now.AddDate(0, 0, 30)),
		}

		plan, err := planAllocations(batches, 4)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 1)
		assert.Equal(t, uint(1), plan.Allocations[0].BatchID)
		assert.Equal(t, 4, plan.Allocations[0].QtyInBase)
	})

	t.Run("all or nothing on shortfall", func(t *testing.T) {
		batches := []model.Batch{
			eligibleBatch(1, piece, 5, 5, now.AddDate(0, 0, 2)),
		}

		plan, err := planAllocations(batches, 8)
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
		assert.Nil(t, plan)
	})

	t.Run("renormalizes package batches to the base unit", func(t *testing.T) {
		carton := cartonUnit(2, 1)
		batches := []model.Batch{
			eligibleBatch(1, carton, 2, 1, now.AddDate(0, 0, 30)),
		}

		plan, err := planAllocations(batches, 24)
		require.NoError(t, err)
		require.Len(t, plan.Updates, 1)

		upd := plan.Updates[0]
		require.NotNil(t, upd.NewUnitID)
		assert.Equal(t, uint(1), *upd.NewUnitID)
		assert.Equal(t, 0, upd.NewQtyRemaining)
		assert.Equal(t, 48, upd.NewQtyReceived)
		assert.Equal(t, model.BatchDepleted, upd.NewStatus)
		assert.Equal(t, 24, plan.Allocations[0].QtyInBase)
	})

	t.Run("partial take from a package batch stays in base units", func(t *testing.T) {
		carton := cartonUnit(2, 1)
		batches := []model.Batch{
			eligibleBatch(1, carton, 2, 2, now.AddDate(0, 0, 30)),
		}

		plan, err := planAllocations(batches, 10)
		require.NoError(t, err)

		upd := plan.Updates[0]
		assert.Equal(t, 38, upd.NewQtyRemaining) // 2*24 - 10
		assert.Equal(t, 48, upd.NewQtyReceived)
		assert.Equal(t, model.BatchActive, upd.NewStatus)
	})

	t.Run("treats a missing unit as base with multiplier one", func(t *testing.T) {
		batches := []model.Batch{
			eligibleBatch(1, nil, 6, 6, now.AddDate(0, 0, 5)),
		}

		plan, err := planAllocations(batches, 6)
		require.NoError(t, err)
		assert.Nil(t, plan.Updates[0].NewUnitID)
		assert.Equal(t, 0, plan.Updates[0].NewQtyRemaining)
		assert.Equal(t, 6, plan.Updates[0].NewQtyReceived)
	})

	t.Run("skips batches with nothing available", func(t *testing.T) {
		batches := []model.Batch{
			eligibleBatch(1, piece, 5, 0, now.AddDate(0, 0, 2)),
			eligibleBatch(2, piece, 5, 5, now.AddDate(0, 0, 10)),
		}

		plan, err := planAllocations(batches, 5)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 1)
		assert.Equal(t, uint(2), plan.Allocations[0].BatchID)
	})

	t.Run("fails fast on a package unit without base mapping", func(t *testing.T) {
		broken := &model.Unit{Code: "crate", Type: model.UnitPackage, ConversionToBase: 12}
		broken.ID = 9
		batches := []model.Batch{
			eligibleBatch(1, broken, 2, 2, now.AddDate(0, 0, 30)),
		}

		plan, err := planAllocations(batches, 1)
		assert.ErrorIs(t, err, apperr.ErrUnitIntegrity)
		assert.Nil(t, plan)
	})

	t.Run("conditions every update on the observed state", func(t *testing.T) {
		carton := cartonUnit(2, 1)
		batches := []model.Batch{
			eligibleBatch(1, carton, 2, 2, now.AddDate(0, 0, 30)),
		}

		plan, err := planAllocations(batches, 5)
		require.NoError(t, err)

		upd := plan.Updates[0]
		require.NotNil(t, upd.PrevUnitID)
		assert.Equal(t, uint(2), *upd.PrevUnitID)
		assert.Equal(t, 2, upd.PrevQtyRemaining)
	})
}
