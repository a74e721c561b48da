package service

import (
	"time"

	"go-batch-inventory/internal/apperr"
	"go-batch-inventory/internal/model"
	"go-batch-inventory/internal/repository"
)

// Allocation is one slice of a sale drawn from a single batch, expressed in
// base units.
type Allocation struct {
	BatchID   uint      `json:"batchId"`
	ExpiresAt time.Time `json:"expiresAt"`
	QtyInBase int       `json:"qtyInBase"`
}

// plannedSale pairs the allocations reported to the caller with the batch
// rewrites the committer must apply. Built entirely from the selector's
// snapshot; nothing here touches storage.
type plannedSale struct {
	Allocations []Allocation
	Updates     []repository.AllocationUpdate
}

// planAllocations walks the FEFO-ordered batches and greedily takes from each
// until qtyToSell base units are covered.
//
// Every touched batch is renormalized to its base unit: the recorded unit
// becomes the base unit and both quantities are rescaled by the conversion
// multiplier, so qty_received stays consistent with qty_remaining. A PACKAGE
// unit with no base mapping aborts the plan; rewriting the stored unit
// identity on guesswork would corrupt the batch, unlike the resolver's
// harmless multiplier default.
//
// All-or-nothing: if the batches cannot cover the full quantity the plan
// fails and no update is produced.
func planAllocations(batches []model.Batch, qtyToSell int) (*plannedSale, error) {
	remaining := qtyToSell
	plan := &plannedSale{}

	for i := range batches {
		if remaining <= 0 {
			break
		}
		batch := &batches[i]

		conversion := batch.Unit.ConversionMultiplier()
		availableBase := batch.QtyRemaining * conversion
		if availableBase <= 0 {
			continue
		}

		take := availableBase
		if remaining < take {
			take = remaining
		}
		remaining -= take

		newUnitID := batch.UnitID
		if batch.Unit != nil {
			baseID, ok := batch.Unit.BaseUnitIdentity()
			if !ok {
				return nil, apperr.ErrUnitIntegrity
			}
			newUnitID = &baseID
		}

		newRemaining := availableBase - take
		newStatus := model.BatchActive
		if newRemaining == 0 {
			newStatus = model.BatchDepleted
		}

		plan.Allocations = append(plan.Allocations, Allocation{
			BatchID:   batch.ID,
			ExpiresAt: batch.ExpiresAt,
			QtyInBase: take,
		})
		plan.Updates = append(plan.Updates, repository.AllocationUpdate{
			BatchID:          batch.ID,
			PrevUnitID:       batch.UnitID,
			PrevQtyRemaining: batch.QtyRemaining,
			NewUnitID:        newUnitID,
			NewQtyRemaining:  newRemaining,
			NewQtyReceived:   batch.QtyReceived * conversion,
			NewStatus:        newStatus,
		})
	}

	if remaining > 0 {
		return nil, apperr.ErrInsufficientStock
	}
	return plan, nil
}
