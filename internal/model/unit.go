package model

type UnitType string

const (
	UnitBase    UnitType = "BASE"
	UnitPackage UnitType = "PACKAGE"
)

// Unit is process-wide reference data. A BASE unit converts to itself
// (ConversionToBase = 1, BaseUnitID = nil); a PACKAGE unit must point at the
// BASE unit it converts into.
type Unit struct {
	BaseModel
	Code             string   `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Type             UnitType `gorm:"type:varchar(10);not null" json:"type"`
	BaseUnitID       *uint    `json:"base_unit_id"`
	BaseUnit         *Unit    `gorm:"foreignKey:BaseUnitID" json:"base_unit,omitempty"`
	ConversionToBase int      `gorm:"not null;default:1" json:"conversion_to_base"`
}

// ConversionMultiplier returns the factor that converts a quantity expressed
// in u into base units. A nil or unresolved unit means the quantity is
// already in base terms, so the multiplier degrades to 1. This never fails:
// historical batches may legitimately have no unit set.
func (u *Unit) ConversionMultiplier() int {
	if u == nil || u.ConversionToBase <= 0 {
		return 1
	}
	return u.ConversionToBase
}

// BaseUnitIdentity returns the id of the BASE unit this unit converts into,
// or false when the reference data is broken (a PACKAGE unit without a base
// mapping). Callers that rewrite a batch's unit must treat false as a
// data-integrity failure, not fall back silently.
func (u *Unit) BaseUnitIdentity() (uint, bool) {
	if u == nil {
		return 0, false
	}
	if u.BaseUnitID == nil {
		if u.Type == UnitPackage {
			return 0, false
		}
		return u.ID, true
	}
	return *u.BaseUnitID, true
}
