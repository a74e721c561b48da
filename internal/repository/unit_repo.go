package repository

import (
	"go-batch-inventory/internal/model"

	"gorm.io/gorm"
)

type UnitRepository interface {
	FindByID(id uint) (*model.Unit, error)
	FindAll() ([]model.Unit, error)
}

type unitRepo struct {
	db *gorm.DB
}

func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db}
}

func (r *unitRepo) FindByID(id uint) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.First(&unit, "id = ?", id).Error
	return &unit, err
}

func (r *unitRepo) FindAll() ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.Order("code ASC").Find(&units).Error
	return units, err
}
