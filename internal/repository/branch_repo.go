package repository

import (
	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchRepository interface {
	Create(branch *model.Branch) error
	FindAll() ([]model.Branch, error)
	FindByID(id uuid.UUID) (*model.Branch, error)
}

type branchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db}
}

func (r *branchRepo) Create(branch *model.Branch) error {
	return r.db.Create(branch).Error
}

func (r *branchRepo) FindAll() ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.Order("name ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) FindByID(id uuid.UUID) (*model.Branch, error) {
	var branch model.Branch
	if err := r.db.First(&branch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}
