package company

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	FindByID(ctx context.Context, id string) (*Company, error)
	FindAll(ctx context.Context) ([]Company, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) Update(ctx context.Context, c *Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Company, error) {
	var c Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindAll(ctx context.Context) ([]Company, error) {
	var companies []Company
	err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error
	return companies, err
}
