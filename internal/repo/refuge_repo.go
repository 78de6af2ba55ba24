// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Refuge
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a refuge is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRefuge inserts a new refuge row. The ID is a randomly generated
// UUID (string) and CreatedAt is set to UTC.
func CreateRefuge(ctx context.Context, db *gorm.DB, r *domain.Refuge) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// ListRefuges returns the whole directory ordered by name ascending. It
// returns an empty slice when the directory is empty.
func ListRefuges(ctx context.Context, db *gorm.DB) ([]domain.Refuge, error) {
	var out []domain.Refuge
	err := db.WithContext(ctx).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// GetRefuge fetches a single refuge by ID, or ErrNotFound if missing.
func GetRefuge(ctx context.Context, db *gorm.DB, id string) (*domain.Refuge, error) {
	var r domain.Refuge
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountRefuges returns the total number of refuges in the directory.
func CountRefuges(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Refuge{}).
		Count(&total).Error
	return total, err
}
