package upstream

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Common repository errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// Repository provides CRUD access to one resource table.
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository creates a repository for the record type T.
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// ListAll returns every record of the resource.
func (r *Repository[T]) ListAll(ctx context.Context) ([]T, error) {
	var records []T
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list records")
	}
	return records, nil
}

// Create inserts one record.
func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to create record")
	}
	return nil
}

// Update applies a partial update to one record. The fields map carries only
// the attributes present in the request body.
func (r *Repository[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	var record T
	tx := r.db.WithContext(ctx).Model(&record).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "failed to update record")
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one record.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	var record T
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&record)
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "failed to delete record")
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
