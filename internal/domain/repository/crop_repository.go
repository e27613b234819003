package repository

import (
	"context"

	"github.com/croptrack/croptrack/internal/domain/entity"
)

// CropRepository defines the interface for crop-related database operations.
// All queries are scoped to the owning user.
type CropRepository interface {
	Create(ctx context.Context, c *entity.Crop) error
	ListByOwner(ctx context.Context, userID int64) ([]entity.Crop, error)
}
