package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/croptrack/croptrack/internal/domain/entity"
	"github.com/croptrack/croptrack/internal/domain/repository"
)

type CropRepository struct {
	pool *pgxpool.Pool
}

func NewCropRepository(pool *pgxpool.Pool) *CropRepository {
	return &CropRepository{pool: pool}
}

func (r *CropRepository) Create(ctx context.Context, c *entity.Crop) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO crops (user_id, name, planting_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.UserID, c.Name, c.PlantingDate, c.Status)

	return row.Scan(&c.ID, &c.CreatedAt)
}

// ListByOwner returns the owner's crops in insertion order.
func (r *CropRepository) ListByOwner(ctx context.Context, userID int64) ([]entity.Crop, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, planting_date, status, created_at
		FROM crops
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crops := make([]entity.Crop, 0)
	for rows.Next() {
		var c entity.Crop
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.PlantingDate, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		crops = append(crops, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return crops, nil
}

var _ repository.CropRepository = (*CropRepository)(nil)
