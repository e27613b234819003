package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/croptrack/croptrack/internal/domain/entity"
	repo "github.com/croptrack/croptrack/internal/domain/repository"
)

// CropService implements owner-scoped crop tracking. Every operation takes
// the owner id resolved from the session; crops are never visible across
// owners.
type CropService struct {
	Repo   repo.CropRepository
	Logger *logrus.Logger
}

func NewCropService(repo repo.CropRepository, logger *logrus.Logger) *CropService {
	return &CropService{Repo: repo, Logger: logger}
}

// CropStatistics aggregates one owner's crops for the statistics view.
type CropStatistics struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	FirstPlanting string         `json:"first_planting,omitempty"`
	LastPlanting  string         `json:"last_planting,omitempty"`
}

// Add persists a new crop for the owner. All fields are required.
func (s *CropService) Add(ctx context.Context, ownerID int64, name, plantingDate, status string) (*entity.Crop, error) {
	name = strings.TrimSpace(name)
	plantingDate = strings.TrimSpace(plantingDate)
	status = strings.TrimSpace(status)
	if name == "" || plantingDate == "" || status == "" {
		return nil, ErrValidation
	}

	c := &entity.Crop{
		UserID:       ownerID,
		Name:         name,
		PlantingDate: plantingDate,
		Status:       status,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": ownerID, "crop_id": c.ID}).Info("crop added")
	}
	return c, nil
}

// ListByOwner returns the owner's crops in insertion order; empty slice when
// none exist.
func (s *CropService) ListByOwner(ctx context.Context, ownerID int64) ([]entity.Crop, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// Statistics aggregates the owner's crops: total, count per status and the
// planting date range. Dates are YYYY-MM-DD strings, so lexicographic order
// is chronological order.
func (s *CropService) Statistics(ctx context.Context, ownerID int64) (*CropStatistics, error) {
	crops, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &CropStatistics{ByStatus: make(map[string]int)}
	for _, c := range crops {
		stats.Total++
		stats.ByStatus[c.Status]++
		if stats.FirstPlanting == "" || c.PlantingDate < stats.FirstPlanting {
			stats.FirstPlanting = c.PlantingDate
		}
		if c.PlantingDate > stats.LastPlanting {
			stats.LastPlanting = c.PlantingDate
		}
	}
	return stats, nil
}
