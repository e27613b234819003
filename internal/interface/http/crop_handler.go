package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/croptrack/croptrack/internal/application"
	"github.com/croptrack/croptrack/internal/domain/entity"
	"github.com/croptrack/croptrack/internal/interface/middleware"
	"github.com/croptrack/croptrack/pkg/response"
	"github.com/croptrack/croptrack/pkg/validation"
)

type CropHandler struct {
	Svc    *application.CropService
	Logger *logrus.Logger
}

func NewCropHandler(svc *application.CropService, logger *logrus.Logger) *CropHandler {
	return &CropHandler{Svc: svc, Logger: logger}
}

type addCropRequest struct {
	Name         string `form:"name" binding:"required"`
	PlantingDate string `form:"planting_date" binding:"required"`
	Status       string `form:"status" binding:"required"`
}

type cropView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PlantingDate string `json:"planting_date"`
	Status       string `json:"status"`
}

func toCropViews(crops []entity.Crop) []cropView {
	out := make([]cropView, 0, len(crops))
	for _, c := range crops {
		out = append(out, cropView{ID: c.ID, Name: c.Name, PlantingDate: c.PlantingDate, Status: c.Status})
	}
	return out
}

// Dashboard GET /dashboard — the current user's crops in insertion order.
func (h *CropHandler) Dashboard(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)

	crops, err := h.Svc.ListByOwner(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("list crops failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load your crops", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"crops": toCropViews(crops)}, "dashboard", gin.H{"count": len(crops)})
}

// AddCrop POST /add_crop — records a new crop for the current user.
func (h *CropHandler) AddCrop(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)

	var req addCropRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}

	crop, err := h.Svc.Add(c.Request.Context(), uid, req.Name, req.PlantingDate, req.Status)
	if err != nil {
		if errors.Is(err, application.ErrValidation) {
			response.Error[any](c, http.StatusBadRequest, "all fields are required", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("add crop failed")
		response.Error[any](c, http.StatusInternalServerError, "could not add the crop", gin.H{"redirect": dashboardPath})
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"crop_id": crop.ID}, "crop added", gin.H{"redirect": dashboardPath})
}

// Statistic GET /statistic — aggregate of the current user's crops.
func (h *CropHandler) Statistic(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)

	stats, err := h.Svc.Statistics(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("load statistics failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load statistics", gin.H{"redirect": dashboardPath})
		return
	}

	response.Success(c, http.StatusOK, stats, "statistics", nil)
}
