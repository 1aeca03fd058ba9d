package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/middleware"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/services"
	appErrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/response"
)

// CropHandler exposes crop management endpoints, including budget and
// threshold updates.
type CropHandler struct {
	crops *services.CropService
}

// NewCropHandler constructs a crop handler.
func NewCropHandler(crops *services.CropService) (*CropHandler, error) {
	if crops == nil {
		return nil, appErrors.ErrInternalServer
	}
	return &CropHandler{crops: crops}, nil
}

type createCropPayload struct {
	Name            string     `json:"name" validate:"required,max=120"`
	PlannedBudget   float64    `json:"planned_budget" validate:"required,gt=0"`
	StartDate       *time.Time `json:"start_date"`
	ExpectedHarvest *time.Time `json:"expected_harvest"`
}

// Create registers a new crop for the current user.
func (h *CropHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload createCropPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.CreateCropInput{
		UserID:          userID,
		Name:            payload.Name,
		PlannedBudget:   payload.PlannedBudget,
		ExpectedHarvest: payload.ExpectedHarvest,
	}
	if payload.StartDate != nil {
		input.StartDate = *payload.StartDate
	}

	crop, err := h.crops.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, translateCropError(err))
		return
	}

	response.Success(c, http.StatusCreated, crop)
}

// List returns all crops owned by the current user.
func (h *CropHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	crops, err := h.crops.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, crops)
}

// Get returns a single crop.
func (h *CropHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	crop, err := h.crops.Get(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, translateCropError(err))
		return
	}

	response.Success(c, http.StatusOK, crop)
}

type thresholdPayload struct {
	Threshold float64 `json:"threshold" validate:"required,gt=0"`
}

// SetThreshold stores a custom alert threshold and reports any alerts the
// immediate evaluation pass produced.
func (h *CropHandler) SetThreshold(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload thresholdPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.crops.SetCustomThreshold(requestContext(c), userID, strings.TrimSpace(c.Param("id")), payload.Threshold)
	if err != nil {
		response.Error(c, translateCropError(err))
		return
	}

	response.Success(c, http.StatusOK, thresholdResponse(result))
}

type budgetPayload struct {
	PlannedBudget float64 `json:"planned_budget" validate:"required,gt=0"`
}

// UpdateBudget replaces the crop's planned budget.
func (h *CropHandler) UpdateBudget(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload budgetPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	crop, err := h.crops.UpdateBudget(requestContext(c), userID, strings.TrimSpace(c.Param("id")), payload.PlannedBudget)
	if err != nil {
		response.Error(c, translateCropError(err))
		return
	}

	response.Success(c, http.StatusOK, crop)
}

// Spend reports the crop's accumulated spend against its planned budget.
func (h *CropHandler) Spend(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	cropID := strings.TrimSpace(c.Param("id"))

	crop, err := h.crops.Get(requestContext(c), userID, cropID)
	if err != nil {
		response.Error(c, translateCropError(err))
		return
	}

	total, err := h.crops.TotalSpend(requestContext(c), userID, cropID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"crop_id":        crop.ID,
		"planned_budget": crop.PlannedBudget,
		"total_spent":    total,
		"budget_usage":   total / crop.PlannedBudget * 100,
	}

	response.Success(c, http.StatusOK, payload)
}

func thresholdResponse(result *services.ThresholdResult) gin.H {
	payload := gin.H{"crop": result.Crop}
	if len(result.Alerts) > 0 {
		payload["alerts"] = result.Alerts
	} else {
		payload["alerts"] = []models.Alert{}
	}
	if result.AlertErr != nil {
		payload["alerts_degraded"] = true
	}
	return payload
}

func translateCropError(err error) error {
	switch {
	case err == nil:
		return nil
	case err == services.ErrCropNotFound:
		return appErrors.NewNotFound("crop not found")
	case err == services.ErrInvalidBudget:
		return appErrors.NewBadRequest("planned budget must be positive")
	default:
		return err
	}
}
