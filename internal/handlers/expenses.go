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

// ExpenseHandler exposes expense tracking endpoints.
type ExpenseHandler struct {
	expenses *services.ExpenseService
}

// NewExpenseHandler constructs an expense handler.
func NewExpenseHandler(expenses *services.ExpenseService) (*ExpenseHandler, error) {
	if expenses == nil {
		return nil, appErrors.ErrInternalServer
	}
	return &ExpenseHandler{expenses: expenses}, nil
}

type createExpensePayload struct {
	CropName string     `json:"crop_name" validate:"omitempty,max=120"`
	Title    string     `json:"title" validate:"required,max=200"`
	Amount   float64    `json:"amount" validate:"required,gt=0"`
	Date     *time.Time `json:"date"`
	Notes    string     `json:"notes" validate:"omitempty,max=2000"`
}

// Create records an expense. The response carries any alerts the write
// triggered; a failed alert pass degrades the response rather than the write.
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload createExpensePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.CreateExpenseInput{
		UserID:   userID,
		CropName: payload.CropName,
		Title:    payload.Title,
		Amount:   payload.Amount,
		Notes:    payload.Notes,
	}
	if payload.Date != nil {
		input.Date = *payload.Date
	}

	result, err := h.expenses.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"expense": result.Expense}
	if len(result.Alerts) > 0 {
		body["alerts"] = result.Alerts
	} else {
		body["alerts"] = []models.Alert{}
	}
	if result.AlertErr != nil {
		body["alerts_degraded"] = true
	}

	response.Success(c, http.StatusCreated, body)
}

// List returns expenses for the current user, optionally filtered by crop.
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.expenses.List(requestContext(c), services.ListExpensesInput{
		UserID:   userID,
		CropID:   strings.TrimSpace(c.Query("crop_id")),
		CropName: strings.TrimSpace(c.Query("crop_name")),
		Limit:    parseIntQuery(c, "limit", 25),
		Offset:   parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Get returns a single expense.
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	expense, err := h.expenses.Get(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, expense)
}
