package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/middleware"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/services"
	appErrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/response"
)

// AlertHandler exposes budget alert endpoints.
type AlertHandler struct {
	alerts *services.AlertService
}

// NewAlertHandler constructs an alert handler.
func NewAlertHandler(alerts *services.AlertService) (*AlertHandler, error) {
	if alerts == nil {
		return nil, appErrors.ErrInternalServer
	}
	return &AlertHandler{alerts: alerts}, nil
}

// List returns alerts for the current user. Dismissed alerts are excluded
// unless include_dismissed=true is passed.
func (h *AlertHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.alerts.ListForUser(requestContext(c), services.ListAlertsInput{
		UserID:           userID,
		UnreadOnly:       parseBoolQuery(c, "unread_only"),
		IncludeDismissed: parseBoolQuery(c, "include_dismissed"),
		Limit:            parseIntQuery(c, "limit", 25),
		Offset:           parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// MarkRead toggles an alert to read.
func (h *AlertHandler) MarkRead(c *gin.Context) {
	h.updateReadState(c, true)
}

// MarkUnread toggles an alert to unread.
func (h *AlertHandler) MarkUnread(c *gin.Context) {
	h.updateReadState(c, false)
}

func (h *AlertHandler) updateReadState(c *gin.Context, read bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	var (
		alert any
		err   error
	)
	if read {
		alert, err = h.alerts.MarkRead(requestContext(c), userID, id)
	} else {
		alert, err = h.alerts.MarkUnread(requestContext(c), userID, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, alert)
}

// Dismiss suppresses an alert. A dismissed alert no longer blocks future
// alerts of the same kind for its crop.
func (h *AlertHandler) Dismiss(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	alert, err := h.alerts.Dismiss(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, alert)
}

// Delete removes an alert entirely.
func (h *AlertHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.alerts.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
