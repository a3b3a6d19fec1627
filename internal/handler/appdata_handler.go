package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/service"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// AppDataHandler serves the bootstrap snapshot for authenticated clients.
type AppDataHandler struct {
	appData *service.AppDataService
}

// NewAppDataHandler constructs the app data handler.
func NewAppDataHandler(appData *service.AppDataService) *AppDataHandler {
	return &AppDataHandler{appData: appData}
}

// Snapshot godoc
// @Summary Bootstrap snapshot
// @Description Returns the reference data visible to the caller in one payload
// @Tags AppData
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /app-data [get]
func (h *AppDataHandler) Snapshot(c *gin.Context) {
	data, err := h.appData.Snapshot(c.Request.Context(), scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
