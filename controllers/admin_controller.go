package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hohemaloans/models"
	"hohemaloans/services"
	"hohemaloans/utils"
)

// AdminController обрабатывает административные запросы: очередь заявок,
// решения и настройки системы
type AdminController struct {
	applicationService *services.LoanApplicationService
	settingsService    *services.SettingsService
}

// NewAdminController создает новый экземпляр AdminController
func NewAdminController(applicationService *services.LoanApplicationService, settingsService *services.SettingsService) *AdminController {
	return &AdminController{
		applicationService: applicationService,
		settingsService:    settingsService,
	}
}

// ListApplications возвращает заявки с указанным статусом.
// По умолчанию возвращается очередь ожидающих решения.
func (c *AdminController) ListApplications(ctx *gin.Context) {
	status := models.ApplicationStatus(ctx.DefaultQuery("status", string(models.ApplicationStatusPending)))

	apps, err := c.applicationService.GetByStatus(status)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dtos := make([]services.ApplicationResponseDTO, 0, len(apps))
	for i := range apps {
		dtos = append(dtos, c.applicationService.ToDTO(&apps[i]))
	}

	ctx.JSON(http.StatusOK, dtos)
}

// GetApplication возвращает заявку по ID
func (c *AdminController) GetApplication(ctx *gin.Context) {
	appID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	app, err := c.applicationService.GetByID(uint(appID))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, c.applicationService.ToDTO(app))
}

// ApproveApplication одобряет заявку с условиями, заданными администратором
func (c *AdminController) ApproveApplication(ctx *gin.Context) {
	appID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var dto services.ApproveApplicationDTO
	if err := ctx.ShouldBindJSON(&dto); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	app, err := c.applicationService.Approve(uint(appID), dto)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	utils.LogInfo("Заявка %d одобрена администратором", app.ID)

	ctx.JSON(http.StatusOK, c.applicationService.ToDTO(app))
}

type rejectRequest struct {
	Notes string `json:"notes" binding:"required,max=500"`
}

// RejectApplication отклоняет заявку. Причина отказа обязательна:
// она попадает в уведомление клиенту.
func (c *AdminController) RejectApplication(ctx *gin.Context) {
	appID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req rejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Rejection notes are required"})
		return
	}

	app, err := c.applicationService.Reject(uint(appID), req.Notes)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	utils.LogInfo("Заявка %d отклонена администратором", app.ID)

	ctx.JSON(http.StatusOK, c.applicationService.ToDTO(app))
}

// GetForm39 возвращает форму 39 по заявке
func (c *AdminController) GetForm39(ctx *gin.Context) {
	appID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	form, err := c.applicationService.RenderForm39(uint(appID))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.Data(http.StatusOK, "application/xml", []byte(form))
}

// GetSettings возвращает настройки системы
func (c *AdminController) GetSettings(ctx *gin.Context) {
	settings, err := c.settingsService.Get()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, settings)
}

// UpdateSettings изменяет настройки системы
func (c *AdminController) UpdateSettings(ctx *gin.Context) {
	var dto services.UpdateSettingsDTO
	if err := ctx.ShouldBindJSON(&dto); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	settings, err := c.settingsService.Update(dto)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	utils.LogInfo("Настройки системы обновлены")

	ctx.JSON(http.StatusOK, settings)
}

// GetMetrics возвращает снимок внутренних метрик
func (c *AdminController) GetMetrics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}
