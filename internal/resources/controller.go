package resources

import (
	"net/http"
	"time"

	"courtly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListCourts handles GET /api/v1/courts
func (c *Controller) ListCourts(ctx *gin.Context) {
	var facilityID *uuid.UUID
	if raw := ctx.Query("facility_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid facility ID", nil, nil)
			return
		}
		facilityID = &id
	}

	courts, err := c.service.ListCourts(ctx.Request.Context(), facilityID)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "courts retrieved", courts, nil)
}

// GetCourt handles GET /api/v1/courts/:id
func (c *Controller) GetCourt(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid court ID", nil, nil)
		return
	}

	court, err := c.service.GetCourt(ctx.Request.Context(), id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "court retrieved", court, nil)
}

// CreateCourtRequest represents the admin court creation payload
type CreateCourtRequest struct {
	FacilityID       string `json:"facility_id" binding:"required,uuid"`
	Name             string `json:"name" binding:"required"`
	Surface          string `json:"surface"`
	Indoor           bool   `json:"indoor"`
	BasePricePerHour string `json:"base_price_per_hour" binding:"required"`
}

// CreateCourt handles POST /api/v1/admin/courts
func (c *Controller) CreateCourt(ctx *gin.Context) {
	var req CreateCourtRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	price, err := decimal.NewFromString(req.BasePricePerHour)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid base price", nil, nil)
		return
	}

	court := &Court{
		FacilityID:       uuid.MustParse(req.FacilityID),
		Name:             req.Name,
		Surface:          req.Surface,
		Indoor:           req.Indoor,
		BasePricePerHour: price,
		IsActive:         true,
	}
	if err := c.service.CreateCourt(ctx.Request.Context(), court); err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "court created", court, nil)
}

// ScheduleMaintenanceRequest represents the maintenance scheduling payload
type ScheduleMaintenanceRequest struct {
	CourtID   string    `json:"court_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Reason    string    `json:"reason"`
}

// ScheduleMaintenance handles POST /api/v1/admin/maintenance
func (c *Controller) ScheduleMaintenance(ctx *gin.Context) {
	var req ScheduleMaintenanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	window := &MaintenanceWindow{
		CourtID:   uuid.MustParse(req.CourtID),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	if err := c.service.ScheduleMaintenance(ctx.Request.Context(), window); err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "maintenance scheduled", window, nil)
}

// ListMaintenance handles GET /api/v1/courts/:id/maintenance
func (c *Controller) ListMaintenance(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid court ID", nil, nil)
		return
	}

	from := time.Now()
	to := from.AddDate(0, 1, 0)
	if raw := ctx.Query("from"); raw != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw); perr == nil {
			from = parsed
		}
	}
	if raw := ctx.Query("to"); raw != "" {
		if parsed, perr := time.Parse(time.RFC3339, raw); perr == nil {
			to = parsed
		}
	}

	windows, err := c.service.ListMaintenance(ctx.Request.Context(), id, from, to)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "maintenance windows retrieved", windows, nil)
}
