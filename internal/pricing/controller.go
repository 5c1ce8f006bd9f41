package pricing

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

// QuoteRequest represents the price quote payload
type QuoteRequest struct {
	CourtID         string    `json:"court_id" binding:"required,uuid"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
}

// Quote handles POST /api/v1/pricing/quote. Works with or without an
// authenticated user; the discount only applies when one is present.
func (c *Controller) Quote(ctx *gin.Context) {
	var req QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	var userID *uuid.UUID
	if raw, exists := ctx.Get("user_id"); exists {
		if s, ok := raw.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				userID = &id
			}
		}
	}

	courtID := uuid.MustParse(req.CourtID)
	breakdown, err := c.service.Quote(ctx.Request.Context(), userID, courtID, req.StartTime, req.DurationMinutes)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "quote calculated", breakdown, nil)
}

// ListRules handles GET /api/v1/admin/pricing/rules?facility_id=...
func (c *Controller) ListRules(ctx *gin.Context) {
	facilityID, err := uuid.Parse(ctx.Query("facility_id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid facility ID", nil, nil)
		return
	}

	rules, err := c.service.ListRules(ctx.Request.Context(), facilityID)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "rules retrieved", rules, nil)
}

// RuleRequest represents the rule create/update payload
type RuleRequest struct {
	FacilityID     string     `json:"facility_id" binding:"required,uuid"`
	CourtID        *string    `json:"court_id" binding:"omitempty,uuid"`
	Name           string     `json:"name" binding:"required"`
	StartMinute    int        `json:"start_minute"`
	EndMinute      int        `json:"end_minute" binding:"required"`
	Weekdays       []int      `json:"weekdays" binding:"required,min=1,dive,min=0,max=6"`
	SeasonStart    *time.Time `json:"season_start"`
	SeasonEnd      *time.Time `json:"season_end"`
	Multiplier     string     `json:"multiplier" binding:"required"`
	MemberDiscount string     `json:"member_discount"`
	IsActive       *bool      `json:"is_active"`
}

func (req *RuleRequest) toRule() (*PricingRule, error) {
	multiplier, err := decimal.NewFromString(req.Multiplier)
	if err != nil {
		return nil, err
	}
	discount := decimal.Zero
	if req.MemberDiscount != "" {
		discount, err = decimal.NewFromString(req.MemberDiscount)
		if err != nil {
			return nil, err
		}
	}

	days := make([]time.Weekday, 0, len(req.Weekdays))
	for _, d := range req.Weekdays {
		days = append(days, time.Weekday(d))
	}

	rule := &PricingRule{
		FacilityID:     uuid.MustParse(req.FacilityID),
		Name:           req.Name,
		StartMinute:    req.StartMinute,
		EndMinute:      req.EndMinute,
		Weekdays:       EncodeWeekdays(days),
		SeasonStart:    req.SeasonStart,
		SeasonEnd:      req.SeasonEnd,
		Multiplier:     multiplier,
		MemberDiscount: discount,
		IsActive:       true,
	}
	if req.CourtID != nil {
		id := uuid.MustParse(*req.CourtID)
		rule.CourtID = &id
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	return rule, nil
}

// CreateRule handles POST /api/v1/admin/pricing/rules
func (c *Controller) CreateRule(ctx *gin.Context) {
	var req RuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	rule, err := req.toRule()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid decimal value", nil, nil)
		return
	}
	if err := c.service.CreateRule(ctx.Request.Context(), rule); err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "rule created", rule, nil)
}

// UpdateRule handles PUT /api/v1/admin/pricing/rules/:id
func (c *Controller) UpdateRule(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid rule ID", nil, nil)
		return
	}

	var req RuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	rule, err := req.toRule()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid decimal value", nil, nil)
		return
	}
	rule.ID = id
	if err := c.service.UpdateRule(ctx.Request.Context(), rule); err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "rule updated", rule, nil)
}

// DeactivateRule handles DELETE /api/v1/admin/pricing/rules/:id
func (c *Controller) DeactivateRule(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid rule ID", nil, nil)
		return
	}

	if err := c.service.DeactivateRule(ctx.Request.Context(), id); err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "rule deactivated", nil, nil)
}
