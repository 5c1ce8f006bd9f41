package cancellation

import (
	"net/http"

	"courtly/internal/shared/utils/response"
	"courtly/internal/users"

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

// CancelRequest represents the cancellation payload
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid booking ID", nil, nil)
		return
	}

	rawUser, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "user not found in context", nil, nil)
		return
	}
	userStr, _ := rawUser.(string)
	requesterID, err := uuid.Parse(userStr)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "invalid user in context", nil, nil)
		return
	}

	role, _ := ctx.Get("user_role")
	asStaff := role == string(users.RoleAdmin) || role == string(users.RoleOperator)

	var req CancelRequest
	_ = ctx.ShouldBindJSON(&req) // body is optional

	result, err := c.service.Cancel(ctx.Request.Context(), bookingID, requesterID, asStaff, req.Reason)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "booking cancelled", result, nil)
}

// GetCancellation handles GET /api/v1/bookings/:id/cancellation
func (c *Controller) GetCancellation(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid booking ID", nil, nil)
		return
	}

	record, err := c.service.GetCancellation(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "cancellation retrieved", record, nil)
}

// PolicyRequest represents the policy upsert payload
type PolicyRequest struct {
	CourtID              string `json:"court_id" binding:"required,uuid"`
	AllowCancellation    *bool  `json:"allow_cancellation"`
	CutoffHours          int    `json:"cutoff_hours"`
	FeeType              string `json:"fee_type" binding:"required,oneof=NONE FIXED PERCENTAGE"`
	FeeAmount            string `json:"fee_amount"`
	RefundProcessingDays int    `json:"refund_processing_days"`
}

// SetPolicy handles PUT /api/v1/admin/cancellation-policies
func (c *Controller) SetPolicy(ctx *gin.Context) {
	var req PolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	feeAmount := decimal.Zero
	if req.FeeAmount != "" {
		parsed, err := decimal.NewFromString(req.FeeAmount)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid fee amount", nil, nil)
			return
		}
		feeAmount = parsed
	}

	policy := &CancellationPolicy{
		CourtID:              uuid.MustParse(req.CourtID),
		AllowCancellation:    true,
		CutoffHours:          req.CutoffHours,
		FeeType:              req.FeeType,
		FeeAmount:            feeAmount,
		RefundProcessingDays: req.RefundProcessingDays,
	}
	if req.AllowCancellation != nil {
		policy.AllowCancellation = *req.AllowCancellation
	}
	if policy.RefundProcessingDays <= 0 {
		policy.RefundProcessingDays = 5
	}

	if err := c.service.SetPolicy(ctx.Request.Context(), policy); err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "cancellation policy saved", policy, nil)
}
