package bookings

import (
	"context"
	"net/http"
	"time"

	"courtly/internal/shared/apperrors"
	"courtly/internal/shared/utils/response"
	"courtly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isStaff(ctx *gin.Context) bool {
	role, _ := ctx.Get("user_role")
	return role == string(users.RoleAdmin) || role == string(users.RoleOperator)
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "user not found in context", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	kind, err := ParseKind(req.Kind)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	if kind == KindAdministrative && !isStaff(ctx) {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "administrative bookings require operator access", nil, nil)
		return
	}

	method, err := NormalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	in := CreateBookingInput{
		CourtID:         uuid.MustParse(req.CourtID),
		UserID:          userID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Kind:            kind,
		PaymentMethod:   method,
		Notes:           req.Notes,
	}
	if req.Recurrence != nil {
		rec := req.Recurrence.toRecurrence()
		in.Recurrence = &rec
	}

	result, err := c.service.CreateBooking(ctx.Request.Context(), in)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "booking created", SeriesResponse{
		Booking:     result.Parent,
		Occurrences: result.Children,
		Skipped:     result.Skipped,
	}, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	userID, _ := currentUserID(ctx)
	if booking.UserID != userID && !isStaff(ctx) {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "not your booking", nil, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "booking retrieved", booking, nil)
}

// GetMyBookings handles GET /api/v1/bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "user not found in context", nil, nil)
		return
	}

	from := time.Now().UTC().AddDate(0, -1, 0)
	to := time.Now().UTC().AddDate(0, 2, 0)
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

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), userID, from, to)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "bookings retrieved", bookings, nil)
}

// ListOccurrences handles GET /api/v1/bookings/:id/occurrences
func (c *Controller) ListOccurrences(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid booking ID", nil, nil)
		return
	}

	children, err := c.service.ListChildren(ctx.Request.Context(), id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "occurrences retrieved", children, nil)
}

// CheckAvailability handles GET /api/v1/courts/:id/availability?start=...&end=...
func (c *Controller) CheckAvailability(ctx *gin.Context) {
	courtID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid court ID", nil, nil)
		return
	}

	start, err := time.Parse(time.RFC3339, ctx.Query("start"))
	if err != nil {
		response.RespondAppError(ctx, apperrors.New(apperrors.KindValidation, "start must be RFC3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, ctx.Query("end"))
	if err != nil {
		response.RespondAppError(ctx, apperrors.New(apperrors.KindValidation, "end must be RFC3339"))
		return
	}

	available, err := c.service.CheckAvailability(ctx.Request.Context(), courtID, start, end)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "availability checked", AvailabilityResponse{
		CourtID:   courtID.String(),
		StartTime: start,
		EndTime:   end,
		Available: available,
	}, nil)
}

// MarkPaid handles POST /api/v1/bookings/:id/pay
func (c *Controller) MarkPaid(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid booking ID", nil, nil)
		return
	}

	var req MarkPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.MarkPaid(ctx.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "booking marked paid", booking, nil)
}

// CheckIn handles POST /api/v1/bookings/:id/check-in
func (c *Controller) CheckIn(ctx *gin.Context) {
	c.runTransition(ctx, c.service.CheckIn, "checked in")
}

// CheckOut handles POST /api/v1/bookings/:id/check-out
func (c *Controller) CheckOut(ctx *gin.Context) {
	c.runTransition(ctx, c.service.CheckOut, "checked out")
}

// MarkNoShow handles POST /api/v1/bookings/:id/no-show
func (c *Controller) MarkNoShow(ctx *gin.Context) {
	c.runTransition(ctx, c.service.MarkNoShow, "marked no-show")
}

func (c *Controller) runTransition(ctx *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*Booking, error), message string) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid booking ID", nil, nil)
		return
	}

	booking, err := fn(ctx.Request.Context(), id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, message, booking, nil)
}
