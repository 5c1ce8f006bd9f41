package cancellation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fee types for cancellation policies.
const (
	FeeNone       = "NONE"
	FeeFixed      = "FIXED"
	FeePercentage = "PERCENTAGE"
)

// CancellationPolicy governs cancellations for one court. A court without
// a policy row falls back to free cancellation at any time.
type CancellationPolicy struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourtID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"court_id"`
	AllowCancellation bool      `gorm:"default:true" json:"allow_cancellation"`

	// Cancelling closer to the start than this incurs the fee. Zero
	// means the fee never applies.
	CutoffHours int `gorm:"not null;default:0" json:"cutoff_hours"`

	FeeType string `gorm:"type:varchar(20);not null;default:'NONE';check:fee_type IN ('NONE','FIXED','PERCENTAGE')" json:"fee_type"`

	// FeeAmount is a currency amount for FIXED, a fraction (0.25 = 25%)
	// for PERCENTAGE, unused for NONE.
	FeeAmount decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"fee_amount"`

	RefundProcessingDays int `gorm:"not null;default:5" json:"refund_processing_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CancellationPolicy) TableName() string { return "cancellation_policies" }

// Cancellation is the audit record of one cancelled booking, including
// the fee charged and the refund owed to the requester.
type Cancellation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Reason       string          `json:"reason,omitempty"`
	Fee          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"fee"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"refund_amount"`

	// RefundDueBy is when the external refund processor is expected to
	// have settled.
	RefundDueBy *time.Time `json:"refund_due_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Cancellation) TableName() string { return "cancellations" }
