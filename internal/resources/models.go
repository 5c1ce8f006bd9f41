package resources

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Facility is a physical site (a club) owning one or more courts.
type Facility struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Address   string    `json:"address"`
	Timezone  string    `gorm:"default:'UTC'" json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Court is a bookable resource with a base hourly price.
type Court struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FacilityID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"facility_id"`
	Name             string          `gorm:"not null" json:"name"`
	Surface          string          `json:"surface"`
	Indoor           bool            `json:"indoor"`
	BasePricePerHour decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price_per_hour"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Facility *Facility `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
}

// FacilityPolicy carries the operating-hours window and the
// maximum-advance-booking horizon for every court of a facility.
// Open/Close are minutes since midnight, half-open [open, close).
type FacilityPolicy struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FacilityID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"facility_id"`
	OpenMinute     int       `gorm:"not null;default:360" json:"open_minute"`   // 06:00
	CloseMinute    int       `gorm:"not null;default:1380" json:"close_minute"` // 23:00
	MaxAdvanceDays int       `gorm:"not null;default:30" json:"max_advance_days"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Maintenance window statuses. SCHEDULED and ACTIVE block bookings.
const (
	MaintenanceScheduled = "SCHEDULED"
	MaintenanceActive    = "ACTIVE"
	MaintenanceCompleted = "COMPLETED"
	MaintenanceCancelled = "CANCELLED"
)

// MaintenanceWindow is a blackout interval on a court.
type MaintenanceWindow struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourtID   uuid.UUID `gorm:"type:uuid;index;not null" json:"court_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Reason    string    `json:"reason"`
	Status    string    `gorm:"type:varchar(20);check:status IN ('SCHEDULED','ACTIVE','COMPLETED','CANCELLED');default:'SCHEDULED'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blocks reports whether the window counts toward availability checks.
func (m *MaintenanceWindow) Blocks() bool {
	return m.Status == MaintenanceScheduled || m.Status == MaintenanceActive
}

func (Facility) TableName() string          { return "facilities" }
func (Court) TableName() string             { return "courts" }
func (FacilityPolicy) TableName() string    { return "facility_policies" }
func (MaintenanceWindow) TableName() string { return "maintenance_windows" }
