package application

import (
	"time"

	"github.com/shopspring/decimal"

	"line-of-credit/internal/domain/transaction"
)

type State string

const (
	StateOpen        State = "Open"
	StateOutstanding State = "Outstanding"
	StateRepaid      State = "Repaid"
	StateCancelled   State = "Cancelled"
	StateRejected    State = "Rejected"
)

// Table: line_of_credit_applications
type Application struct {
	// Internal numeric PK
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// Public identifier (32-char lowercase hex)
	ApplicationID   string          `gorm:"column:application_id;size:32;not null;uniqueIndex:ux_applications_application_id" json:"applicationId"`
	UserID          string          `gorm:"column:user_id;size:64;not null;index:idx_applications_user_created,priority:1" json:"userId"`
	RequestedAmount decimal.Decimal `gorm:"column:requested_amount;type:decimal(18,2);not null" json:"requestedAmount"`
	State           State           `gorm:"column:state;type:varchar(16);not null;default:'Open'" json:"state"`
	ExpressDelivery bool            `gorm:"column:express_delivery;not null;default:false" json:"expressDelivery"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_applications_user_created,priority:2" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// has-many; the repositories never preload it
	Transactions []transaction.Transaction `gorm:"foreignKey:ApplicationID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
}

func (Application) TableName() string { return "line_of_credit_applications" }
