package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit is a prepaid-minutes balance for one guardian at one location.
// ExpiryDate is a calendar date stored as midnight UTC.
type Credit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GuardianID uint  `gorm:"not null;uniqueIndex:ux_credits_guardian_location" json:"guardian_id"`
	Guardian   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	LocationID uint      `gorm:"not null;uniqueIndex:ux_credits_guardian_location" json:"location_id"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"location,omitempty"`

	MinutesRemaining int        `gorm:"not null;default:0;check:minutes_remaining >= 0" json:"minutes_remaining"`
	ExpiryDate       *time.Time `gorm:"type:date" json:"expiry_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliedPurchase records a purchase-completed transaction that has already
// been turned into a top-up.
type AppliedPurchase struct {
	TransactionID string `gorm:"primaryKey;size:100" json:"transaction_id"`
	OrderID       *uint  `json:"order_id"`

	GuardianID      uint            `gorm:"index" json:"guardian_id"`
	LocationID      uint            `json:"location_id"`
	MinutesCredited int             `json:"minutes_credited"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount_paid"`
	CreditID        *uint           `json:"credit_id"`

	AppliedAt time.Time `json:"applied_at"`
}
