package models

import "time"

// Visit is one check-in/check-out episode. A nil CheckOutTime means the
// visit is still active.
type Visit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ChildID uint   `gorm:"index;not null" json:"child_id"`
	Child   *Child `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"child,omitempty"`

	LocationID uint  `gorm:"index;not null" json:"location_id"`
	ZoneID     *uint `gorm:"index" json:"zone_id"`
	SessionID  *uint `gorm:"index" json:"session_id"`
	CreditID   *uint `gorm:"index" json:"credit_id"`

	VisitType string `gorm:"size:20;not null" json:"visit_type"`

	CheckInTime  *time.Time `gorm:"index" json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	MinutesUsed  *int       `json:"minutes_used"`

	CheckInBy  *uint `json:"check_in_by"`
	CheckOutBy *uint `json:"check_out_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
