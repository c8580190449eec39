package models

import "time"

type Service struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	LocationID uint `gorm:"index" json:"location_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	DurationMin int    `json:"duration_min"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is a scheduled instance of a Service with its own capacity.
type Session struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ServiceID uint    `gorm:"index" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	LocationID uint  `gorm:"index;not null" json:"location_id"`
	ZoneID     *uint `json:"zone_id"`

	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxCapacity int       `gorm:"not null;check:max_capacity >= 0" json:"max_capacity"`
	IsCanceled  bool      `gorm:"default:false" json:"is_canceled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
