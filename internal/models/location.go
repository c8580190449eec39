package models

import "time"

type Location struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Address  string `gorm:"size:255" json:"address"`
	City     string `gorm:"size:100" json:"city"`
	Timezone string `gorm:"size:50;default:'America/Bogota'" json:"timezone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Zone struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	LocationID uint     `gorm:"index;not null" json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Name        string `gorm:"size:100;not null" json:"name"`
	MaxCapacity int    `gorm:"not null;check:max_capacity >= 0" json:"max_capacity"`
	MinAge      *int   `json:"min_age"`
	MaxAge      *int   `json:"max_age"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
