package models

import "time"

// Child belongs to exactly one guardian. Children with visit history are
// deactivated, never deleted.
type Child struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GuardianID uint  `gorm:"index;not null" json:"guardian_id"`
	Guardian   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"guardian,omitempty"`

	FullName  string     `gorm:"size:100;not null" json:"full_name"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
