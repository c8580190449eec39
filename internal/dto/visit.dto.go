package dto

import (
	"time"

	"github.com/BruksfildServices01/playpark/internal/models"
)

type VisitDTO struct {
	ID           uint       `json:"id"`
	ChildID      uint       `json:"child_id"`
	ChildName    string     `json:"child_name,omitempty"`
	LocationID   uint       `json:"location_id"`
	ZoneID       *uint      `json:"zone_id,omitempty"`
	SessionID    *uint      `json:"session_id,omitempty"`
	CreditID     *uint      `json:"credit_id,omitempty"`
	VisitType    string     `json:"visit_type"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	MinutesUsed  *int       `json:"minutes_used"`

	// Only set for active visits.
	CurrentDurationMinutes *int `json:"current_duration_minutes,omitempty"`
}

// status is passed in so this package stays free of domain imports.
func NewVisitDTO(v models.Visit, status string) VisitDTO {
	out := VisitDTO{
		ID:           v.ID,
		ChildID:      v.ChildID,
		LocationID:   v.LocationID,
		ZoneID:       v.ZoneID,
		SessionID:    v.SessionID,
		CreditID:     v.CreditID,
		VisitType:    v.VisitType,
		Status:       status,
		CheckInTime:  v.CheckInTime,
		CheckOutTime: v.CheckOutTime,
		MinutesUsed:  v.MinutesUsed,
	}
	if v.Child != nil {
		out.ChildName = v.Child.FullName
	}
	return out
}

type CheckOutDTO struct {
	Visit           VisitDTO `json:"visit"`
	CreditRemaining *int     `json:"credit_remaining,omitempty"`
}

type VisitStatsDTO struct {
	From                   string           `json:"from"`
	To                     string           `json:"to"`
	TotalVisits            int64            `json:"total_visits"`
	ActiveVisits           int64            `json:"active_visits"`
	ByType                 map[string]int64 `json:"by_type"`
	AverageDurationMinutes int              `json:"average_duration_minutes"`
}
