package dto

import (
	"time"

	"github.com/BruksfildServices01/playpark/internal/models"
)

const dateLayout = "2006-01-02"

type CreditDTO struct {
	ID               uint    `json:"id"`
	GuardianID       uint    `json:"guardian_id"`
	LocationID       uint    `json:"location_id"`
	LocationName     string  `json:"location_name,omitempty"`
	MinutesRemaining int     `json:"minutes_remaining"`
	ExpiryDate       *string `json:"expiry_date"`
}

func NewCreditDTO(c models.Credit) CreditDTO {
	out := CreditDTO{
		ID:               c.ID,
		GuardianID:       c.GuardianID,
		LocationID:       c.LocationID,
		MinutesRemaining: c.MinutesRemaining,
		ExpiryDate:       FormatDate(c.ExpiryDate),
	}
	if c.Location != nil {
		out.LocationName = c.Location.Name
	}
	return out
}

type CreditSummaryDTO struct {
	CreditDTO
	HoursRemaining float64    `json:"hours_remaining"`
	IsExpired      bool       `json:"is_expired"`
	RecentVisits   []VisitDTO `json:"recent_visits"`
}

type ExpiredCreditDTO struct {
	CreditDTO
	DaysExpired int `json:"days_expired"`
}

type SweepResultDTO struct {
	AsOf    string `json:"as_of"`
	Zeroed  int    `json:"zeroed"`
	Skipped int    `json:"skipped"`
}

type SettlementDTO struct {
	TransactionID   string     `json:"transaction_id"`
	Duplicate       bool       `json:"duplicate"`
	MinutesCredited int        `json:"minutes_credited"`
	AmountPaid      string     `json:"amount_paid"`
	Credit          *CreditDTO `json:"credit,omitempty"`
}

type OccupancyDTO struct {
	Kind        string `json:"kind"`
	ID          uint   `json:"id"`
	LocationID  uint   `json:"location_id"`
	Current     int    `json:"current"`
	MaxCapacity int    `json:"max_capacity"`
	Available   int    `json:"available"`
	HasRoom     bool   `json:"has_room"`
}

func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}
