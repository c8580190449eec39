package visit

import (
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/models"
)

// ===============================
// Visit Status
// ===============================

// Status is derived from the row, never stored. StatusNone is the absence
// of a visit.
type Status string

const (
	StatusNone   Status = "none"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

func StatusOf(v *models.Visit) Status {
	switch {
	case v == nil:
		return StatusNone
	case v.CheckOutTime == nil:
		return StatusActive
	default:
		return StatusClosed
	}
}

// ===============================
// Visit Type
// ===============================

type Type string

const (
	TypePlayTime Type = "play_time"
	TypeService  Type = "service"
	TypeBundle   Type = "bundle"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypePlayTime, TypeService, TypeBundle:
		return t, nil
	default:
		return "", httperr.ErrBusiness("invalid_visit_type")
	}
}

// ===============================
// Validations
// ===============================

func CanClose(current Status) error {
	switch current {
	case StatusActive:
		return nil
	case StatusClosed:
		return httperr.ErrConflict("already_checked_out")
	default:
		return httperr.ErrNotFound("visit_not_found")
	}
}
