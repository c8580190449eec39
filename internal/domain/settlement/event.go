package settlement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

// PurchaseCompleted is emitted by the order subsystem once a purchase of
// play-minutes has been paid. TransactionID is stable across redeliveries.
type PurchaseCompleted struct {
	TransactionID string          `json:"transaction_id"`
	OrderID       *uint           `json:"order_id,omitempty"`
	GuardianID    uint            `json:"guardian_id"`
	LocationID    uint            `json:"location_id"`
	Minutes       int             `json:"minutes"`
	ExpiryDate    string          `json:"expiry_date,omitempty"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

func (e PurchaseCompleted) Validate() error {
	if strings.TrimSpace(e.TransactionID) == "" {
		return httperr.ErrBusiness("missing_transaction_id")
	}
	if e.GuardianID == 0 {
		return httperr.ErrBusiness("invalid_guardian")
	}
	if e.LocationID == 0 {
		return httperr.ErrBusiness("invalid_location")
	}
	if e.Minutes <= 0 {
		return httperr.ErrBusiness("invalid_minutes")
	}
	if e.AmountPaid.IsNegative() {
		return httperr.ErrBusiness("invalid_amount")
	}
	if _, err := e.Expiry(); err != nil {
		return err
	}
	return nil
}

// Expiry parses ExpiryDate (YYYY-MM-DD). An empty value means no expiry.
func (e PurchaseCompleted) Expiry() (*time.Time, error) {
	if e.ExpiryDate == "" {
		return nil, nil
	}
	d, err := timezone.ParseDate(e.ExpiryDate)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_expiry_date")
	}
	return &d, nil
}
