package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/httperr"
)

func validEvent() PurchaseCompleted {
	return PurchaseCompleted{
		TransactionID: "tx-1",
		GuardianID:    1,
		LocationID:    2,
		Minutes:       120,
		ExpiryDate:    "2026-12-31",
		AmountPaid:    decimal.RequireFromString("45000.00"),
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validEvent().Validate())

	cases := map[string]func(e *PurchaseCompleted){
		"missing_transaction_id": func(e *PurchaseCompleted) { e.TransactionID = "  " },
		"invalid_guardian":       func(e *PurchaseCompleted) { e.GuardianID = 0 },
		"invalid_location":       func(e *PurchaseCompleted) { e.LocationID = 0 },
		"invalid_minutes":        func(e *PurchaseCompleted) { e.Minutes = 0 },
		"invalid_amount":         func(e *PurchaseCompleted) { e.AmountPaid = decimal.NewFromInt(-1) },
		"invalid_expiry_date":    func(e *PurchaseCompleted) { e.ExpiryDate = "31/12/2026" },
	}

	for code, mutate := range cases {
		t.Run(code, func(t *testing.T) {
			e := validEvent()
			mutate(&e)
			err := e.Validate()
			assert.True(t, httperr.IsBusiness(err, code), "got %v", err)
			assert.True(t, httperr.Is(err, httperr.KindInvalid))
		})
	}
}

func TestExpiry(t *testing.T) {
	e := validEvent()
	d, err := e.Expiry()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), *d)

	e.ExpiryDate = ""
	d, err = e.Expiry()
	require.NoError(t, err)
	assert.Nil(t, d)
}
