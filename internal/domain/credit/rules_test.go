package credit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestIsEligible(t *testing.T) {
	asOf := *date(2026, 3, 10)

	assert.True(t, IsEligible(models.Credit{MinutesRemaining: 10}, asOf))
	assert.True(t, IsEligible(models.Credit{MinutesRemaining: 10, ExpiryDate: date(2026, 3, 10)}, asOf), "expiring today is still eligible")
	assert.False(t, IsEligible(models.Credit{MinutesRemaining: 10, ExpiryDate: date(2026, 3, 9)}, asOf))
	assert.False(t, IsEligible(models.Credit{MinutesRemaining: 0}, asOf))
}

func TestSelectEligible_Order(t *testing.T) {
	asOf := *date(2026, 3, 10)

	credits := []models.Credit{
		{ID: 1, MinutesRemaining: 30},
		{ID: 2, MinutesRemaining: 30, ExpiryDate: date(2026, 4, 1)},
		{ID: 3, MinutesRemaining: 30, ExpiryDate: date(2026, 3, 20)},
		{ID: 4, MinutesRemaining: 30, ExpiryDate: date(2026, 3, 20)},
		{ID: 5, MinutesRemaining: 30, ExpiryDate: date(2026, 3, 1)},
		{ID: 6, MinutesRemaining: 0, ExpiryDate: date(2026, 3, 11)},
	}

	got := SelectEligible(credits, asOf)
	require.NotNil(t, got)
	assert.Equal(t, uint(3), got.ID)

	got = SelectEligible([]models.Credit{credits[0], credits[1]}, asOf)
	require.NotNil(t, got)
	assert.Equal(t, uint(2), got.ID, "dated credit before one that never expires")

	assert.Nil(t, SelectEligible([]models.Credit{credits[4], credits[5]}, asOf))
}

func TestClampDeduct(t *testing.T) {
	assert.Equal(t, 35, ClampDeduct(60, 25))
	assert.Equal(t, 0, ClampDeduct(10, 25))
	assert.Equal(t, 0, ClampDeduct(0, 5))
	assert.Equal(t, 10, ClampDeduct(10, -3))
}

func TestMergeExpiry(t *testing.T) {
	early := date(2026, 3, 1)
	late := date(2026, 4, 1)

	assert.Equal(t, late, MergeExpiry(early, late))
	assert.Equal(t, late, MergeExpiry(late, early))
	assert.Equal(t, early, MergeExpiry(nil, early))
	assert.Equal(t, early, MergeExpiry(early, nil))
	assert.Nil(t, MergeExpiry(nil, nil))
}

func TestDaysExpiredAndHours(t *testing.T) {
	asOf := *date(2026, 3, 10)

	assert.Equal(t, 9, DaysExpired(models.Credit{ExpiryDate: date(2026, 3, 1)}, asOf))
	assert.Equal(t, 0, DaysExpired(models.Credit{ExpiryDate: date(2026, 3, 10)}, asOf))
	assert.Equal(t, 0, DaysExpired(models.Credit{}, asOf))

	assert.Equal(t, 1.5, Hours(90))
	assert.Equal(t, 0.33, Hours(20))
	assert.Equal(t, 0.92, Hours(55))
	assert.Equal(t, 0.0, Hours(0))
}
