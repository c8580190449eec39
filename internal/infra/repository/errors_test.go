package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/playpark/internal/httperr"
)

func TestClassify(t *testing.T) {
	for _, code := range []string{"23505", "40001", "40P01", "55P03"} {
		err := classify(fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, ConstraintName: "ux_visits_child_active"}))
		assert.ErrorIs(t, err, httperr.ErrRetryable, code)
	}

	err := classify(&pgconn.PgError{Code: "23503"})
	assert.True(t, httperr.IsBusiness(err, "reference_not_found"))

	other := &pgconn.PgError{Code: "42P01"}
	assert.Same(t, other, classify(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
	assert.NoError(t, classify(nil))
}

func TestNotFound(t *testing.T) {
	err := notFound(gorm.ErrRecordNotFound, "zone_not_found")
	assert.True(t, httperr.IsBusiness(err, "zone_not_found"))
	assert.True(t, httperr.Is(err, httperr.KindNotFound))

	err = notFound(&pgconn.PgError{Code: "40001"}, "zone_not_found")
	assert.ErrorIs(t, err, httperr.ErrRetryable)
}
