package queue

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/domain/settlement"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/infra/memory"
	"github.com/BruksfildServices01/playpark/internal/models"
	ucSettlement "github.com/BruksfildServices01/playpark/internal/usecase/settlement"
)

type applierFunc func(ctx context.Context, ev settlement.PurchaseCompleted) (*ucSettlement.ApplyResult, error)

func (f applierFunc) Execute(ctx context.Context, ev settlement.PurchaseCompleted) (*ucSettlement.ApplyResult, error) {
	return f(ctx, ev)
}

func TestHandle_AppliesOnceAcrossRedeliveries(t *testing.T) {
	store := memory.NewStore()
	guardian := store.AddUser(models.User{FullName: "Ana Ruiz", Email: "ana@example.com", Role: models.RoleParent, IsActive: true})
	location := store.AddLocation(models.Location{Name: "Centro", Timezone: "America/Bogota", IsActive: true})

	apply := ucSettlement.NewApplyPurchase(memory.NewSettlementRepository(store), nil, nil)
	pc := NewPurchaseConsumer("amqp://unused", "purchase.completed", apply, nil)

	body := []byte(`{"transaction_id":"tx-9","guardian_id":` + itoa(guardian.ID) +
		`,"location_id":` + itoa(location.ID) + `,"minutes":30,"amount_paid":"10.00"}`)

	assert.Equal(t, ack, pc.handle(context.Background(), body, false))
	assert.Equal(t, ack, pc.handle(context.Background(), body, true))

	credits := store.Credits()
	require.Len(t, credits, 1)
	assert.Equal(t, 30, credits[0].MinutesRemaining)
}

func TestHandle_Dispositions(t *testing.T) {
	valid := []byte(`{"transaction_id":"tx-1","guardian_id":1,"location_id":2,"minutes":30,"amount_paid":"0"}`)

	tests := []struct {
		name        string
		body        []byte
		err         error
		redelivered bool
		want        disposition
	}{
		{name: "undecodable", body: []byte(`{not json`), want: reject},
		{name: "invalid event", body: valid, err: httperr.ErrBusiness("invalid_minutes"), want: reject},
		{name: "unknown location", body: valid, err: httperr.ErrNotFound("location_not_found"), want: reject},
		{name: "transient", body: valid, err: httperr.ErrTransient("storage_contention"), want: requeue},
		{name: "storage down", body: valid, err: errors.New("connection refused"), want: requeue},
		{name: "storage down again", body: valid, err: errors.New("connection refused"), redelivered: true, want: reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := NewPurchaseConsumer("amqp://unused", "q", applierFunc(
				func(context.Context, settlement.PurchaseCompleted) (*ucSettlement.ApplyResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &ucSettlement.ApplyResult{}, nil
				}), nil)

			assert.Equal(t, tt.want, pc.handle(context.Background(), tt.body, tt.redelivered))
		})
	}
}

func TestRun_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pc := NewPurchaseConsumer("amqp://127.0.0.1:1/", "q", nil, nil)
	assert.NoError(t, pc.Run(ctx))
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
