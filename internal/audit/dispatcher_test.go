package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderStub struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorderStub) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	rec := &recorderStub{}
	d := NewDispatcher(rec, nil)

	id := uint(7)
	d.Dispatch(Event{Action: ActionVisitCheckedIn, Entity: "visit", EntityID: &id})
	d.Dispatch(Event{Action: ActionVisitCheckedOut, Entity: "visit", EntityID: &id})
	d.Close()

	require.Len(t, rec.events, 2)
	assert.Equal(t, ActionVisitCheckedIn, rec.events[0].Action)
	assert.Equal(t, ActionVisitCheckedOut, rec.events[1].Action)
}

func TestDispatcher_RecorderErrorDoesNotStopWorker(t *testing.T) {
	rec := &recorderStub{err: errors.New("db down")}
	d := NewDispatcher(rec, nil)

	d.Dispatch(Event{Action: ActionCreditsSwept})
	d.Dispatch(Event{Action: ActionCreditToppedUp})
	d.Close()

	assert.Len(t, rec.events, 2)
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(Event{Action: ActionPurchaseApplied})
		d.Close()
	})
}
