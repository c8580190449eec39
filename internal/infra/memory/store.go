// Package memory implements the repository contracts on in-process maps.
// It backs the use case tests and local runs without postgres.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/models"
)

// Store is one logical database. A transaction holds the store lock for its
// whole duration and is rolled back from a snapshot when it fails, so every
// unit of work is serializable.
type Store struct {
	mu sync.Mutex

	nextID uint

	users     map[uint]models.User
	children  map[uint]models.Child
	locations map[uint]models.Location
	zones     map[uint]models.Zone
	sessions  map[uint]models.Session
	credits   map[uint]models.Credit
	visits    map[uint]models.Visit
	applied   map[string]models.AppliedPurchase

	faults map[string][]error
}

func NewStore() *Store {
	return &Store{
		users:     make(map[uint]models.User),
		children:  make(map[uint]models.Child),
		locations: make(map[uint]models.Location),
		zones:     make(map[uint]models.Zone),
		sessions:  make(map[uint]models.Session),
		credits:   make(map[uint]models.Credit),
		visits:    make(map[uint]models.Visit),
		applied:   make(map[string]models.AppliedPurchase),
		faults:    make(map[string][]error),
	}
}

// --------------------------------------------------
// Locking / transactions
// --------------------------------------------------

type snapshot struct {
	nextID  uint
	credits map[uint]models.Credit
	visits  map[uint]models.Visit
	applied map[string]models.AppliedPurchase
}

// Only the tables the engine writes are snapshotted; directory tables are
// written by seeding alone.
func (s *Store) snapshot() snapshot {
	snap := snapshot{
		nextID:  s.nextID,
		credits: make(map[uint]models.Credit, len(s.credits)),
		visits:  make(map[uint]models.Visit, len(s.visits)),
		applied: make(map[string]models.AppliedPurchase, len(s.applied)),
	}
	for k, v := range s.credits {
		snap.credits[k] = v
	}
	for k, v := range s.visits {
		snap.visits[k] = v
	}
	for k, v := range s.applied {
		snap.applied[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.nextID = snap.nextID
	s.credits = snap.credits
	s.visits = snap.visits
	s.applied = snap.applied
}

// guard runs fn under the store lock unless the caller already holds it.
func (s *Store) guard(inTx bool, fn func() error) error {
	if inTx {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) withTx(inTx bool, fn func() error) error {
	if inTx {
		return fn()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) newID() uint {
	s.nextID++
	return s.nextID
}

// --------------------------------------------------
// Fault injection
// --------------------------------------------------

// FailNext makes the next len(errs) calls of op return errs in order.
// Op names match repository method names, e.g. "CreateVisit".
func (s *Store) FailNext(op string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], errs...)
}

// RetryableFault builds an error that the repositories would return for a
// race-guard violation.
func RetryableFault(reason string) error {
	return fmt.Errorf("%w: %s", httperr.ErrRetryable, reason)
}

func (s *Store) fault(op string) error {
	queue := s.faults[op]
	if len(queue) == 0 {
		return nil
	}
	s.faults[op] = queue[1:]
	return queue[0]
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.newID()
	s.users[u.ID] = u
	return u
}

func (s *Store) AddChild(c models.Child) models.Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID()
	s.children[c.ID] = c
	return c
}

func (s *Store) AddLocation(l models.Location) models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.newID()
	s.locations[l.ID] = l
	return l
}

func (s *Store) AddZone(z models.Zone) models.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	z.ID = s.newID()
	s.zones[z.ID] = z
	return z
}

func (s *Store) AddSession(ss models.Session) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss.ID = s.newID()
	s.sessions[ss.ID] = ss
	return ss
}

// AddCredit inserts a credit row as-is, including rows that would break the
// (guardian, location) uniqueness, so legacy duplicates can be modelled.
func (s *Store) AddCredit(c models.Credit) models.Credit {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID()
	s.credits[c.ID] = c
	return c
}

// AddVisit inserts a visit row directly, bypassing check-in.
func (s *Store) AddVisit(v models.Visit) models.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.newID()
	s.visits[v.ID] = v
	return v
}

// --------------------------------------------------
// Inspection
// --------------------------------------------------

func (s *Store) Credit(id uint) (models.Credit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credits[id]
	return c, ok
}

func (s *Store) Visit(id uint) (models.Visit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visits[id]
	return v, ok
}

func (s *Store) Credits() []models.Credit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Credit, 0, len(s.credits))
	for _, c := range s.credits {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Visits() []models.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Visit, 0, len(s.visits))
	for _, v := range s.visits {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) AppliedPurchases() []models.AppliedPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AppliedPurchase, 0, len(s.applied))
	for _, a := range s.applied {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out
}

// --------------------------------------------------
// Shared table logic (store lock held)
// --------------------------------------------------

func (s *Store) getLocation(id uint) (*models.Location, error) {
	l, ok := s.locations[id]
	if !ok {
		return nil, httperr.ErrNotFound("location_not_found")
	}
	return &l, nil
}

func (s *Store) getZone(id uint) (*models.Zone, error) {
	z, ok := s.zones[id]
	if !ok {
		return nil, httperr.ErrNotFound("zone_not_found")
	}
	return &z, nil
}

func (s *Store) getSession(id uint) (*models.Session, error) {
	ss, ok := s.sessions[id]
	if !ok {
		return nil, httperr.ErrNotFound("session_not_found")
	}
	return &ss, nil
}

func (s *Store) getCredit(id uint) (*models.Credit, error) {
	c, ok := s.credits[id]
	if !ok {
		return nil, httperr.ErrNotFound("credit_not_found")
	}
	return &c, nil
}

func (s *Store) countOpen(match func(v models.Visit) bool) int {
	n := 0
	for _, v := range s.visits {
		if v.CheckOutTime == nil && match(v) {
			n++
		}
	}
	return n
}

func (s *Store) countOpenInZone(zoneID uint) int {
	return s.countOpen(func(v models.Visit) bool {
		return v.ZoneID != nil && *v.ZoneID == zoneID
	})
}

func (s *Store) countOpenInSession(sessionID uint) int {
	return s.countOpen(func(v models.Visit) bool {
		return v.SessionID != nil && *v.SessionID == sessionID
	})
}

func (s *Store) eligibleCredits(guardianID, locationID uint, asOf time.Time) []models.Credit {
	var out []models.Credit
	for _, c := range s.credits {
		if c.GuardianID == guardianID && c.LocationID == locationID && credit.IsEligible(c, asOf) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return credit.Less(out[i], out[j]) })
	return out
}

func (s *Store) deduct(creditID uint, minutes int) (int, error) {
	if err := s.fault("DeductMinutes"); err != nil {
		return 0, err
	}
	c, ok := s.credits[creditID]
	if !ok {
		return 0, httperr.ErrNotFound("credit_not_found")
	}
	c.MinutesRemaining = credit.ClampDeduct(c.MinutesRemaining, minutes)
	c.UpdatedAt = time.Now()
	s.credits[creditID] = c
	return c.MinutesRemaining, nil
}

// upsertTopUp merges into the lowest-id credit of the pair, as the unique
// index guarantees there is at most one outside of seeded legacy data.
func (s *Store) upsertTopUp(guardianID, locationID uint, minutes int, expiry *time.Time) (*models.Credit, error) {
	if err := s.fault("UpsertTopUp"); err != nil {
		return nil, err
	}

	var existing *models.Credit
	for _, c := range s.credits {
		if c.GuardianID != guardianID || c.LocationID != locationID {
			continue
		}
		if existing == nil || c.ID < existing.ID {
			c := c
			existing = &c
		}
	}

	now := time.Now()
	if existing != nil {
		existing.MinutesRemaining += minutes
		existing.ExpiryDate = credit.MergeExpiry(existing.ExpiryDate, expiry)
		existing.UpdatedAt = now
		s.credits[existing.ID] = *existing
		return existing, nil
	}

	c := models.Credit{
		ID:               s.newID(),
		GuardianID:       guardianID,
		LocationID:       locationID,
		MinutesRemaining: minutes,
		ExpiryDate:       expiry,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.credits[c.ID] = c
	return &c, nil
}

func (s *Store) withLocation(c models.Credit) models.Credit {
	if l, ok := s.locations[c.LocationID]; ok {
		c.Location = &l
	}
	return c
}

func (s *Store) withChild(v models.Visit) models.Visit {
	if c, ok := s.children[v.ChildID]; ok {
		v.Child = &c
	}
	return v
}
