package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"booking-service/internal/domain"
)

// fakeDB is an in-memory store with just enough transaction semantics for
// the reservation paths: resource writes apply immediately and are undone on
// rollback, reservation inserts become visible on commit, and row locks taken
// by FindAvailableByIDForUpdate are held until the transaction ends.
type fakeDB struct {
	mu           sync.Mutex
	resources    map[int64]*domain.Resource
	reservations []*domain.Reservation
	nextID       int64

	rowLocksMu sync.Mutex
	rowLocks   map[int64]*sync.Mutex

	beforeConditionalUpdate func()
	findErr                 error
	createErr               error
}

func newFakeDB(resources ...*domain.Resource) *fakeDB {
	db := &fakeDB{
		resources: make(map[int64]*domain.Resource),
		rowLocks:  make(map[int64]*sync.Mutex),
	}
	for _, r := range resources {
		db.resources[r.ID] = r
	}

	return db
}

type fakeTx struct {
	pending []*domain.Reservation
	undo    []func()
	locks   []*sync.Mutex
}

type fakeTxKey struct{}

func txFrom(ctx context.Context) *fakeTx {
	tx, _ := ctx.Value(fakeTxKey{}).(*fakeTx)
	return tx
}

func (db *fakeDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx := &fakeTx{}

	defer func() {
		if p := recover(); p != nil {
			db.end(tx, false)
			panic(p)
		}
		db.end(tx, err == nil)
	}()

	return fn(context.WithValue(ctx, fakeTxKey{}, tx))
}

func (db *fakeDB) end(tx *fakeTx, commit bool) {
	db.mu.Lock()
	if commit {
		db.reservations = append(db.reservations, tx.pending...)
	} else {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
	}
	db.mu.Unlock()

	for _, l := range tx.locks {
		l.Unlock()
	}
}

func (db *fakeDB) rowLock(id int64) *sync.Mutex {
	db.rowLocksMu.Lock()
	defer db.rowLocksMu.Unlock()

	l, ok := db.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		db.rowLocks[id] = l
	}

	return l
}

func (db *fakeDB) GetByID(_ context.Context, id int64) (*domain.Resource, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	r, ok := db.resources[id]
	if !ok {
		return nil, nil
	}
	cp := *r

	return &cp, nil
}

func (db *fakeDB) FindAvailableByID(ctx context.Context, id int64) (*domain.Resource, error) {
	if db.findErr != nil {
		return nil, db.findErr
	}

	r, err := db.GetByID(ctx, id)
	if err != nil || r == nil || !r.Available {
		return nil, err
	}

	return r, nil
}

func (db *fakeDB) FindAvailableByIDForUpdate(ctx context.Context, id int64) (*domain.Resource, error) {
	tx := txFrom(ctx)
	if tx == nil {
		return nil, errors.New("row lock outside transaction")
	}

	l := db.rowLock(id)
	l.Lock()
	tx.locks = append(tx.locks, l)

	return db.FindAvailableByID(ctx, id)
}

func (db *fakeDB) ConditionalMarkUnavailable(ctx context.Context, id, expectedVersion int64) (int64, error) {
	if db.beforeConditionalUpdate != nil {
		db.beforeConditionalUpdate()
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	r, ok := db.resources[id]
	if !ok || r.Version != expectedVersion || !r.Available {
		return 0, nil
	}
	db.markLocked(ctx, r)

	return 1, nil
}

func (db *fakeDB) MarkUnavailable(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	r, ok := db.resources[id]
	if !ok {
		return errors.New("resource vanished")
	}
	db.markLocked(ctx, r)

	return nil
}

func (db *fakeDB) markLocked(ctx context.Context, r *domain.Resource) {
	prev := *r
	r.Available = false
	r.Version++
	r.UpdatedAt = time.Now()

	if tx := txFrom(ctx); tx != nil {
		tx.undo = append(tx.undo, func() { *r = prev })
	}
}

func (db *fakeDB) Create(ctx context.Context, r *domain.Reservation) error {
	if db.createErr != nil {
		return db.createErr
	}

	db.mu.Lock()
	db.nextID++
	r.ID = db.nextID
	r.CreatedAt = time.Now()
	db.mu.Unlock()

	if tx := txFrom(ctx); tx != nil {
		tx.pending = append(tx.pending, r)
		return nil
	}

	db.mu.Lock()
	db.reservations = append(db.reservations, r)
	db.mu.Unlock()

	return nil
}

func (db *fakeDB) ListByResource(_ context.Context, resourceID int64) ([]*domain.Reservation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []*domain.Reservation
	for _, r := range db.reservations {
		if r.ResourceID == resourceID {
			out = append(out, r)
		}
	}

	return out, nil
}

func (db *fakeDB) committed() []*domain.Reservation {
	db.mu.Lock()
	defer db.mu.Unlock()

	return append([]*domain.Reservation(nil), db.reservations...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) published() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]domain.Event(nil), p.events...)
}

// stalledPublisher blocks until its context ends, like a writer retrying
// against an unreachable broker.
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _ domain.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

// fakeCache is a map-backed domain.Cache that can be told to fail.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	gets    int
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}

	return c.data[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls[key] = ttl

	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deletes++
	delete(c.data, key)

	return nil
}
