// Package memory is an in-process implementation of the repository
// contracts. It applies the same conditional updates as the postgres
// repositories under a single mutex and backs STORAGE_DRIVER=memory and the
// service tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
)

type state struct {
	users    map[uuid.UUID]domain.User
	events   map[uuid.UUID]domain.Event
	tickets  map[uuid.UUID]domain.Ticket
	payments map[uuid.UUID]domain.Payment
	ratings  map[uuid.UUID]domain.Rating
	reports  map[uuid.UUID]domain.Report
}

func newState() *state {
	return &state{
		users:    make(map[uuid.UUID]domain.User),
		events:   make(map[uuid.UUID]domain.Event),
		tickets:  make(map[uuid.UUID]domain.Ticket),
		payments: make(map[uuid.UUID]domain.Payment),
		ratings:  make(map[uuid.UUID]domain.Rating),
		reports:  make(map[uuid.UUID]domain.Report),
	}
}

func (s *state) clone() *state {
	return &state{
		users:    maps.Clone(s.users),
		events:   maps.Clone(s.events),
		tickets:  maps.Clone(s.tickets),
		payments: maps.Clone(s.payments),
		ratings:  maps.Clone(s.ratings),
		reports:  maps.Clone(s.reports),
	}
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// RunTx holds the store lock for the whole of fn and restores the previous
// state when fn fails. Repositories handed to fn must not be used after it
// returns.
func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()

	if err := fn(ctx, bound{s: s, locked: true}); err != nil {
		s.st = snapshot
		return err
	}

	if err := ctx.Err(); err != nil {
		s.st = snapshot
		return err
	}

	return nil
}

func (s *Store) Events() repository.EventRepository     { return &EventRepo{b: bound{s: s}} }
func (s *Store) Tickets() repository.TicketRepository   { return &TicketRepo{b: bound{s: s}} }
func (s *Store) Payments() repository.PaymentRepository { return &PaymentRepo{b: bound{s: s}} }
func (s *Store) Ratings() repository.RatingRepository   { return &RatingRepo{b: bound{s: s}} }
func (s *Store) Users() repository.UserRepository       { return &UserRepo{b: bound{s: s}} }
func (s *Store) Reports() repository.ReportRepository   { return &ReportRepo{b: bound{s: s}} }

// bound ties repositories to the store, either outside a transaction
// (every call takes the lock) or inside RunTx (the lock is already held).
type bound struct {
	s      *Store
	locked bool
}

func (b bound) do(fn func(st *state) error) error {
	if !b.locked {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	return fn(b.s.st)
}

func (b bound) now() time.Time { return b.s.now() }

func (b bound) Events() repository.EventRepository     { return &EventRepo{b: b} }
func (b bound) Tickets() repository.TicketRepository   { return &TicketRepo{b: b} }
func (b bound) Payments() repository.PaymentRepository { return &PaymentRepo{b: b} }
func (b bound) Ratings() repository.RatingRepository   { return &RatingRepo{b: b} }
func (b bound) Users() repository.UserRepository       { return &UserRepo{b: b} }
func (b bound) Reports() repository.ReportRepository   { return &ReportRepo{b: b} }
