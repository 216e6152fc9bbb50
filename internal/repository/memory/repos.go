package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
	"github.com/shopspring/decimal"
)

type EventRepo struct{ b bound }

func (r *EventRepo) Create(_ context.Context, e *domain.Event) error {
	const op = "memory.EventRepo.Create"

	return r.b.do(func(st *state) error {
		if _, ok := st.events[e.ID]; ok {
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		}
		now := r.b.now()
		e.CreatedAt, e.UpdatedAt = now, now
		st.events[e.ID] = *e
		return nil
	})
}

func (r *EventRepo) Get(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "memory.EventRepo.Get"

	var out domain.Event
	err := r.b.do(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func sortEvents(es []domain.Event) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.Before(es[j].Date)
		}
		return es[i].ID.String() < es[j].ID.String()
	})
}

func (r *EventRepo) List(_ context.Context, limit, offset int) ([]domain.Event, error) {
	var out []domain.Event
	_ = r.b.do(func(st *state) error {
		for _, e := range st.events {
			out = append(out, e)
		}
		return nil
	})

	sortEvents(out)

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	return out, nil
}

func (r *EventRepo) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]domain.Event, error) {
	var out []domain.Event
	_ = r.b.do(func(st *state) error {
		for _, e := range st.events {
			if e.CreatorID == creatorID {
				out = append(out, e)
			}
		}
		return nil
	})

	sortEvents(out)

	return out, nil
}

func (r *EventRepo) Update(_ context.Context, id uuid.UUID, p domain.EventPatch) (*domain.Event, error) {
	const op = "memory.EventRepo.Update"

	var out domain.Event
	err := r.b.do(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}

		if p.Name != nil {
			e.Name = *p.Name
		}
		if p.Description != nil {
			e.Description = *p.Description
		}
		if p.BannerURL != nil {
			e.BannerURL = *p.BannerURL
		}
		if p.Type != nil {
			e.Type = *p.Type
		}
		if p.Date != nil {
			e.Date = *p.Date
		}
		if p.Location != nil {
			e.Location = *p.Location
		}
		if p.Latitude != nil {
			e.Latitude = *p.Latitude
		}
		if p.Longitude != nil {
			e.Longitude = *p.Longitude
		}
		if p.Price != nil {
			e.Price = *p.Price
		}
		if p.TicketAvailable != nil {
			if *p.TicketAvailable < 0 {
				return fmt.Errorf("%s: %w", op, repository.ErrInsufficientInventory)
			}
			e.TicketAvailable = *p.TicketAvailable
		}

		e.UpdatedAt = r.b.now()
		st.events[id] = e
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *EventRepo) Delete(_ context.Context, id uuid.UUID) error {
	const op = "memory.EventRepo.Delete"

	return r.b.do(func(st *state) error {
		if _, ok := st.events[id]; !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		delete(st.events, id)
		for rid, rt := range st.ratings {
			if rt.EventID == id {
				delete(st.ratings, rid)
			}
		}
		return nil
	})
}

func (r *EventRepo) Reserve(_ context.Context, id uuid.UUID, qty int) (*domain.InventorySnapshot, error) {
	const op = "memory.EventRepo.Reserve"

	var snap domain.InventorySnapshot
	err := r.b.do(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		if e.TicketAvailable < qty {
			return fmt.Errorf("%s: %w", op, repository.ErrInsufficientInventory)
		}

		e.TicketAvailable -= qty
		e.UpdatedAt = r.b.now()
		st.events[id] = e

		snap = domain.InventorySnapshot{EventID: id, Price: e.Price, Date: e.Date, Remaining: e.TicketAvailable}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

func (r *EventRepo) Release(_ context.Context, id uuid.UUID, qty int) error {
	const op = "memory.EventRepo.Release"

	return r.b.do(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		e.TicketAvailable += qty
		e.UpdatedAt = r.b.now()
		st.events[id] = e
		return nil
	})
}

type TicketRepo struct{ b bound }

func (r *TicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	const op = "memory.TicketRepo.Create"

	return r.b.do(func(st *state) error {
		if _, ok := st.tickets[t.ID]; ok {
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		}
		now := r.b.now()
		t.CreatedAt, t.UpdatedAt = now, now
		st.tickets[t.ID] = *t
		return nil
	})
}

func (r *TicketRepo) Get(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "memory.TicketRepo.Get"

	var out domain.Ticket
	err := r.b.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *TicketRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.TicketWithEvent, error) {
	var out []domain.TicketWithEvent
	_ = r.b.do(func(st *state) error {
		for _, t := range st.tickets {
			if t.UserID != userID {
				continue
			}
			tw := domain.TicketWithEvent{Ticket: t}
			if e, ok := st.events[t.EventID]; ok {
				tw.EventName, tw.EventLocation, tw.EventType = e.Name, e.Location, e.Type
			}
			out = append(out, tw)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *TicketRepo) Transition(_ context.Context, id uuid.UUID, from, to domain.TicketStatus) (*domain.Ticket, error) {
	const op = "memory.TicketRepo.Transition"

	var out domain.Ticket
	err := r.b.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		if t.Status != from || !from.CanTransitionTo(to) {
			return fmt.Errorf("%s: %w", op, repository.ErrStateMismatch)
		}
		t.Status = to
		t.UpdatedAt = r.b.now()
		st.tickets[id] = t
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *TicketRepo) DeletePending(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "memory.TicketRepo.DeletePending"

	var out domain.Ticket
	err := r.b.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		if t.Status != domain.TicketPending {
			return fmt.Errorf("%s: %w", op, repository.ErrStateMismatch)
		}
		delete(st.tickets, id)
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *TicketRepo) SetPayment(_ context.Context, id, paymentID uuid.UUID, paymentURL string) error {
	const op = "memory.TicketRepo.SetPayment"

	return r.b.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		pid := paymentID
		t.PaymentID = &pid
		t.PaymentURL = paymentURL
		t.UpdatedAt = r.b.now()
		st.tickets[id] = t
		return nil
	})
}

func (r *TicketRepo) Redeem(_ context.Context, id, userID, eventID uuid.UUID, at time.Time) (*domain.Ticket, error) {
	const op = "memory.TicketRepo.Redeem"

	var out domain.Ticket
	err := r.b.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok || t.UserID != userID || t.EventID != eventID {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		if t.Status != domain.TicketPaid || t.IsScanned {
			return fmt.Errorf("%s: %w", op, repository.ErrStateMismatch)
		}

		scannedAt := at
		t.IsScanned = true
		t.VerifiedByCreator = true
		t.Status = domain.TicketUsed
		t.ScannedAt = &scannedAt
		t.UpdatedAt = at
		st.tickets[id] = t
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *TicketRepo) ListStalePending(_ context.Context, createdBefore time.Time, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	_ = r.b.do(func(st *state) error {
		for _, t := range st.tickets {
			if t.Status == domain.TicketPending && t.CreatedAt.Before(createdBefore) {
				out = append(out, t)
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

type PaymentRepo struct{ b bound }

func findPaymentByOrder(st *state, orderID string) (domain.Payment, bool) {
	for _, p := range st.payments {
		if p.OrderID == orderID {
			return p, true
		}
	}
	return domain.Payment{}, false
}

func (r *PaymentRepo) Upsert(_ context.Context, p *domain.Payment) error {
	return r.b.do(func(st *state) error {
		now := r.b.now()

		if existing, ok := findPaymentByOrder(st, p.OrderID); ok {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
		} else {
			p.CreatedAt = now
		}

		p.UpdatedAt = now
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *PaymentRepo) Get(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	const op = "memory.PaymentRepo.Get"

	var out domain.Payment
	err := r.b.do(func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *PaymentRepo) GetByOrderID(_ context.Context, orderID string) (*domain.Payment, error) {
	const op = "memory.PaymentRepo.GetByOrderID"

	var out domain.Payment
	err := r.b.do(func(st *state) error {
		p, ok := findPaymentByOrder(st, orderID)
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *PaymentRepo) UpdateStatus(_ context.Context, orderID string, upd repository.PaymentUpdate) (*domain.Payment, error) {
	const op = "memory.PaymentRepo.UpdateStatus"

	var out domain.Payment
	err := r.b.do(func(st *state) error {
		p, ok := findPaymentByOrder(st, orderID)
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		p.TransactionID = upd.TransactionID
		p.TransactionStatus = upd.Status
		p.PaymentType = upd.PaymentType
		p.Raw = upd.Raw
		p.UpdatedAt = r.b.now()
		st.payments[p.ID] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

type RatingRepo struct{ b bound }

func withUserName(st *state, rt domain.Rating) domain.Rating {
	if u, ok := st.users[rt.UserID]; ok {
		rt.UserName = u.Name
	}
	return rt
}

func (r *RatingRepo) Upsert(_ context.Context, rt *domain.Rating) (bool, error) {
	var created bool
	err := r.b.do(func(st *state) error {
		now := r.b.now()

		for id, existing := range st.ratings {
			if existing.UserID == rt.UserID && existing.EventID == rt.EventID {
				existing.Stars = rt.Stars
				existing.Review = rt.Review
				existing.Status = rt.Status
				existing.UpdatedAt = now
				st.ratings[id] = existing

				rt.ID, rt.CreatedAt, rt.UpdatedAt = existing.ID, existing.CreatedAt, now
				return nil
			}
		}

		rt.CreatedAt, rt.UpdatedAt = now, now
		st.ratings[rt.ID] = *rt
		created = true
		return nil
	})

	return created, err
}

func (r *RatingRepo) Get(_ context.Context, id uuid.UUID) (*domain.Rating, error) {
	const op = "memory.RatingRepo.Get"

	var out domain.Rating
	err := r.b.do(func(st *state) error {
		rt, ok := st.ratings[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = withUserName(st, rt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *RatingRepo) GetByUserEvent(_ context.Context, userID, eventID uuid.UUID) (*domain.Rating, error) {
	const op = "memory.RatingRepo.GetByUserEvent"

	var out domain.Rating
	err := r.b.do(func(st *state) error {
		for _, rt := range st.ratings {
			if rt.UserID == userID && rt.EventID == eventID {
				out = withUserName(st, rt)
				return nil
			}
		}
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *RatingRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]domain.Rating, error) {
	var out []domain.Rating
	_ = r.b.do(func(st *state) error {
		for _, rt := range st.ratings {
			if rt.EventID == eventID {
				out = append(out, withUserName(st, rt))
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *RatingRepo) Summary(_ context.Context, eventID uuid.UUID) (*domain.RatingSummary, error) {
	s := domain.RatingSummary{EventID: eventID, Average: decimal.Zero}

	var sum int64
	_ = r.b.do(func(st *state) error {
		for _, rt := range st.ratings {
			if rt.EventID == eventID {
				sum += int64(rt.Stars)
				s.Count++
			}
		}
		return nil
	})

	if s.Count > 0 {
		s.Average = decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}

	return &s, nil
}

func (r *RatingRepo) Update(_ context.Context, id, userID uuid.UUID, stars *int, review *string) (*domain.Rating, error) {
	const op = "memory.RatingRepo.Update"

	var out domain.Rating
	err := r.b.do(func(st *state) error {
		rt, ok := st.ratings[id]
		if !ok || rt.UserID != userID {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		if stars != nil {
			rt.Stars = *stars
		}
		if review != nil {
			rt.Review = *review
		}
		rt.UpdatedAt = r.b.now()
		st.ratings[id] = rt
		out = withUserName(st, rt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *RatingRepo) Delete(_ context.Context, id, userID uuid.UUID) (*domain.Rating, error) {
	const op = "memory.RatingRepo.Delete"

	var out domain.Rating
	err := r.b.do(func(st *state) error {
		rt, ok := st.ratings[id]
		if !ok || rt.UserID != userID {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		delete(st.ratings, id)
		out = rt
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

type UserRepo struct{ b bound }

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	const op = "memory.UserRepo.Create"

	return r.b.do(func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email || existing.ID == u.ID {
				return fmt.Errorf("%s: %w", op, repository.ErrConflict)
			}
		}
		u.CreatedAt = r.b.now()
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) Get(_ context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "memory.UserRepo.Get"

	var out domain.User
	err := r.b.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	const op = "memory.UserRepo.GetByEmail"

	var out domain.User
	err := r.b.do(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = u
				return nil
			}
		}
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *UserRepo) ListCreatorRequests(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	_ = r.b.do(func(st *state) error {
		for _, u := range st.users {
			if u.CreatorRequest && !u.IsCreator {
				out = append(out, u)
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UserRepo) update(op string, id uuid.UUID, fn func(u *domain.User)) error {
	return r.b.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		fn(&u)
		st.users[id] = u
		return nil
	})
}

func (r *UserRepo) SetRoles(_ context.Context, id uuid.UUID, isCreator, creatorRequest bool) error {
	return r.update("memory.UserRepo.SetRoles", id, func(u *domain.User) {
		u.IsCreator = isCreator
		u.CreatorRequest = creatorRequest
	})
}

func (r *UserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	return r.update("memory.UserRepo.MarkVerified", id, func(u *domain.User) {
		u.IsAccountVerified = true
	})
}

func (r *UserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.update("memory.UserRepo.UpdatePassword", id, func(u *domain.User) {
		u.PasswordHash = hash
	})
}

type ReportRepo struct{ b bound }

func (r *ReportRepo) Create(_ context.Context, rp *domain.Report) error {
	return r.b.do(func(st *state) error {
		rp.CreatedAt = r.b.now()
		st.reports[rp.ID] = *rp
		return nil
	})
}

func (r *ReportRepo) Get(_ context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "memory.ReportRepo.Get"

	var out domain.Report
	err := r.b.do(func(st *state) error {
		rp, ok := st.reports[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		out = rp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *ReportRepo) List(_ context.Context) ([]domain.Report, error) {
	var out []domain.Report
	_ = r.b.do(func(st *state) error {
		for _, rp := range st.reports {
			out = append(out, rp)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *ReportRepo) UpdateDescription(_ context.Context, id uuid.UUID, description string) (*domain.Report, error) {
	const op = "memory.ReportRepo.UpdateDescription"

	var out domain.Report
	err := r.b.do(func(st *state) error {
		rp, ok := st.reports[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		rp.Description = description
		st.reports[id] = rp
		out = rp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *ReportRepo) Delete(_ context.Context, id uuid.UUID) error {
	const op = "memory.ReportRepo.Delete"

	return r.b.do(func(st *state) error {
		if _, ok := st.reports[id]; !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		delete(st.reports, id)
		return nil
	})
}
