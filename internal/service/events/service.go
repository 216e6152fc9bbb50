package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
)

type Config struct {
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
}

type Service struct {
	store  repository.Store
	cache  *redisrepo.Cache
	logger *slog.Logger
	cfg    Config
}

func New(store repository.Store, cache *redisrepo.Cache, logger *slog.Logger, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}

	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 200
	}

	return &Service{store: store, cache: cache, logger: logger, cfg: cfg}
}

// Create publishes a new event owned by the calling creator.
//
// Returns:
//   - error: events.ErrNotCreator if the actor lacks the creator role.
//   - error: events.ErrInvalidEvent for a missing name, an unknown type or a
//     negative price or capacity.
func (s *Service) Create(ctx context.Context, actor domain.Actor, e *domain.Event) (*domain.Event, error) {
	const op = "service.events.Create"

	if !actor.IsCreator {
		return nil, fmt.Errorf("%s: %w", op, ErrNotCreator)
	}

	if err := validate(e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e.ID = uuid.New()
	e.CreatorID = actor.UserID

	if err := s.store.Events().Create(ctx, e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return e, nil
}

func validate(e *domain.Event) error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	case !e.Type.Valid():
		return fmt.Errorf("%w: type must be online or offline", ErrInvalidEvent)
	case e.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidEvent)
	case e.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidEvent)
	case e.TicketAvailable < 0:
		return fmt.Errorf("%w: ticket_available must not be negative", ErrInvalidEvent)
	}
	return nil
}

// List returns events ordered by date. A non-positive limit selects the
// default page size.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "service.events.List"

	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.store.Events().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// Get returns one event. Reads go through the cache; every inventory change
// invalidates the cached copy.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "service.events.Get"

	e, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyEvent(id), s.cfg.CacheTTL,
		func(ctx context.Context) (domain.Event, error) {
			e, err := s.store.Events().Get(ctx, id)
			if err != nil {
				return domain.Event{}, err
			}
			return *e, nil
		})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Event, error) {
	const op = "service.events.ListMine"

	if !actor.IsCreator {
		return nil, fmt.Errorf("%s: %w", op, ErrNotCreator)
	}

	list, err := s.store.Events().ListByCreator(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// Update edits an event owned by the actor. Tickets already reserved keep
// the price they were reserved at.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error) {
	const op = "service.events.Update"

	switch {
	case patch.Name != nil && strings.TrimSpace(*patch.Name) == "":
		return nil, fmt.Errorf("%s: %w: name is required", op, ErrInvalidEvent)
	case patch.Type != nil && !patch.Type.Valid():
		return nil, fmt.Errorf("%s: %w: type must be online or offline", op, ErrInvalidEvent)
	case patch.Price != nil && patch.Price.IsNegative():
		return nil, fmt.Errorf("%s: %w: price must not be negative", op, ErrInvalidEvent)
	case patch.TicketAvailable != nil && *patch.TicketAvailable < 0:
		return nil, fmt.Errorf("%s: %w: ticket_available must not be negative", op, ErrInvalidEvent)
	}

	if err := s.authorize(ctx, actor, id, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e, err := s.store.Events().Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id)

	return e, nil
}

// Delete removes an event. Its owner and admins may delete it. Tickets
// issued for the event are kept.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	const op = "service.events.Delete"

	if err := s.authorize(ctx, actor, id, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Events().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id)

	if err := s.cache.InvalidateRatings(ctx, id); err != nil {
		s.logger.Warn("rating cache invalidation failed", slog.String("event_id", id.String()), slog.Any("err", err))
	}

	return nil
}

func (s *Service) authorize(ctx context.Context, actor domain.Actor, id uuid.UUID, adminAllowed bool) error {
	e, err := s.store.Events().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if e.CreatorID == actor.UserID || (adminAllowed && actor.IsAdmin) {
		return nil
	}

	return ErrForbidden
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.InvalidateEvent(ctx, id); err != nil {
		s.logger.Warn("event cache invalidation failed", slog.String("event_id", id.String()), slog.Any("err", err))
	}
}
