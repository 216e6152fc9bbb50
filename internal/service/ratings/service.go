package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
	redisrepo "github.com/kirinyoku/sievent/internal/repository/redis"
)

const summaryTTL = 5 * time.Minute

type Service struct {
	store  repository.Store
	cache  *redisrepo.Cache
	logger *slog.Logger
}

func New(store repository.Store, cache *redisrepo.Cache, logger *slog.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

func validStars(n int) bool {
	return n >= 1 && n <= 5
}

// Rate records the user's rating of an event. Rating the same event again
// replaces the earlier stars and review.
//
// Returns:
//   - bool: true if a new rating was created.
//   - error: ratings.ErrInvalidStars, ratings.ErrEventNotFound.
func (s *Service) Rate(ctx context.Context, userID, eventID uuid.UUID, stars int, review string) (*domain.Rating, bool, error) {
	const op = "service.ratings.Rate"

	if !validStars(stars) {
		return nil, false, fmt.Errorf("%s: %w", op, ErrInvalidStars)
	}

	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	r := &domain.Rating{
		ID:      uuid.New(),
		UserID:  userID,
		EventID: eventID,
		Stars:   stars,
		Review:  review,
		Status:  domain.RatingRated,
	}

	created, err := s.store.Ratings().Upsert(ctx, r)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, eventID)

	return r, created, nil
}

func (s *Service) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Rating, error) {
	const op = "service.ratings.ListForEvent"

	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	list, err := s.store.Ratings().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *Service) GetForUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.Rating, error) {
	const op = "service.ratings.GetForUserAndEvent"

	r, err := s.store.Ratings().GetByUserEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Rating, error) {
	const op = "service.ratings.Get"

	r, err := s.store.Ratings().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return r, nil
}

// Average returns the mean stars of an event rounded to two decimals. The
// summary is cached until the next rating write for the event.
func (s *Service) Average(ctx context.Context, eventID uuid.UUID) (*domain.RatingSummary, error) {
	const op = "service.ratings.Average"

	sum, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyRatingSummary(eventID), summaryTTL,
		func(ctx context.Context) (domain.RatingSummary, error) {
			if _, err := s.store.Events().Get(ctx, eventID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.RatingSummary{}, ErrEventNotFound
				}
				return domain.RatingSummary{}, err
			}

			sum, err := s.store.Ratings().Summary(ctx, eventID)
			if err != nil {
				return domain.RatingSummary{}, err
			}
			return *sum, nil
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sum, nil
}

// Update changes the stars and/or review of the caller's own rating.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, stars *int, review *string) (*domain.Rating, error) {
	const op = "service.ratings.Update"

	if stars != nil && !validStars(*stars) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStars)
	}

	if err := s.checkOwner(ctx, id, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, err := s.store.Ratings().Update(ctx, id, userID, stars, review)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	s.invalidate(ctx, r.EventID)

	return r, nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const op = "service.ratings.Delete"

	if err := s.checkOwner(ctx, id, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := s.store.Ratings().Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}

	s.invalidate(ctx, r.EventID)

	return nil
}

func (s *Service) checkOwner(ctx context.Context, id, userID uuid.UUID) error {
	r, err := s.store.Ratings().Get(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if r.UserID != userID {
		return ErrNotOwner
	}

	return nil
}

func (s *Service) invalidate(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.InvalidateRatings(ctx, eventID); err != nil {
		s.logger.Warn("rating cache invalidation failed", slog.String("event_id", eventID.String()), slog.Any("err", err))
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRatingNotFound
	}
	return err
}
