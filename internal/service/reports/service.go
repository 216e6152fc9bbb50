package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository"
)

type Service struct {
	store repository.Store
}

func New(store repository.Store) *Service {
	return &Service{store: store}
}

// ReportCreator files a complaint against a creator.
func (s *Service) ReportCreator(ctx context.Context, actor domain.Actor, creatorID uuid.UUID, description string) (*domain.Report, error) {
	const op = "service.reports.ReportCreator"

	r, err := s.file(ctx, actor, creatorID, description, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

// ReportUser lets a creator file a complaint against any user, typically an
// attendee of one of their events.
func (s *Service) ReportUser(ctx context.Context, actor domain.Actor, userID uuid.UUID, description string) (*domain.Report, error) {
	const op = "service.reports.ReportUser"

	if !actor.IsCreator {
		return nil, fmt.Errorf("%s: %w", op, ErrNotCreator)
	}

	r, err := s.file(ctx, actor, userID, description, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

func (s *Service) file(ctx context.Context, actor domain.Actor, reportedID uuid.UUID, description string, creatorOnly bool) (*domain.Report, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	if reportedID == actor.UserID {
		return nil, ErrSelfReport
	}

	u, err := s.store.Users().Get(ctx, reportedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if creatorOnly && !u.IsCreator {
		return nil, ErrNotACreator
	}

	r := &domain.Report{
		ID:          uuid.New(),
		ReporterID:  actor.UserID,
		ReportedID:  u.ID,
		Description: description,
	}

	if err := s.store.Reports().Create(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, actor domain.Actor) ([]domain.Report, error) {
	const op = "service.reports.List"

	if !actor.IsAdmin {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAdmin)
	}

	list, err := s.store.Reports().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Report, error) {
	const op = "service.reports.Get"

	if !actor.IsAdmin {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAdmin)
	}

	r, err := s.store.Reports().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return r, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, description string) (*domain.Report, error) {
	const op = "service.reports.Update"

	if !actor.IsAdmin {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAdmin)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyDescription)
	}

	r, err := s.store.Reports().UpdateDescription(ctx, id, description)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return r, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	const op = "service.reports.Delete"

	if !actor.IsAdmin {
		return fmt.Errorf("%s: %w", op, ErrNotAdmin)
	}

	if err := s.store.Reports().Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}

	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrReportNotFound
	}
	return err
}
