package reports

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/sievent/internal/domain"
	"github.com/kirinyoku/sievent/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *memory.Store, email string, creator bool) *domain.User {
	t.Helper()

	u := &domain.User{ID: uuid.New(), Name: email, Email: email, IsCreator: creator}
	require.NoError(t, store.Users().Create(context.Background(), u))

	return u
}

func TestReportCreator(t *testing.T) {
	store := memory.New()
	svc := New(store)
	ctx := context.Background()

	reporter := seedUser(t, store, "ayu@example.com", false)
	creator := seedUser(t, store, "organizer@example.com", true)
	plain := seedUser(t, store, "budi@example.com", false)
	actor := domain.ActorOf(reporter)

	r, err := svc.ReportCreator(ctx, actor, creator.ID, "  event never happened ")
	require.NoError(t, err)
	assert.Equal(t, "event never happened", r.Description)
	assert.Equal(t, reporter.ID, r.ReporterID)

	_, err = svc.ReportCreator(ctx, actor, plain.ID, "spam")
	assert.ErrorIs(t, err, ErrNotACreator)

	_, err = svc.ReportCreator(ctx, actor, uuid.New(), "spam")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.ReportCreator(ctx, actor, creator.ID, " ")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = svc.ReportCreator(ctx, domain.ActorOf(creator), creator.ID, "me")
	assert.ErrorIs(t, err, ErrSelfReport)
}

func TestReportUserRequiresCreator(t *testing.T) {
	store := memory.New()
	svc := New(store)
	ctx := context.Background()

	creator := seedUser(t, store, "organizer@example.com", true)
	attendee := seedUser(t, store, "ayu@example.com", false)

	_, err := svc.ReportUser(ctx, domain.ActorOf(attendee), creator.ID, "rude")
	assert.ErrorIs(t, err, ErrNotCreator)

	r, err := svc.ReportUser(ctx, domain.ActorOf(creator), attendee.ID, "ticket resale")
	require.NoError(t, err)
	assert.Equal(t, attendee.ID, r.ReportedID)
}

func TestAdminManagesReports(t *testing.T) {
	store := memory.New()
	svc := New(store)
	ctx := context.Background()

	creator := seedUser(t, store, "organizer@example.com", true)
	reporter := seedUser(t, store, "ayu@example.com", false)
	admin := domain.Actor{UserID: uuid.New(), IsAdmin: true}

	r, err := svc.ReportCreator(ctx, domain.ActorOf(reporter), creator.ID, "scam")
	require.NoError(t, err)

	_, err = svc.List(ctx, domain.ActorOf(reporter))
	assert.ErrorIs(t, err, ErrNotAdmin)

	list, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := svc.Update(ctx, admin, r.ID, "scam, refunds missing")
	require.NoError(t, err)
	assert.Equal(t, "scam, refunds missing", got.Description)

	got, err = svc.Get(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "scam, refunds missing", got.Description)

	require.NoError(t, svc.Delete(ctx, admin, r.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, r.ID), ErrReportNotFound)

	_, err = svc.Get(ctx, admin, r.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
}
