package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectsAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner, other := uuid.New(), uuid.New()

	p, err := s.CreateProject(ctx, &db.Project{UserID: owner, Name: "Cabin"})
	require.NoError(t, err)

	found, err := s.FindProject(ctx, p.ID, other)
	require.NoError(t, err)
	assert.Nil(t, found)

	name := "Stolen"
	_, err = s.UpdateProject(ctx, p.ID, other, db.ProjectUpdate{Name: &name})
	assert.True(t, errors.Is(err, db.ErrNotFound))
	assert.True(t, errors.Is(s.DeleteProject(ctx, p.ID, other), db.ErrNotFound))

	require.NoError(t, s.DeleteProject(ctx, p.ID, owner))
}

func TestListProjectsOrdersByRecentActivity(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()

	first, _ := s.CreateProject(ctx, &db.Project{UserID: user, Name: "first"})
	second, _ := s.CreateProject(ctx, &db.Project{UserID: user, Name: "second"})
	_, err := s.CreatePrompts(ctx, []db.Prompt{
		{UserID: user, SessionID: uuid.New(), ProjectID: &first.ID, Title: "a", Description: "b"},
	})
	require.NoError(t, err)
	require.NoError(t, s.TouchProject(ctx, first.ID, user))

	list, err := s.ListProjects(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 1, list[0].PromptCount)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, 0, list[1].PromptCount)
}

func TestRecordPaymentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()

	first, created, err := s.RecordPayment(ctx, &db.Payment{UserID: user, ProviderPaymentID: "pi_1", Amount: 600, Status: db.PaymentCompleted})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.RecordPayment(ctx, &db.Payment{UserID: user, ProviderPaymentID: "pi_1", Amount: 600, Status: db.PaymentCompleted})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	payments, _ := s.ListPayments(ctx, user)
	assert.Len(t, payments, 1)
}

func TestWalletTotalsCountsChargedVideos(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()

	_, _, _ = s.RecordPayment(ctx, &db.Payment{UserID: user, ProviderPaymentID: "pi_1", Amount: 3000, Status: db.PaymentCompleted})
	_, _, _ = s.RecordPayment(ctx, &db.Payment{UserID: user, ProviderPaymentID: "pi_2", Amount: 6000, Status: db.PaymentPending})
	for _, status := range []string{db.VideoProcessing, db.VideoCompleted, db.VideoFailed, db.VideoPending} {
		_, err := s.CreateVideo(ctx, &db.Video{UserID: user, Status: status})
		require.NoError(t, err)
	}

	totals, err := s.WalletTotals(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), totals.PaidCents)
	assert.Equal(t, int64(3), totals.ChargedVideos)
}

func TestListPromptsFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()
	session := uuid.New()

	saved, err := s.CreatePrompts(ctx, []db.Prompt{
		{UserID: user, SessionID: session, Title: "1", Description: "d"},
		{UserID: user, SessionID: session, Title: "2", Description: "d"},
		{UserID: user, SessionID: uuid.New(), Title: "3", Description: "d"},
	})
	require.NoError(t, err)

	fav := true
	_, err = s.UpdatePromptFlags(ctx, saved[1].ID, user, db.PromptFlags{IsFavorited: &fav})
	require.NoError(t, err)

	bySession, _ := s.ListPrompts(ctx, user, db.PromptFilter{SessionID: &session})
	assert.Len(t, bySession, 2)
	assert.Equal(t, "2", bySession[0].Title)

	favorites, _ := s.ListPrompts(ctx, user, db.PromptFilter{FavoritedOnly: true})
	require.Len(t, favorites, 1)
	assert.Equal(t, "2", favorites[0].Title)

	limited, _ := s.ListPrompts(ctx, user, db.PromptFilter{Limit: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, "3", limited[0].Title)
}
