package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSessionsKeepsFirstSeenOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	prompts := []db.Prompt{
		{SessionID: b, Title: "b1", OriginalPrompt: "later"},
		{SessionID: a, Title: "a1", OriginalPrompt: "earlier"},
		{SessionID: b, Title: "b2", OriginalPrompt: "later"},
	}
	sessions := GroupSessions(prompts)
	require.Len(t, sessions, 2)
	assert.Equal(t, b, sessions[0].SessionID)
	assert.Len(t, sessions[0].Prompts, 2)
	assert.Equal(t, "earlier", sessions[1].OriginalPrompt)

	assert.Empty(t, GroupSessions(nil))
}

func TestProjectLifecycle(t *testing.T) {
	store := memstore.New()
	svc := NewProjectService(store)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	desc := "  rainy things "
	p, err := svc.Create(ctx, owner, " Cabin ", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Cabin", p.Name)
	assert.Equal(t, "rainy things", *p.Description)

	_, err = svc.Create(ctx, owner, "  ", nil)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.Get(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	name := "Cabin II"
	_, err = svc.Update(ctx, stranger, p.ID, db.ProjectUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
	updated, err := svc.Update(ctx, owner, p.ID, db.ProjectUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Cabin II", updated.Name)

	_, err = svc.Update(ctx, owner, p.ID, db.ProjectUpdate{})
	assert.True(t, errors.As(err, &verr))

	assert.ErrorIs(t, svc.Delete(ctx, stranger, p.ID), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner, p.ID))
	_, err = svc.Get(ctx, owner, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectDetailGroupsSessions(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	userID := uuid.New()
	completer := &fakeCompleter{replies: []string{nineItemsJSON()}}
	prompts := NewPromptService(completer, store)

	first, err := prompts.Enhance(ctx, EnhanceRequest{Idea: "rain in a cabin", UserID: &userID})
	require.NoError(t, err)
	second, err := prompts.Enhance(ctx, EnhanceRequest{Idea: "fire in a cabin", UserID: &userID, ProjectID: first.ProjectID})
	require.NoError(t, err)

	detail, err := NewProjectService(store).Get(ctx, userID, *first.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 18, detail.PromptCount)
	require.Len(t, detail.Sessions, 2)
	assert.Equal(t, *second.SessionID, detail.Sessions[0].SessionID)
	assert.Equal(t, "fire in a cabin", detail.Sessions[0].OriginalPrompt)
	assert.Len(t, detail.Sessions[1].Prompts, 9)

	list, err := NewProjectService(store).List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 18, list[0].PromptCount)
}

func TestProjectDetailFlagsTruncatedView(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	userID := uuid.New()
	res, err := NewPromptService(&fakeCompleter{replies: []string{nineItemsJSON()}}, store).
		Enhance(ctx, EnhanceRequest{Idea: "rain in a cabin", UserID: &userID})
	require.NoError(t, err)

	svc := NewProjectService(store)
	svc.promptLimit = 5
	detail, err := svc.Get(ctx, userID, *res.ProjectID)
	require.NoError(t, err)
	assert.True(t, detail.Truncated)
	assert.Equal(t, 5, detail.PromptCount)

	svc.promptLimit = 9
	detail, err = svc.Get(ctx, userID, *res.ProjectID)
	require.NoError(t, err)
	assert.False(t, detail.Truncated)
	assert.Equal(t, 9, detail.PromptCount)
}

func TestPromptFlagsAndListing(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	userID := uuid.New()
	res, err := NewPromptService(&fakeCompleter{replies: []string{nineItemsJSON()}}, store).
		Enhance(ctx, EnhanceRequest{Idea: "rain", UserID: &userID})
	require.NoError(t, err)

	svc := NewProjectService(store)
	listing, err := svc.ListPrompts(ctx, userID, db.PromptFilter{SessionID: res.SessionID})
	require.NoError(t, err)
	assert.Equal(t, 9, listing.Count)
	require.Len(t, listing.Sessions, 1)

	target := listing.Prompts[0].ID
	yes := true
	_, err = svc.UpdatePromptFlags(ctx, uuid.New(), target, db.PromptFlags{IsFavorited: &yes})
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := svc.UpdatePromptFlags(ctx, userID, target, db.PromptFlags{IsFavorited: &yes})
	require.NoError(t, err)
	assert.True(t, p.IsFavorited)
	assert.False(t, p.UsedForVideo)

	_, err = svc.UpdatePromptFlags(ctx, userID, target, db.PromptFlags{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	favs, err := svc.ListPrompts(ctx, userID, db.PromptFilter{FavoritedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, favs.Count)
	assert.Equal(t, target, favs.Prompts[0].ID)

	limited, err := svc.ListPrompts(ctx, userID, db.PromptFilter{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, limited.Count)
}
