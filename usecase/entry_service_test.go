package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/black-roland/homeassistant-yandex-speechkit/adapters"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

func newEntryService(t *testing.T) (*EntryService, *adapters.MemoryEntryRepository) {
	repo := adapters.NewMemoryEntryRepository()
	return NewEntryService(repo, zaptest.NewLogger(t)), repo
}

func TestCreateEntry(t *testing.T) {
	service, _ := newEntryService(t)
	ctx := context.Background()

	entry, err := service.CreateEntry(ctx, "  secret  ")
	require.NoError(t, err)
	assert.Equal(t, "secret", entry.APIKey())
	assert.Equal(t, entities.EntryTitle, entry.Title)

	entries, err := service.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateEntryRequiresAPIKey(t *testing.T) {
	service, _ := newEntryService(t)

	_, err := service.CreateEntry(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOptionsFlowWalkthrough(t *testing.T) {
	service, repo := newEntryService(t)
	ctx := context.Background()

	entry, err := service.CreateEntry(ctx, "secret")
	require.NoError(t, err)

	started, err := service.StartOptionsFlow(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, started.Form)
	assert.Equal(t, entities.StepAwaitingTTSOptions, started.Form.Step)
	assert.False(t, started.Done)

	proxyStep, err := service.SubmitOptionsFlow(ctx, started.FlowID, map[string]interface{}{
		entities.ConfTTSVoice:  "alena",
		entities.ConfTTSUnsafe: true,
	})
	require.NoError(t, err)
	require.NotNil(t, proxyStep.Form)
	assert.Equal(t, entities.StepAwaitingProxyOptions, proxyStep.Form.Step)

	// Nothing is saved until the flow finishes
	stored, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Options)

	done, err := service.SubmitOptionsFlow(ctx, started.FlowID, map[string]interface{}{
		entities.ConfProxySpeaker:   "media_player.station",
		entities.ConfProxyMediaType: "dialog",
	})
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.Nil(t, done.Form)

	stored, err = repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Options{
		Voice:           "alena",
		OutputContainer: entities.DefaultContainer,
		Unsafe:          true,
		ProxySpeaker:    "media_player.station",
		ProxyMediaType:  "dialog",
	}, entities.ResolveOptions(stored.StoredOptions()))

	_, err = service.SubmitOptionsFlow(ctx, started.FlowID, nil)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestOptionsFlowSuggestsSavedOptions(t *testing.T) {
	service, repo := newEntryService(t)
	ctx := context.Background()

	entry, err := service.CreateEntry(ctx, "secret")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateOptions(ctx, entry.ID, map[string]interface{}{entities.ConfTTSVoice: "filipp"}))

	started, err := service.StartOptionsFlow(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "filipp", started.Form.Fields[0].Suggested)
}

func TestOptionsFlowInvalidInputKeepsStep(t *testing.T) {
	service, _ := newEntryService(t)
	ctx := context.Background()

	entry, err := service.CreateEntry(ctx, "secret")
	require.NoError(t, err)
	started, err := service.StartOptionsFlow(ctx, entry.ID)
	require.NoError(t, err)

	_, err = service.SubmitOptionsFlow(ctx, started.FlowID, map[string]interface{}{entities.ConfTTSUnsafe: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	next, err := service.SubmitOptionsFlow(ctx, started.FlowID, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.StepAwaitingProxyOptions, next.Form.Step)
}

func TestStartOptionsFlowUnknownEntry(t *testing.T) {
	service, _ := newEntryService(t)

	_, err := service.StartOptionsFlow(context.Background(), "missing")
	assert.True(t, errors.Is(err, repositories.ErrEntryNotFound))
}

func TestDeleteEntryAbandonsFlows(t *testing.T) {
	service, _ := newEntryService(t)
	ctx := context.Background()

	entry, err := service.CreateEntry(ctx, "secret")
	require.NoError(t, err)
	started, err := service.StartOptionsFlow(ctx, entry.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteEntry(ctx, entry.ID))

	_, err = service.SubmitOptionsFlow(ctx, started.FlowID, nil)
	assert.ErrorIs(t, err, ErrFlowNotFound)
	_, err = service.GetEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, repositories.ErrEntryNotFound)
}
