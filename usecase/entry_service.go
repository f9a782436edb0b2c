package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
)

// ErrFlowNotFound is returned for an unknown or completed flow ID
var ErrFlowNotFound = errors.New("options flow not found")

// ErrInvalidInput marks setup or flow input that failed validation
var ErrInvalidInput = errors.New("invalid input")

// FlowResult is what a flow step returns: the next form, or the saved
// options once the flow is done.
type FlowResult struct {
	FlowID  string                 `json:"flow_id"`
	EntryID string                 `json:"entry_id"`
	Form    *entities.FlowForm     `json:"form,omitempty"`
	Done    bool                   `json:"done"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type flowSession struct {
	entryID   string
	state     entities.FlowState
	updatedAt time.Time
}

// EntryService runs the setup step and the options flow of config entries
type EntryService struct {
	entries repositories.EntryRepository
	logger  *zap.Logger

	mu    sync.RWMutex
	flows map[string]*flowSession
	now   func() time.Time
}

// NewEntryService creates a new entry service
func NewEntryService(entries repositories.EntryRepository, logger *zap.Logger) *EntryService {
	return &EntryService{
		entries: entries,
		logger:  logger,
		flows:   make(map[string]*flowSession),
		now:     time.Now,
	}
}

// CreateEntry runs the setup step with the given API key
func (s *EntryService) CreateEntry(ctx context.Context, apiKey string) (*entities.ConfigEntry, error) {
	entry, err := entities.NewConfigEntry(strings.TrimSpace(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.logger.Info("Config entry created", zap.String("entryID", entry.ID))
	return entry, nil
}

// GetEntry returns the entry with the given ID
func (s *EntryService) GetEntry(ctx context.Context, id string) (*entities.ConfigEntry, error) {
	return s.entries.GetByID(ctx, id)
}

// ListEntries returns every entry
func (s *EntryService) ListEntries(ctx context.Context) ([]*entities.ConfigEntry, error) {
	return s.entries.List(ctx)
}

// DeleteEntry removes an entry and abandons its open flows
func (s *EntryService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for flowID, flow := range s.flows {
		if flow.entryID == id {
			delete(s.flows, flowID)
		}
	}
	s.mu.Unlock()

	s.logger.Info("Config entry deleted", zap.String("entryID", id))
	return nil
}

// StartOptionsFlow opens an options flow for an entry and returns its first form
func (s *EntryService) StartOptionsFlow(ctx context.Context, entryID string) (*FlowResult, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	flowID := uuid.New().String()
	state := entities.NewOptionsFlow()

	s.mu.Lock()
	s.flows[flowID] = &flowSession{entryID: entryID, state: state, updatedAt: s.now()}
	s.mu.Unlock()

	s.logger.Debug("Options flow started", zap.String("flowID", flowID), zap.String("entryID", entryID))

	form := state.Form(entry.StoredOptions())
	return &FlowResult{FlowID: flowID, EntryID: entryID, Form: &form}, nil
}

// SubmitOptionsFlow applies input to the current step of a flow. On the last
// step the collected options replace the entry's options and the flow is closed.
func (s *EntryService) SubmitOptionsFlow(ctx context.Context, flowID string, input map[string]interface{}) (*FlowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, exists := s.flows[flowID]
	if !exists {
		return nil, ErrFlowNotFound
	}

	next, err := entities.AdvanceOptionsFlow(flow.state, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if next.Step != entities.StepDone {
		entry, err := s.entries.GetByID(ctx, flow.entryID)
		if err != nil {
			return nil, err
		}
		flow.state = next
		flow.updatedAt = s.now()
		form := next.Form(entry.StoredOptions())
		return &FlowResult{FlowID: flowID, EntryID: flow.entryID, Form: &form}, nil
	}

	if err := s.entries.UpdateOptions(ctx, flow.entryID, next.Options); err != nil {
		return nil, fmt.Errorf("failed to save options: %w", err)
	}
	delete(s.flows, flowID)

	s.logger.Info("Options flow finished",
		zap.String("flowID", flowID),
		zap.String("entryID", flow.entryID))

	return &FlowResult{FlowID: flowID, EntryID: flow.entryID, Done: true, Options: next.Options}, nil
}

// ExpireFlows drops flows that have not advanced for longer than maxAge and
// returns how many were dropped.
func (s *EntryService) ExpireFlows(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, flow := range s.flows {
		if flow.updatedAt.Before(cutoff) {
			delete(s.flows, id)
			expired++
		}
	}
	return expired
}
