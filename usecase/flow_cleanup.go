package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Defaults for the options flow cleanup
const (
	DefaultFlowTTL             = 30 * time.Minute
	DefaultFlowCleanupInterval = 5 * time.Minute
)

// FlowExpirer drops options flows that were abandoned mid-way
type FlowExpirer interface {
	ExpireFlows(maxAge time.Duration) int
}

// FlowCleanupService periodically expires abandoned options flows
type FlowCleanupService struct {
	flows    FlowExpirer
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewFlowCleanupService creates a new flow cleanup service
func NewFlowCleanupService(flows FlowExpirer, ttl, interval time.Duration, logger *zap.Logger) *FlowCleanupService {
	if ttl <= 0 {
		ttl = DefaultFlowTTL
	}
	if interval <= 0 {
		interval = DefaultFlowCleanupInterval
	}
	return &FlowCleanupService{
		flows:    flows,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the background cleanup process. It stops on Stop or when ctx is done.
func (s *FlowCleanupService) Start(ctx context.Context) {
	go s.cleanupLoop(ctx)
	s.logger.Info("Flow cleanup service started",
		zap.Duration("ttl", s.ttl),
		zap.Duration("interval", s.interval))
}

// Stop stops the cleanup service and waits for the loop to exit
func (s *FlowCleanupService) Stop() {
	close(s.stopChan)
	<-s.done
	s.logger.Info("Flow cleanup service stopped")
}

func (s *FlowCleanupService) cleanupLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *FlowCleanupService) runCleanup() {
	if expired := s.flows.ExpireFlows(s.ttl); expired > 0 {
		s.logger.Info("Expired abandoned options flows", zap.Int("count", expired))
	}
}
