package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/baxromumarov/upfolio/internal/store"
)

// CreditRefillService tops every user up to the daily floor.
type CreditRefillService struct {
	store    *store.Store
	floor    int
	interval time.Duration
	logger   *slog.Logger
}

func NewCreditRefillService(st *store.Store, floor int, interval time.Duration, logger *slog.Logger) *CreditRefillService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditRefillService{store: st, floor: floor, interval: interval, logger: logger}
}

func (s *CreditRefillService) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *CreditRefillService) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.RefillOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefillOnce(ctx)
		}
	}
}

// RefillOnce returns the number of users topped up.
func (s *CreditRefillService) RefillOnce(ctx context.Context) int64 {
	if s.floor <= 0 {
		return 0
	}
	count, err := s.store.RefillCredits(ctx, s.floor)
	if err != nil {
		s.logger.Error("credit refill failed", "floor", s.floor, "error", err)
		return 0
	}
	s.logger.Info("credits refilled", "floor", s.floor, "users", count)
	return count
}
