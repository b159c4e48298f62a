package app

import (
	"context"
	"time"

	"habits/internal/domain"
)

const (
	// HistoryDays is the window served by default: today and the six days before.
	HistoryDays    = 7
	maxHistoryDays = 366
)

// HistoryService aggregates completion logs into per-day counts.
type HistoryService struct {
	logs domain.CompletionRepository
	now  func() time.Time
}

// NewHistoryService creates a HistoryService backed by the given repository.
func NewHistoryService(logs domain.CompletionRepository) *HistoryService {
	return &HistoryService{logs: logs, now: time.Now}
}

// Recent returns completion counts keyed by UTC day for the last days days,
// today included. Days without completions are absent from the map.
func (s *HistoryService) Recent(ctx context.Context, userID int64, days int) (map[string]int, error) {
	if days <= 0 {
		days = HistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	today := s.now().UTC()
	from := domain.Day(today.AddDate(0, 0, -(days - 1)))
	to := domain.Day(today)

	counts, err := s.logs.CompletionCounts(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}
