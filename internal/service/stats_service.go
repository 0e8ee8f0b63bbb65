package service

import (
	"context"

	"planora/internal/cache"
	"planora/internal/models"
	"planora/internal/repository"
)

// StatsService aggregates counters for the admin dashboard.
type StatsService struct {
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
	taskRepo  repository.TaskRepository
}

// NewStatsService returns a new StatsService.
func NewStatsService(userRepo repository.UserRepository, eventRepo repository.EventRepository, taskRepo repository.TaskRepository) *StatsService {
	return &StatsService{userRepo: userRepo, eventRepo: eventRepo, taskRepo: taskRepo}
}

// GetAdminStats returns aggregate counters across users, events, and tasks.
// The result is cached briefly; the dashboard polls it.
func (s *StatsService) GetAdminStats(ctx context.Context, principal models.Principal) (*AdminStats, error) {
	if !principal.Resolved() {
		return nil, models.NewAuthenticationRequiredError()
	}
	if !principal.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}

	var stats AdminStats
	err := cache.CacheAside(ctx, cache.StatsKey, &stats, cache.StatsTTL, func() error {
		return s.computeStats(ctx, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *StatsService) computeStats(ctx context.Context, stats *AdminStats) error {
	var err error
	if stats.UserCount, err = s.userRepo.Count(ctx); err != nil {
		return err
	}
	if stats.EventCount, err = s.eventRepo.Count(ctx); err != nil {
		return err
	}
	if stats.TaskCount, err = s.taskRepo.Count(ctx); err != nil {
		return err
	}
	if stats.CompletedTaskCount, err = s.taskRepo.CountCompleted(ctx); err != nil {
		return err
	}
	if stats.ActiveOrganizerCount, err = s.eventRepo.CountDistinctOrganizers(ctx); err != nil {
		return err
	}

	// With no tasks at all the rate is 0, not a division by zero.
	if stats.TaskCount > 0 {
		stats.CompletionRate = float64(stats.CompletedTaskCount) / float64(stats.TaskCount)
	} else {
		stats.CompletionRate = 0.0
	}
	return nil
}
