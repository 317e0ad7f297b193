package service

import (
	"context"
)

// systemService is the concrete implementation of SystemService
type systemService struct {
	*deps
}

func newSystemService(d *deps) *systemService {
	return &systemService{deps: d}
}

// Health reports whether the store is reachable
func (s *systemService) Health(ctx context.Context) error {
	if s.repos.DB == nil {
		return nil
	}
	return s.repos.DB.HealthCheck(ctx)
}

func (s *systemService) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var err error
	if stats.Users, err = s.repos.User.Count(ctx); err != nil {
		return nil, wrap(err, "failed to count users")
	}
	if stats.Materials, err = s.repos.Material.Count(ctx); err != nil {
		return nil, wrap(err, "failed to count text materials")
	}
	if stats.Comments, err = s.repos.Comment.Count(ctx); err != nil {
		return nil, wrap(err, "failed to count comments")
	}
	return &stats, nil
}
