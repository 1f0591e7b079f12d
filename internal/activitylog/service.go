package activitylog

import "context"

// Service exposes the read side of the activity log for admin views.
// Writes go through the Recorder, never through this interface.
type Service interface {
	List(ctx context.Context, filter Filter) ([]*Log, int, error)
	ListByUser(ctx context.Context, userID string, filter Filter) ([]*Log, int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Log, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByUser(ctx context.Context, userID string, filter Filter) ([]*Log, int, error) {
	if userID == "" {
		return nil, 0, ErrUserIDRequired
	}
	filter.UserID = userID
	return s.repo.List(ctx, filter)
}
