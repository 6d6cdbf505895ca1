package service

import (
	"context"

	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// ActivityService is the read side of the audit trail, used by dashboard
// tooling. It never participates in the authentication path.
type ActivityService struct {
	store ports.ActivityStore
}

// NewActivityService creates a new activity query service.
func NewActivityService(store ports.ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Query returns audit entries matching the filter, newest first.
func (s *ActivityService) Query(ctx context.Context, filter core.ActivityFilter) ([]core.ActivityEntry, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, core.ErrInvalidActivityType
	}

	return s.store.Query(ctx, filter)
}
