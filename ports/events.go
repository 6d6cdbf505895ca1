package ports

import (
	"context"

	"github.com/walletpulse/gatekeeper/core"
)

// ActivityPublisher hands activity entries to the asynchronous audit
// pipeline. Publishing is best-effort from the caller's point of view:
// authentication never waits on, or fails because of, the audit trail.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, entry *core.ActivityEntry) error
}
