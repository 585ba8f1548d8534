package ports

import (
	"context"

	"github.com/workcity/crm-client/internal/core/domain"
)

// SessionStore is the single persistent authentication slot. Only the auth
// service writes it; every Save is a full overwrite. Implementations must
// treat a corrupt slot as absent rather than failing.
type SessionStore interface {
	// Load returns the stored session, or (nil, nil) when the slot is empty.
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}
