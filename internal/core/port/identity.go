package port

import (
	"context"

	"github.com/signet-rtc/signet/internal/core/domain"
)

type Identity struct {
	UserID   domain.UserID
	Username string
}

// IdentityResolver is the seam to the external identity provider. It is
// consulted once per connection, when the register frame arrives.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID, username string) (Identity, error)
}
