// Package identity provides the built-in identity resolution adapter. The
// hub itself never verifies credentials; a deployment fronts this with a real
// provider by swapping the resolver.
package identity

import (
	"context"

	"github.com/signet-rtc/signet/internal/core/domain"
	"github.com/signet-rtc/signet/internal/core/port"
)

// TrustedResolver accepts the client-supplied identity as-is. It only
// enforces that a user id is present and falls back to the id as display
// name.
type TrustedResolver struct{}

func NewTrustedResolver() *TrustedResolver {
	return &TrustedResolver{}
}

func (r *TrustedResolver) Resolve(_ context.Context, userID, username string) (port.Identity, error) {
	if userID == "" {
		return port.Identity{}, domain.ErrInvalidParameters
	}
	if username == "" {
		username = userID
	}
	return port.Identity{
		UserID:   domain.UserID(userID),
		Username: username,
	}, nil
}
