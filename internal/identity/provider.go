package identity

import "context"

// InvitedUser is the provider-side identity created for an invitation.
type InvitedUser struct {
	ExternalID string
	Email      string
}

// Provider is the boundary to the external identity service. All methods are
// remote calls; failures must be treated as upstream errors by callers.
type Provider interface {
	InviteUser(ctx context.Context, email, name, role string) (InvitedUser, error)
	RevokeInvitation(ctx context.Context, externalID string) error
	SendPasswordReset(ctx context.Context, email string) error
	DisableUser(ctx context.Context, externalID string) error
}
