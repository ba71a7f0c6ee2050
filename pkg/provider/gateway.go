package provider

import (
	"context"

	"github.com/containership/fleetscaler/pkg/fleet"
)

// Gateway specifies the functions that a provider gateway must implement.
// Gateways are safe for concurrent use.
type Gateway interface {
	Name() string

	// ListGroups returns a single page of groups. An empty next token
	// means this was the last page.
	ListGroups(ctx context.Context, token string) (groups []fleet.Group, next string, err error)

	// UpdateCapacity sets the desired capacity of the named group. Errors
	// that are worth retrying must be wrapped with Transient.
	UpdateCapacity(ctx context.Context, group string, desired int) error
}
