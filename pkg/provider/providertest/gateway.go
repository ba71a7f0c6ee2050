package providertest

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/containership/fleetscaler/pkg/fleet"
)

// Update records a single UpdateCapacity call
type Update struct {
	Group   string
	Desired int
}

// Gateway is an in-memory provider.Gateway for tests. Groups are served in
// pages of PageSize and successful updates are applied to the stored groups
// so that a later list observes them.
type Gateway struct {
	sync.Mutex

	GatewayName string
	PageSize    int

	// UpdateErrors are returned by successive UpdateCapacity calls before
	// any update succeeds. A nil entry lets that call succeed.
	UpdateErrors []error
	// ListErrors are returned by successive ListGroups calls
	ListErrors []error

	// OnUpdate is called, without the lock held, at the start of every
	// UpdateCapacity call
	OnUpdate func(ctx context.Context, group string, desired int)

	groups    []fleet.Group
	updates   []Update
	listCalls int
}

// NewGateway builds a Gateway serving copies of the given groups
func NewGateway(name string, groups ...fleet.Group) *Gateway {
	g := &Gateway{
		GatewayName: name,
		PageSize:    2,
	}

	g.groups = append(g.groups, groups...)
	return g
}

// Name implements provider.Gateway
func (g *Gateway) Name() string {
	return g.GatewayName
}

// ListGroups implements provider.Gateway. Tokens are page offsets.
func (g *Gateway) ListGroups(ctx context.Context, token string) ([]fleet.Group, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	g.Lock()
	defer g.Unlock()

	g.listCalls++

	if len(g.ListErrors) > 0 {
		err := g.ListErrors[0]
		g.ListErrors = g.ListErrors[1:]
		if err != nil {
			return nil, "", err
		}
	}

	start := 0
	if token != "" {
		var err error
		start, err = strconv.Atoi(token)
		if err != nil || start < 0 || start > len(g.groups) {
			return nil, "", errors.Errorf("invalid token %q", token)
		}
	}

	size := g.PageSize
	if size <= 0 {
		size = len(g.groups)
	}

	end := start + size
	if end >= len(g.groups) {
		end = len(g.groups)
	}

	page := make([]fleet.Group, end-start)
	copy(page, g.groups[start:end])

	var next string
	if end < len(g.groups) {
		next = strconv.Itoa(end)
	}

	return page, next, nil
}

// UpdateCapacity implements provider.Gateway
func (g *Gateway) UpdateCapacity(ctx context.Context, group string, desired int) error {
	if g.OnUpdate != nil {
		g.OnUpdate(ctx, group, desired)
	}

	g.Lock()
	defer g.Unlock()

	g.updates = append(g.updates, Update{Group: group, Desired: desired})

	if len(g.UpdateErrors) > 0 {
		err := g.UpdateErrors[0]
		g.UpdateErrors = g.UpdateErrors[1:]
		if err != nil {
			return err
		}
	}

	for i := range g.groups {
		if g.groups[i].Name == group {
			g.groups[i].Desired = desired
			return nil
		}
	}

	return errors.Errorf("group %q does not exist", group)
}

// Updates returns every UpdateCapacity call made so far, including failed ones
func (g *Gateway) Updates() []Update {
	g.Lock()
	defer g.Unlock()

	out := make([]Update, len(g.updates))
	copy(out, g.updates)
	return out
}

// ListCalls returns the number of ListGroups calls made so far
func (g *Gateway) ListCalls() int {
	g.Lock()
	defer g.Unlock()

	return g.listCalls
}

// Group returns the current stored state of the named group
func (g *Gateway) Group(name string) (fleet.Group, bool) {
	g.Lock()
	defer g.Unlock()

	for _, group := range g.groups {
		if group.Name == name {
			return group, true
		}
	}

	return fleet.Group{}, false
}
