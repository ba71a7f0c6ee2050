package selector

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/fleet"
)

// Lister returns one page of groups at a time. An empty next token marks the
// last page.
type Lister interface {
	Name() string
	ListGroups(ctx context.Context, token string) (groups []fleet.Group, next string, err error)
}

// Fetch drains every page from the lister and returns the complete roster.
// A partial roster is never returned. Cancellation is checked before each
// page and each page gets its own callTimeout (zero means no timeout).
func Fetch(ctx context.Context, lister Lister, callTimeout time.Duration) ([]fleet.Group, error) {
	var roster []fleet.Group
	var token string
	seen := make(map[string]bool)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "listing groups from %s before page %d", lister.Name(), page)
		}

		groups, next, err := listPage(ctx, lister, token, callTimeout)
		if err != nil {
			return nil, errors.Wrapf(err, "listing groups from %s page %d", lister.Name(), page)
		}

		roster = append(roster, groups...)

		if next == "" {
			log.Debugf("Fetched %d groups from %s in %d pages", len(roster), lister.Name(), page)
			return roster, nil
		}

		if seen[next] {
			return nil, errors.Errorf("%s returned continuation token %q twice", lister.Name(), next)
		}
		seen[next] = true
		token = next
	}
}

func listPage(ctx context.Context, lister Lister, token string, timeout time.Duration) ([]fleet.Group, string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return lister.ListGroups(ctx, token)
}

// Roster is a run-scoped cache of a lister's groups. It is populated at most
// once; every caller after the first sees the same result. The returned slice
// is shared and must not be modified.
type Roster struct {
	lister      Lister
	callTimeout time.Duration

	once   sync.Once
	groups []fleet.Group
	err    error
}

// NewRoster returns an unpopulated Roster for the lister
func NewRoster(lister Lister, callTimeout time.Duration) *Roster {
	return &Roster{
		lister:      lister,
		callTimeout: callTimeout,
	}
}

// Load populates the roster on first use and returns it. A failed first load
// is cached as well, since the run it belongs to cannot make decisions on a
// partial roster.
func (r *Roster) Load(ctx context.Context) ([]fleet.Group, error) {
	r.once.Do(func() {
		r.groups, r.err = Fetch(ctx, r.lister, r.callTimeout)
	})

	return r.groups, r.err
}
