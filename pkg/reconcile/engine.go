package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	utilruntime "k8s.io/apimachinery/pkg/util/runtime"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/guardrail"
	"github.com/containership/fleetscaler/pkg/provider"
	"github.com/containership/fleetscaler/pkg/selector"
)

const (
	engineName = "ReconciliationEngine"

	defaultCallTimeout = 30 * time.Second
	defaultWorkers     = 4
)

var (
	// ErrRetriesExhausted is returned when every allowed attempt at a
	// transient update failed
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrCancelled is returned when a cycle is cancelled before its update
	// was submitted, or while waiting to retry it
	ErrCancelled = errors.New("reconciliation cancelled")
)

// Config configures an Engine
type Config struct {
	// DefaultProvider is the gateway used by decisions that don't name one
	DefaultProvider string
	Retry           RetryPolicy
	// CallTimeout bounds every single provider call. Zero means the default.
	CallTimeout time.Duration
	// Workers bounds the number of concurrent cycles in Run
	Workers int
	// Reporter, if set, receives every outcome in addition to the log
	Reporter Reporter
}

// Engine converges provider groups to decided capacities. It is safe to call
// Reconcile concurrently; updates to the same group are serialized.
type Engine struct {
	gateways provider.RegistryInterface
	config   Config

	locks *keyedMutex
}

// NewEngine returns a new Engine using gateways from the given registry
func NewEngine(gateways provider.RegistryInterface, config Config) (*Engine, error) {
	if gateways == nil {
		return nil, errors.New("gateway registry must be provided")
	}

	if err := config.Retry.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating retry policy")
	}

	if config.CallTimeout <= 0 {
		config.CallTimeout = defaultCallTimeout
	}

	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}

	return &Engine{
		gateways: gateways,
		config:   config,
		locks:    newKeyedMutex(),
	}, nil
}

// rosterFunc returns the roster to select from for the given gateway
type rosterFunc func(ctx context.Context, gw provider.Gateway) ([]fleet.Group, error)

// Reconcile runs a single cycle for the decision against a freshly fetched
// roster. It always returns an Outcome; failures are reported in it.
func (e *Engine) Reconcile(ctx context.Context, d fleet.Decision) Outcome {
	return e.cycle(ctx, d, func(ctx context.Context, gw provider.Gateway) ([]fleet.Group, error) {
		return selector.Fetch(ctx, gw, e.config.CallTimeout)
	}, nil)
}

// Run reconciles every decision concurrently and returns their outcomes in
// the same order. Each provider's roster is fetched once, before any cycle
// starts, and shared read-only by all cycles of this run. Capacities applied
// earlier in the run take precedence over the roster, so decisions for the
// same group are evaluated in turn against its latest capacity. A failing
// cycle never affects the others.
func (e *Engine) Run(ctx context.Context, decisions []fleet.Decision) []Outcome {
	rosters := e.loadRosters(ctx, decisions)
	applied := newAppliedCapacities()

	outcomes := make([]Outcome, len(decisions))
	sem := make(chan struct{}, e.config.Workers)

	var wg sync.WaitGroup
	for i, d := range decisions {
		wg.Add(1)
		go func(i int, d fleet.Decision) {
			defer wg.Done()
			defer utilruntime.HandleCrash()

			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[i] = e.cycle(ctx, d, func(ctx context.Context, gw provider.Gateway) ([]fleet.Group, error) {
				r, ok := rosters[gw.Name()]
				if !ok {
					return nil, errors.Errorf("no roster loaded for provider %q", gw.Name())
				}
				return r.Load(ctx)
			}, applied)
		}(i, d)
	}

	wg.Wait()

	return outcomes
}

// loadRosters populates one roster per distinct provider, concurrently,
// and returns once all are populated
func (e *Engine) loadRosters(ctx context.Context, decisions []fleet.Decision) map[string]*selector.Roster {
	rosters := make(map[string]*selector.Roster)
	for _, d := range decisions {
		gw, err := e.gateways.Get(e.providerName(d))
		if err != nil {
			// Reported by the cycle itself
			continue
		}

		if _, ok := rosters[gw.Name()]; !ok {
			rosters[gw.Name()] = selector.NewRoster(gw, e.config.CallTimeout)
		}
	}

	var wg sync.WaitGroup
	for name, r := range rosters {
		wg.Add(1)
		go func(name string, r *selector.Roster) {
			defer wg.Done()
			groups, err := r.Load(ctx)
			if err != nil {
				log.Errorf("%s: loading roster for provider %q: %s", engineName, name, err)
				return
			}
			log.Debugf("%s: loaded %d groups for provider %q", engineName, len(groups), name)
		}(name, r)
	}
	wg.Wait()

	return rosters
}

func (e *Engine) providerName(d fleet.Decision) string {
	if d.Provider != "" {
		return d.Provider
	}

	return e.config.DefaultProvider
}

// cycle is Resolving -> Evaluating -> Applying for one decision. Capacities
// in applied override the roster; it is nil outside of a run.
func (e *Engine) cycle(ctx context.Context, d fleet.Decision, roster rosterFunc, applied *appliedCapacities) Outcome {
	o := Outcome{
		Fleet:     d.Filter.String(),
		Provider:  e.providerName(d),
		Source:    d.Source,
		Attempted: d.Desired,
	}

	// Resolving
	if err := selector.ValidateFilter(d.Filter); err != nil {
		return e.fail(o, err)
	}

	gw, err := e.gateways.Get(o.Provider)
	if err != nil {
		return e.fail(o, err)
	}
	// Use the gateway's own name in case the registry aliases it
	o.Provider = gw.Name()

	groups, err := roster(ctx, gw)
	if err != nil {
		return e.fail(o, errors.Wrap(err, "fetching roster"))
	}

	group, err := selector.Resolve(d.Filter, groups)
	if err != nil {
		return e.fail(o, err)
	}

	o.Group = group.Name

	key := gw.Name() + "/" + group.Name
	unlock := e.locks.Lock(key)
	defer unlock()

	if desired, ok := applied.get(key); ok {
		group.Desired = desired
	}
	o.Previous = group.Desired

	// Evaluating
	result := guardrail.Evaluate(group, d.Desired)
	o.GuardRail = &result
	o.Reason = result.Reason(group, d.Desired)

	switch {
	case result.Kind == guardrail.NoOp:
		o.Kind = NoChangeNeeded
		return e.finish(o)

	case result.Rejected():
		o.Kind = Rejected
		return e.finish(o)
	}

	// Applying

	if err := ctx.Err(); err != nil {
		return e.fail(o, errors.Wrapf(ErrCancelled, "before updating group %q: %s", group.Name, err))
	}

	attempts, err := e.apply(ctx, gw, group.Name, d.Desired)
	o.Attempts = attempts
	if err != nil {
		return e.fail(o, err)
	}
	applied.set(key, d.Desired)

	o.Kind = Applied
	return e.finish(o)
}

// apply submits the update, retrying transient failures per the retry
// policy. It returns the number of submitted attempts.
func (e *Engine) apply(ctx context.Context, gw provider.Gateway, group string, desired int) (int, error) {
	backoff := e.config.Retry.backoff()

	for attempt := 1; ; attempt++ {
		err := e.submit(ctx, gw, group, desired)
		if err == nil {
			return attempt, nil
		}

		if !provider.IsTransient(err) {
			return attempt, errors.Wrapf(err, "updating group %q to %d", group, desired)
		}

		if attempt >= e.config.Retry.MaxAttempts {
			return attempt, errors.Wrapf(ErrRetriesExhausted, "updating group %q to %d after %d attempts: %s",
				group, desired, attempt, err)
		}

		delay := backoff.Step()
		log.Infof("%s: transient error updating group %q (attempt %d of %d), retrying in %s: %s",
			engineName, group, attempt, e.config.Retry.MaxAttempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Wrapf(ErrCancelled, "waiting to retry update of group %q after: %s", group, err)
		case <-timer.C:
		}
	}
}

// submit performs a single update call. Once submitted the call is detached
// from the caller's cancellation so the provider's answer is always
// observed; it is still bounded by the per-call timeout.
func (e *Engine) submit(ctx context.Context, gw provider.Gateway, group string, desired int) error {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.CallTimeout)
	defer cancel()

	err := gw.UpdateCapacity(callCtx, group, desired)
	if err != nil && callCtx.Err() == context.DeadlineExceeded && !provider.IsTransient(err) {
		// A timed out call may or may not have been applied; retrying
		// the same absolute value is safe.
		err = provider.Transient(err)
	}

	return err
}

func (e *Engine) fail(o Outcome, err error) Outcome {
	o.Kind = Failed
	o.Err = err
	o.Reason = err.Error()
	return e.finish(o)
}

func (e *Engine) finish(o Outcome) Outcome {
	switch o.Kind {
	case Failed:
		log.Errorf("%s: %s", engineName, o)
	default:
		log.Infof("%s: %s", engineName, o)
	}

	if e.config.Reporter != nil {
		e.config.Reporter.Report(o)
	}

	return o
}
