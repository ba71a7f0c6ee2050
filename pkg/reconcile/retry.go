package reconcile

import (
	"time"

	"github.com/pkg/errors"

	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	defaultBaseDelay   = 500 * time.Millisecond
	defaultFactor      = 2.0
	defaultJitter      = 0.1
	defaultMaxDelay    = 10 * time.Second
	defaultMaxAttempts = 5
)

// RetryPolicy bounds the retries of transient update failures
type RetryPolicy struct {
	// BaseDelay is the wait before the first retry
	BaseDelay time.Duration `mapstructure:"baseDelay"`
	// Factor multiplies the delay after every retry
	Factor float64 `mapstructure:"factor"`
	// Jitter adds up to Jitter*delay of random extra wait
	Jitter float64 `mapstructure:"jitter"`
	// MaxDelay caps a single wait; zero means uncapped
	MaxDelay time.Duration `mapstructure:"maxDelay"`
	// MaxAttempts is the total number of update calls, including the first
	MaxAttempts int `mapstructure:"maxAttempts"`
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   defaultBaseDelay,
		Factor:      defaultFactor,
		Jitter:      defaultJitter,
		MaxDelay:    defaultMaxDelay,
		MaxAttempts: defaultMaxAttempts,
	}
}

// Validate returns an error if the policy can't be used
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.Errorf("maxAttempts must be at least 1, got %d", p.MaxAttempts)
	}

	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return errors.New("delays must not be negative")
	}

	if p.Factor != 0 && p.Factor < 1 {
		return errors.Errorf("factor must be 0 or at least 1, got %v", p.Factor)
	}

	if p.Jitter < 0 {
		return errors.Errorf("jitter must not be negative, got %v", p.Jitter)
	}

	return nil
}

// backoff returns a fresh wait.Backoff for a single apply. Attempts are
// counted by the caller; once the cap is reached Step keeps returning it.
func (p RetryPolicy) backoff() wait.Backoff {
	return wait.Backoff{
		Duration: p.BaseDelay,
		Factor:   p.Factor,
		Jitter:   p.Jitter,
		Steps:    p.MaxAttempts,
		Cap:      p.MaxDelay,
	}
}
