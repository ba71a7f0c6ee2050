package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultRetryPolicy().Validate())

	tests := []struct {
		policy    RetryPolicy
		expectErr bool
		message   string
	}{
		{RetryPolicy{MaxAttempts: 1}, false, "single attempt without delays"},
		{RetryPolicy{MaxAttempts: 0}, true, "no attempts"},
		{RetryPolicy{MaxAttempts: 3, BaseDelay: -time.Second}, true, "negative base delay"},
		{RetryPolicy{MaxAttempts: 3, MaxDelay: -time.Second}, true, "negative max delay"},
		{RetryPolicy{MaxAttempts: 3, Factor: 0.5}, true, "shrinking factor"},
		{RetryPolicy{MaxAttempts: 3, Factor: 1}, false, "constant delay"},
		{RetryPolicy{MaxAttempts: 3, Jitter: -1}, true, "negative jitter"},
	}

	for _, test := range tests {
		err := test.policy.Validate()
		if test.expectErr {
			assert.Error(t, err, test.message)
		} else {
			assert.NoError(t, err, test.message)
		}
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{
		BaseDelay:   100 * time.Millisecond,
		Factor:      2,
		MaxDelay:    300 * time.Millisecond,
		MaxAttempts: 5,
	}

	b := p.backoff()
	assert.Equal(t, 100*time.Millisecond, b.Step())
	assert.Equal(t, 200*time.Millisecond, b.Step())
	assert.Equal(t, 300*time.Millisecond, b.Step(), "delay is capped")
	assert.Equal(t, 300*time.Millisecond, b.Step(), "capped delay repeats")

	fresh := p.backoff()
	assert.Equal(t, 100*time.Millisecond, fresh.Step(), "every apply starts from the base delay")
}
