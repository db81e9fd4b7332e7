package retrylimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string { return "status" }

func statusOf(err error) int {
	var s statusErr
	if errors.As(err, &s) {
		return int(s)
	}
	return 0
}

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.Jitter = false
	cfg.Status = statusOf
	return cfg
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		errs     []error
		calls    int
		wantErr  bool
		contains string
	}{
		{"first try", []error{nil}, 1, false, ""},
		{"recovers from 5xx", []error{statusErr(502), nil}, 2, false, ""},
		{"recovers from 429", []error{statusErr(429), statusErr(429), nil}, 3, false, ""},
		{"4xx is final", []error{statusErr(403)}, 1, true, "status"},
		{"fatal stops", []error{&FatalError{Err: errors.New("closed DMs")}}, 1, true, "closed DMs"},
		{"gives up", []error{errors.New("a"), errors.New("b"), errors.New("c")}, 3, true, "max attempts (3) exceeded: c"},
	}

	for _, test := range tests {
		calls := 0
		err := WithRetryConfig(context.Background(), func() error {
			e := test.errs[calls]
			calls++
			return e
		}, nil, fastConfig())

		if calls != test.calls {
			t.Errorf("%s: calls = %d, expected %d", test.name, calls, test.calls)
		}
		if (err != nil) != test.wantErr {
			t.Errorf("%s: error = %v", test.name, err)
		}
		if err != nil && !strings.Contains(err.Error(), test.contains) {
			t.Errorf("%s: error = %q, expected to contain %q", test.name, err, test.contains)
		}
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour

	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := WithRetryConfig(ctx, func() error {
		calls++
		return errors.New("down")
	}, nil, cfg)

	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("error = %v after %d calls", err, calls)
	}
}

func TestAdaptiveLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 2, 0.5)

	lim.RateLimited()
	if got := lim.CurrentLimit(); got != 2 {
		t.Errorf("after overload limit = %v, expected 2", got)
	}
	lim.RateLimited()
	lim.RateLimited()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("limit = %v, expected the floor 1", got)
	}

	// success right after an overload does not raise the rate
	lim.Success()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("limit = %v, expected 1", got)
	}

	fresh := NewAdaptiveLimiter(7, 1, 8, 2, 0.5)
	fresh.Success()
	if got := fresh.CurrentLimit(); got != 8 {
		t.Errorf("limit = %v, expected the ceiling 8", got)
	}
}
