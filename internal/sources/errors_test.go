package sources_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"crate/internal/sources"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		header    http.Header
		wantMiss  bool
		wantTrans bool
		wantFatal bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "not found", status: http.StatusNotFound, wantMiss: true},
		{name: "rate limited", status: http.StatusTooManyRequests, wantTrans: true},
		{name: "server error", status: http.StatusBadGateway, wantTrans: true},
		{name: "unauthorized", status: http.StatusUnauthorized, wantFatal: true},
		{name: "bad request", status: http.StatusBadRequest, wantFatal: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tc.status, Header: tc.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}
			err := sources.ClassifyStatus("test", "op", resp)
			if tc.status == http.StatusOK {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if got := sources.IsMiss(err); got != tc.wantMiss {
				t.Fatalf("IsMiss=%v want %v (%v)", got, tc.wantMiss, err)
			}
			if got := sources.IsTransient(err); got != tc.wantTrans {
				t.Fatalf("IsTransient=%v want %v (%v)", got, tc.wantTrans, err)
			}
			if got := sources.IsFatal(err); got != tc.wantFatal {
				t.Fatalf("IsFatal=%v want %v (%v)", got, tc.wantFatal, err)
			}
		})
	}
}

func TestClassifyStatusHonorsRetryAfter(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "7")
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: header}

	err := sources.ClassifyStatus("test", "op", resp)
	if !sources.IsTransient(err) {
		t.Fatalf("expected transient, got %v", err)
	}
	if hint := sources.RetryAfterHint(err); hint != 7*time.Second {
		t.Fatalf("RetryAfterHint=%v want 7s", hint)
	}
}

func TestClassifyTransportPassesCancellationThrough(t *testing.T) {
	err := sources.ClassifyTransport("test", "op", context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sources.IsTransient(err) {
		t.Fatal("cancellation must not classify as transient")
	}

	err = sources.ClassifyTransport("test", "op", errors.New("connection reset"))
	if !sources.IsTransient(err) {
		t.Fatalf("expected transient, got %v", err)
	}
}

func TestPolicyRetriesTransientOnly(t *testing.T) {
	policy := sources.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return sources.Wrap(sources.ErrTransient, "test", "op", "flaky", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}

	calls = 0
	err = policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sources.Wrap(sources.ErrFatal, "test", "op", "revoked", nil)
	})
	if !sources.IsFatal(err) {
		t.Fatalf("expected fatal, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("fatal errors must not retry, got %d attempts", calls)
	}

	calls = 0
	err = policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sources.Wrap(sources.ErrMiss, "test", "op", "absent", nil)
	})
	if !sources.IsMiss(err) {
		t.Fatalf("expected miss, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("misses must not retry, got %d attempts", calls)
	}
}

func TestPolicyStopsAfterMaxAttempts(t *testing.T) {
	policy := sources.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sources.Wrap(sources.ErrTransient, "test", "op", "still down", nil)
	})
	if !sources.IsTransient(err) {
		t.Fatalf("expected transient, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestPolicyRespectsContextDuringBackoff(t *testing.T) {
	policy := sources.Policy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func(ctx context.Context) error {
		return sources.Wrap(sources.ErrTransient, "test", "op", "down", nil)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
