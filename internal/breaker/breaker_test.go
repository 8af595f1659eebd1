package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/logging"
)

func TestExecutePassesResult(t *testing.T) {
	b := New("test-pass", Settings{}, logging.NullLogger())
	got, err := Execute(b, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("Execute() = %d, %v", got, err)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	b := New("test-open", Settings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour}, logging.NullLogger())
	upstream := errors.New("boom")

	for i := 0; i < 3; i++ {
		if _, err := Execute(b, func() (string, error) { return "", upstream }); !errors.Is(err, upstream) {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	calls := 0
	_, err := Execute(b, func() (string, error) { calls++; return "ok", nil })
	if !errors.Is(err, domain.ErrServiceOffline) {
		t.Errorf("rejected call error = %v, want ErrServiceOffline", err)
	}
	if calls != 0 {
		t.Error("open breaker ran the call")
	}
}

func TestCallerErrorsDoNotTrip(t *testing.T) {
	b := New("test-excluded", Settings{MinRequests: 2, FailureRatio: 0.5}, logging.NullLogger())
	for i := 0; i < 5; i++ {
		_, err := Execute(b, func() (int, error) { return 0, domain.ErrNotFound })
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}
