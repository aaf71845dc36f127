package impl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/valueobject"
	"github.com/ca-srg/usagemon/infrastructure/logging"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// fakeInvoker replays canned invocations and records the arguments it saw
type fakeInvoker struct {
	stdout  []byte
	stderr  []byte
	err     error
	calls   int
	sawArgs [][]string
}

func (f *fakeInvoker) Invoke(ctx context.Context, args []string, timeout time.Duration) ([]byte, []byte, error) {
	f.calls++
	f.sawArgs = append(f.sawArgs, args)
	return f.stdout, f.stderr, f.err
}

func newTestScraperService(invoker *fakeInvoker, maxAttempts int) usecase.ScraperService {
	policy := valueobject.RetryPolicy{
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  maxAttempts,
		MaxDelay:     10 * time.Millisecond,
	}
	return NewScraperServiceImpl(invoker, 30*time.Second, policy, &logging.NoOpLogger{})
}

func TestScraperServicePollOnce(t *testing.T) {
	t.Run("decodes a successful poll", func(t *testing.T) {
		invoker := &fakeInvoker{
			stdout: []byte(`{"status":"success","usage_percent":33.3,"tokens_used":333,"tokens_limit":1000,"tokens_remaining":667}`),
		}
		svc := newTestScraperService(invoker, 1)

		data, err := svc.PollOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 33.3, data.UsagePercent)
		require.Len(t, invoker.sawArgs, 1)
		assert.Equal(t, []string{"--poll_once"}, invoker.sawArgs[0])
	})

	t.Run("invocation error is returned without a second call", func(t *testing.T) {
		invoker := &fakeInvoker{err: domain.ErrTimeout("scraper invocation", 30)}
		svc := newTestScraperService(invoker, 1)

		_, err := svc.PollOnce(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTimeout))
		assert.Equal(t, 1, invoker.calls)
	})

	t.Run("protocol violation on malformed stdout", func(t *testing.T) {
		invoker := &fakeInvoker{stdout: []byte("garbage")}
		svc := newTestScraperService(invoker, 1)

		_, err := svc.PollOnce(context.Background())
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeProtocolViolation))
	})
}

func TestScraperServicePollOnceWithRetry(t *testing.T) {
	t.Run("retries up to max attempts", func(t *testing.T) {
		invoker := &fakeInvoker{stderr: []byte(`{"error_code":"navigation_failed","message":"page gone"}`)}
		svc := newTestScraperService(invoker, 3)

		_, err := svc.PollOnceWithRetry(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeExecutionFailure))
		assert.Equal(t, 3, invoker.calls)
	})
}

func TestScraperServiceLogin(t *testing.T) {
	t.Run("success reply", func(t *testing.T) {
		invoker := &fakeInvoker{stdout: []byte(`{"status":"success"}`)}
		svc := newTestScraperService(invoker, 1)

		require.NoError(t, svc.Login(context.Background()))
		require.Len(t, invoker.sawArgs, 1)
		assert.Equal(t, []string{"--login"}, invoker.sawArgs[0])
	})

	t.Run("failure reply", func(t *testing.T) {
		invoker := &fakeInvoker{stdout: []byte(`{"status":"error","error":"manual_login_failed","message":"window closed"}`)}
		svc := newTestScraperService(invoker, 1)

		err := svc.Login(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeExecutionFailure))
	})
}

func TestScraperServiceCheckSession(t *testing.T) {
	tests := []struct {
		name      string
		stdout    string
		stderr    string
		wantValid bool
		wantErr   bool
	}{
		{
			name:      "valid session",
			stdout:    `{"status":"success"}`,
			wantValid: true,
		},
		{
			name:   "session required on stdout is a negative answer",
			stdout: `{"status":"error","error":"session_required"}`,
		},
		{
			name:   "session expired on stdout is a negative answer",
			stdout: `{"status":"error","error":"session_expired"}`,
		},
		{
			name:   "session required diagnostic on stderr is a negative answer",
			stderr: `{"error_code":"session_required","message":"no session"}`,
		},
		{
			name:    "unrelated failure is an error",
			stdout:  `{"status":"error","error":"fatal","message":"boom"}`,
			wantErr: true,
		},
		{
			name:    "no output is an error",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := &fakeInvoker{stdout: []byte(tt.stdout), stderr: []byte(tt.stderr)}
			svc := newTestScraperService(invoker, 1)

			valid, err := svc.CheckSession(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, valid)
			require.Len(t, invoker.sawArgs, 1)
			assert.Equal(t, []string{"--check-session"}, invoker.sawArgs[0])
		})
	}
}
