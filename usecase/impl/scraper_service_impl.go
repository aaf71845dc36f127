package impl

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/domain/valueobject"
	"github.com/ca-srg/usagemon/infrastructure/retry"
	"github.com/ca-srg/usagemon/infrastructure/scraper"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// Scraper argument contract
const (
	argLogin        = "--login"
	argCheckSession = "--check-session"
	argPollOnce     = "--poll_once"
)

// ScraperServiceImpl implements the ScraperService interface
type ScraperServiceImpl struct {
	invoker     scraper.ProcessInvoker
	timeout     time.Duration
	retryPolicy valueobject.RetryPolicy
	logger      domain.Logger
}

// NewScraperServiceImpl creates a new scraper service implementation
func NewScraperServiceImpl(
	invoker scraper.ProcessInvoker,
	timeout time.Duration,
	retryPolicy valueobject.RetryPolicy,
	logger domain.Logger,
) usecase.ScraperService {
	return &ScraperServiceImpl{
		invoker:     invoker,
		timeout:     timeout,
		retryPolicy: retryPolicy,
		logger:      logger,
	}
}

// PollOnce implements ScraperService. It never retries; a failure is
// reported to the caller as a single classified error.
func (s *ScraperServiceImpl) PollOnce(ctx context.Context) (*entity.UsageData, error) {
	invocationID := uuid.NewString()
	logger := s.logger.WithFields(domain.NewField("invocationId", invocationID))

	logger.Debug(ctx, "invoking scraper", domain.NewField("args", argPollOnce))
	stdout, stderr, err := s.invoker.Invoke(ctx, []string{argPollOnce}, s.timeout)
	if err != nil {
		logger.Warn(ctx, "scraper invocation failed", domain.NewField("error", err.Error()))
		return nil, err
	}

	data, err := scraper.Decode(stdout, stderr)
	if err != nil {
		logger.Warn(ctx, "scraper output rejected", domain.NewField("error", err.Error()))
		return nil, err
	}

	logger.Debug(ctx, "poll succeeded", domain.NewField("usagePercent", data.UsagePercent))
	return data, nil
}

// PollOnceWithRetry implements ScraperService
func (s *ScraperServiceImpl) PollOnceWithRetry(ctx context.Context) (*entity.UsageData, error) {
	return retry.Do(ctx, s.retryPolicy, s.logger, func(ctx context.Context) (*entity.UsageData, error) {
		return s.PollOnce(ctx)
	})
}

// statusReply is the minimal stdout shape of the login and check-session
// flows
type statusReply struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login implements ScraperService
func (s *ScraperServiceImpl) Login(ctx context.Context) error {
	stdout, stderr, err := s.invoker.Invoke(ctx, []string{argLogin}, s.timeout)
	if err != nil {
		return err
	}

	reply, err := parseStatusReply(stdout, stderr)
	if err != nil {
		return err
	}
	if reply.Status != "success" && reply.Status != "ok" {
		msg := reply.Message
		if msg == "" {
			msg = "login failed"
		}
		return domain.ErrExecutionFailure(msg).WithDetails("error", reply.Error)
	}
	return nil
}

// CheckSession implements ScraperService. A missing or expired session is a
// negative answer, not an error.
func (s *ScraperServiceImpl) CheckSession(ctx context.Context) (bool, error) {
	stdout, stderr, err := s.invoker.Invoke(ctx, []string{argCheckSession}, s.timeout)
	if err != nil {
		return false, err
	}

	reply, err := parseStatusReply(stdout, stderr)
	if err != nil {
		if domainErr, ok := domain.AsDomainError(err); ok {
			if code, hasCode := domainErr.Details["errorCode"]; hasCode {
				if code == "session_required" || code == "session_expired" {
					return false, nil
				}
			}
		}
		return false, err
	}
	if reply.Status == "success" || reply.Status == "ok" {
		return true, nil
	}
	if reply.Error == "session_required" || reply.Error == "session_expired" {
		return false, nil
	}
	return false, domain.ErrExecutionFailure(reply.Message).WithDetails("error", reply.Error)
}

func parseStatusReply(stdout, stderr []byte) (*statusReply, error) {
	if len(stdout) == 0 {
		// Reuse the codec's stderr classification for silent stdout
		if _, err := scraper.Decode(stdout, stderr); err != nil {
			return nil, err
		}
		return nil, domain.ErrProtocolViolation("scraper produced no output")
	}

	var reply statusReply
	if err := json.Unmarshal(stdout, &reply); err != nil {
		return nil, domain.ErrProtocolViolation("stdout is not valid JSON: " + err.Error())
	}
	if reply.Status == "" {
		return nil, domain.ErrProtocolViolation("missing required field: status")
	}
	return &reply, nil
}
