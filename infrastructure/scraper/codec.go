package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/entity"
)

// scraperPayload mirrors the stdout JSON contract. Pointers distinguish a
// field that is absent from one that is zero.
type scraperPayload struct {
	Status          *string                  `json:"status"`
	UsagePercent    *float64                 `json:"usage_percent"`
	TokensUsed      *int64                   `json:"tokens_used"`
	TokensLimit     *int64                   `json:"tokens_limit"`
	TokensRemaining *int64                   `json:"tokens_remaining"`
	ResetTime       *string                  `json:"reset_time"`
	LastUpdated     string                   `json:"last_updated"`
	Components      *[]entity.UsageComponent `json:"components"`
	Error           string                   `json:"error"`
	Message         string                   `json:"message"`
}

// stderrDiagnostic mirrors the structured stderr contract, distinct from the
// scraper's free-text logging
type stderrDiagnostic struct {
	ErrorCode   string                 `json:"error_code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Diagnostics map[string]interface{} `json:"diagnostics,omitempty"`
}

// diagnosticCodes is the fixed lookup from stderr error_code to error kind.
// Unrecognized codes fall through to a protocol violation.
var diagnosticCodes = map[string]domain.ErrorCode{
	"session_required":    domain.ErrCodeExecutionFailure,
	"session_expired":     domain.ErrCodeExecutionFailure,
	"navigation_failed":   domain.ErrCodeExecutionFailure,
	"manual_login_failed": domain.ErrCodeExecutionFailure,
	"timeout":             domain.ErrCodeTimeout,
	"fatal":               domain.ErrCodeExecutionFailure,
}

// Decode turns the raw scraper output into a usage payload or a classified
// error. A non-empty, well-formed success or error payload on stdout always
// wins over anything on stderr; stderr is consulted only to recover a cause
// when stdout is silent.
func Decode(stdout, stderr []byte) (*entity.UsageData, error) {
	out := bytes.TrimSpace(stdout)
	errOut := bytes.TrimSpace(stderr)

	if len(out) > 0 {
		return decodeStdout(out)
	}
	if len(errOut) > 0 {
		return nil, decodeStderr(errOut)
	}
	return nil, domain.ErrProtocolViolation("scraper produced no output")
}

func decodeStdout(out []byte) (*entity.UsageData, error) {
	var payload scraperPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, domain.ErrProtocolViolation(fmt.Sprintf("stdout is not valid JSON: %v", err))
	}

	if payload.Status == nil {
		return nil, domain.ErrProtocolViolation("missing required field: status")
	}

	switch *payload.Status {
	case "success", "ok":
		return buildUsageData(&payload)
	default:
		// The scraper reported a structured failure on stdout
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("scraper reported status %q", *payload.Status)
		}
		if payload.Error != "" {
			msg = fmt.Sprintf("%s: %s", payload.Error, msg)
		}
		return nil, domain.ErrExecutionFailure(msg).
			WithDetails("error", payload.Error).
			WithDetails("status", *payload.Status)
	}
}

func buildUsageData(payload *scraperPayload) (*entity.UsageData, error) {
	data := &entity.UsageData{
		Status:      *payload.Status,
		ResetTime:   payload.ResetTime,
		LastUpdated: payload.LastUpdated,
	}

	// A present components key selects the component-style success shape
	// even when the array is empty; the flat numeric fields are then
	// optional. Only an absent key triggers flat-payload validation.
	if payload.Components != nil {
		data.Components = *payload.Components
	} else {
		missing := missingNumericField(payload)
		if missing != "" {
			if payload.UsagePercent == nil && payload.TokensUsed == nil &&
				payload.TokensLimit == nil && payload.TokensRemaining == nil {
				// Nothing usage-shaped at all
				return nil, domain.ErrProtocolViolation("missing required field: components")
			}
			return nil, domain.ErrProtocolViolation("missing required field: " + missing)
		}
	}

	if payload.UsagePercent != nil {
		data.UsagePercent = *payload.UsagePercent
	}
	if payload.TokensUsed != nil {
		data.TokensUsed = *payload.TokensUsed
	}
	if payload.TokensLimit != nil {
		data.TokensLimit = *payload.TokensLimit
	}
	if payload.TokensRemaining != nil {
		data.TokensRemaining = *payload.TokensRemaining
	}

	if err := data.Validate(); err != nil {
		if domainErr, ok := domain.AsDomainError(err); ok && domainErr.Code == domain.ErrCodeInvalidInput {
			return nil, domain.ErrProtocolViolation(domainErr.Message)
		}
		return nil, err
	}
	return data, nil
}

func missingNumericField(payload *scraperPayload) string {
	switch {
	case payload.UsagePercent == nil:
		return "usage_percent"
	case payload.TokensUsed == nil:
		return "tokens_used"
	case payload.TokensLimit == nil:
		return "tokens_limit"
	case payload.TokensRemaining == nil:
		return "tokens_remaining"
	}
	return ""
}

func decodeStderr(errOut []byte) error {
	var diag stderrDiagnostic
	if err := json.Unmarshal(errOut, &diag); err != nil || diag.ErrorCode == "" {
		// Free-text stderr, not a structured diagnostic
		return domain.ErrExecutionFailure(string(errOut))
	}

	msg := diag.Message
	if msg == "" {
		msg = fmt.Sprintf("scraper diagnostic %q", diag.ErrorCode)
	}

	code, recognized := diagnosticCodes[diag.ErrorCode]
	if !recognized {
		return annotateDiagnostic(domain.ErrProtocolViolation(msg), &diag)
	}
	return annotateDiagnostic(domain.NewDomainError(code, msg), &diag)
}

func annotateDiagnostic(err *domain.DomainError, diag *stderrDiagnostic) *domain.DomainError {
	err = err.WithDetails("errorCode", diag.ErrorCode)
	if diag.Details != "" {
		err = err.WithDetails("details", diag.Details)
	}
	if diag.Timestamp != "" {
		err = err.WithDetails("timestamp", diag.Timestamp)
	}
	if len(diag.Diagnostics) > 0 {
		err = err.WithDetails("diagnostics", diag.Diagnostics)
	}
	return err
}
