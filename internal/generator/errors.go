package generator

// #region imports
import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region classify

// kindForStatus maps an HTTP status from a provider to a generation error kind.
func kindForStatus(code int) interview.GenerationErrorKind {
	switch {
	case code == http.StatusTooManyRequests || code == http.StatusPaymentRequired:
		return interview.GenQuota
	case code == http.StatusBadRequest || code == http.StatusRequestEntityTooLarge ||
		code == http.StatusUnprocessableEntity || code == http.StatusNotFound:
		return interview.GenInvalidInput
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return interview.GenTimeout
	default:
		return interview.GenUnavailable
	}
}

var statusInText = regexp.MustCompile(`\b(4\d\d|5\d\d)\b`)

// classify wraps err as a GenerationError. status is the provider's HTTP
// status when the SDK exposes one, 0 otherwise.
func classify(err error, status int) error {
	if err == nil {
		return nil
	}
	var ge *interview.GenerationError
	if errors.As(err, &ge) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return interview.NewGenerationError(interview.GenTimeout, err)
	}
	if status > 0 {
		return interview.NewGenerationError(kindForStatus(status), err)
	}

	msg := strings.ToLower(err.Error())
	if m := statusInText.FindString(msg); m != "" {
		if code, convErr := strconv.Atoi(m); convErr == nil {
			return interview.NewGenerationError(kindForStatus(code), err)
		}
	}
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted"):
		return interview.NewGenerationError(interview.GenQuota, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return interview.NewGenerationError(interview.GenTimeout, err)
	case strings.Contains(msg, "invalid") || strings.Contains(msg, "not found"):
		return interview.NewGenerationError(interview.GenInvalidInput, err)
	default:
		return interview.NewGenerationError(interview.GenUnavailable, err)
	}
}

// emptyOutput reports a provider that answered with no text.
func emptyOutput(provider string) error {
	return interview.NewGenerationError(interview.GenUnavailable, errors.New(provider+": empty response"))
}

// #endregion
