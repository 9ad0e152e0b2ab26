package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spherical/book2md/internal/config"
	"github.com/spherical/book2md/internal/domain"
)

// transientMarkers are substrings of Gemini/gRPC errors worth retrying.
var transientMarkers = []string{
	"RESOURCE_EXHAUSTED", "UNAVAILABLE", "DEADLINE_EXCEEDED",
	"code = ResourceExhausted", "code = Unavailable", "code = DeadlineExceeded",
	"connection reset", "unexpected EOF",
}

// statusCodeRe matches an HTTP status the way client errors print it,
// e.g. "Error 503", "status: 429", "code = 500".
var statusCodeRe = regexp.MustCompile(`(?i)\b(?:error|status|code)\s*[:=]?\s*(\d{3})\b`)

// shouldRetry determines if a status code is retryable
func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// isTransient determines if an error is retryable
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return shouldRetry(apiErr.Code)
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		default:
			return false
		}
	}

	msg := err.Error()
	for _, m := range statusCodeRe.FindAllStringSubmatch(msg, -1) {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil && shouldRetry(code) {
			return true
		}
	}
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// calculateBackoff calculates exponential backoff duration
func calculateBackoff(attempt int, cfg config.RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))

	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	return time.Duration(backoff)
}

// generateWithRetry runs the model call under the per-attempt timeout and
// retries transient failures up to MaxRetries times.
func (c *Client) generateWithRetry(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := c.attempt(ctx, messages)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// The caller gave up; the attempt timeout alone does not stop retries.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if !isTransient(err) {
			return nil, domain.APIError("model call failed", err)
		}

		if attempt == c.retry.MaxRetries {
			break
		}

		backoff := calculateBackoff(attempt, c.retry)
		c.logger.Warn("Model call failed (attempt %d/%d), retrying in %v: %v",
			attempt+1, c.retry.MaxRetries+1, backoff, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, domain.APIError(fmt.Sprintf("model call failed after %d attempt(s)", c.retry.MaxRetries+1), lastErr)
}

func (c *Client) attempt(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	if c.retry.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.retry.PageTimeout)
		defer cancel()
	}
	return c.model.GenerateContent(ctx, messages)
}
