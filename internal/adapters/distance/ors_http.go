package distance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorDetail caps how much of a failed matrix response is kept in the error.
const maxErrorDetail = 2048

// matrixStatusError is a non-2xx reply from the matrix endpoint.
type matrixStatusError struct {
	Status int
	Detail string
}

func (e *matrixStatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("matrix endpoint returned %d", e.Status)
	}
	return fmt.Sprintf("matrix endpoint returned %d: %s", e.Status, e.Detail)
}

// transient reports whether the endpoint may answer differently on a later attempt.
func (e *matrixStatusError) transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// postMatrix sends payload to endpoint and returns the body of the first 2xx reply.
// Rate limiting, server errors and network failures are retried with doubling
// delays up to the configured attempt count. The caller closes the body.
func (o *ORSMatrixSource) postMatrix(ctx context.Context, endpoint string, payload []byte) (io.ReadCloser, error) {
	delay := o.backoff
	for attempt := 1; ; attempt++ {
		body, err := o.postOnce(ctx, endpoint, payload)
		if err == nil {
			return body, nil
		}
		if attempt >= o.maxAttempts || !shouldRetry(err) {
			return nil, err
		}

		o.log.Debug("matrix request failed; retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
}

func (o *ORSMatrixSource) postOnce(ctx context.Context, endpoint string, payload []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build matrix request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 == 2 {
		return resp.Body, nil
	}

	defer resp.Body.Close()
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
	return nil, &matrixStatusError{
		Status: resp.StatusCode,
		Detail: strings.TrimSpace(string(detail)),
	}
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *matrixStatusError
	if errors.As(err, &se) {
		return se.transient()
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
