package upstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var upstreamRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tenders_upstream_retries_total",
	Help: "Total number of upstream retry attempts",
})

// checkRetry retries transport errors, timeouts, 408, 429 and 5xx.
// Other 4xx responses are returned to the caller on the first attempt.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		// excludes redirect loops, bad schemes and TLS failures
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return shouldRetry(classifyStatus(resp.StatusCode)), nil
}

func requestLogHook(_ retryablehttp.Logger, _ *http.Request, attempt int) {
	if attempt > 0 {
		upstreamRetriesTotal.Inc()
	}
}

func responseLogHook(_ retryablehttp.Logger, resp *http.Response) {
	upstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
}

// leveledLogger bridges retryablehttp.LeveledLogger to zerolog.
type leveledLogger struct {
	logger zerolog.Logger
}

// Error logs at warn: a failed attempt is not fatal for the page.
func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
