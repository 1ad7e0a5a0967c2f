// Package http fetches monitored content and delivers notifications over
// HTTP with retries.
package http

import (
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// UserAgent is sent with every request. Some targets reject requests that do
// not look like they come from a browser.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultRetryMax is the number of retries after a failed request.
const DefaultRetryMax = 3

// NewClient returns a retrying client that logs through logger.
func NewClient(logger *zap.SugaredLogger) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = DefaultRetryMax
	c.Logger = leveledLogger{logger}
	return c
}

// leveledLogger adapts a zap logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warnw(msg, keysAndValues...)
}
