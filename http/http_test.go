package http_test

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	pwhttp "github.com/fwojciec/pagewatch/http"
)

// newClient returns a client that retries without waiting.
func newClient() *retryablehttp.Client {
	c := pwhttp.NewClient(zap.NewNop().Sugar())
	c.RetryWaitMin = time.Millisecond
	c.RetryWaitMax = time.Millisecond
	return c
}
