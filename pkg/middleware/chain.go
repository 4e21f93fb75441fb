package middleware

import (
	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/mernshop/shop-backend/pkg/sampler"
)

// Chain returns the instrumentation handlers in the order they have to
// be installed in front of the route handlers.
func Chain(clk clock.Clock, s sampler.Sampler, instruments *Instruments) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		RequestLogger(),
		RequestTimer(clk),
		ResourceSampling(s, instruments),
		ErrorCounting(instruments),
		MetricsRecording(clk, instruments),
	}
}
