package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/mernshop/shop-backend/pkg/featureflag"
	"github.com/mernshop/shop-backend/pkg/utils"
)

// startTimeKey is the gin context key of the request arrival time.
const startTimeKey = "middleware.startTime"

// RequestLogger attaches a logger with the request method and route to
// the request context.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.NewLoggingContextWithValues(
			c.Request.Context(), nil, "http",
			"method", c.Request.Method,
			"route", RouteLabel(c.Request),
		)
		c.Request = c.Request.WithContext(ctx)
	}
}

// RequestTimer stamps each request with its arrival time.
func RequestTimer(clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, clk.Now())
	}
}

func startTime(c *gin.Context) (time.Time, bool) {
	value, found := c.Get(startTimeKey)
	if !found {
		return time.Time{}, false
	}
	start, ok := value.(time.Time)
	return start, ok
}

// RouteLabel returns the value of the route label for the given request.
// This is the escaped request path without the query string unless feature
// flag RouteLabelWithQuery is enabled.
// Label values must be valid UTF-8, so the path is never unescaped.
func RouteLabel(r *http.Request) string {
	if featureflag.RouteLabelWithQuery.Enabled() {
		return strings.ToValidUTF8(r.URL.RequestURI(), "\uFFFD")
	}
	return r.URL.EscapedPath()
}
