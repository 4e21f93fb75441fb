package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"
)

// MetricsRecording records the duration and the outcome of every request
// that completed normally. Failed requests and requests whose client went
// away are not recorded.
// The arrival time must have been set by RequestTimer.
func MetricsRecording(clk clock.Clock, instruments *Instruments) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if clientGone(c) || failed(c) {
			return
		}
		logger := klog.FromContext(c.Request.Context())
		start, found := startTime(c)
		if !found {
			logger.V(4).Info("Request has no arrival time, not recording metrics")
			return
		}
		elapsed := clk.Since(start).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}

		method := c.Request.Method
		route := RouteLabel(c.Request)
		code := strconv.Itoa(c.Writer.Status())
		if err := instruments.RequestDuration.Observe(float64(elapsed), method, route, code); err != nil {
			logger.Error(err, "Cannot observe request duration")
		}
		if err := instruments.Requests.Inc(method, route, code); err != nil {
			logger.Error(err, "Cannot count request")
		}
	}
}

// ErrorCounting turns handler faults into a generic JSON error response
// with status 500 and counts them by method and route.
// A fault is a panic or an error attached to the gin context by a handler
// that did not write a response. Faults of requests whose client went away
// are not counted. If a handler panics after the response was started, the
// fault is counted but no error response is sent.
func ErrorCounting(instruments *Instruments) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					// the server aborts the response on purpose
					panic(rec)
				}
				fault := faultFromPanic(rec)
				if clientGone(c) {
					klog.FromContext(c.Request.Context()).V(3).Info("Handler failed after client went away", "fault", fault.Error())
					c.Abort()
					return
				}
				fail(c, instruments, fault)
			}
		}()

		c.Next()

		if !clientGone(c) && failed(c) {
			fail(c, instruments, c.Errors.Last().Err)
		}
	}
}

func fail(c *gin.Context, instruments *Instruments, fault error) {
	method := c.Request.Method
	route := RouteLabel(c.Request)
	logger := klog.FromContext(c.Request.Context())
	logger.Error(fault, "Request failed")

	if err := instruments.Errors.Inc(method, route); err != nil {
		logger.Error(err, "Cannot count request error")
	}
	if c.Writer.Written() {
		// status and parts of the body are sent already
		logger.Info("Cannot send error response, response already started", "status", c.Writer.Status())
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fault.Error()})
}

func faultFromPanic(rec interface{}) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return errors.Errorf("%v", rec)
}

// failed returns true if a handler attached an error without writing a
// response.
func failed(c *gin.Context) bool {
	return len(c.Errors) > 0 && !c.Writer.Written()
}

func clientGone(c *gin.Context) bool {
	return errors.Is(c.Request.Context().Err(), context.Canceled)
}
