/*
Package middleware instruments HTTP requests served by gin.

Each request passes the handlers returned by Chain in this order:

 1. RequestLogger attaches a contextual logger.
 2. RequestTimer stamps the arrival time.
 3. ResourceSampling samples CPU and memory usage into gauges.
 4. ErrorCounting recovers handler faults, counts them and answers with
    status 500.
 5. MetricsRecording observes the duration and counts the request once
    the route handler completed normally.

Requests aborted by the client are neither recorded nor counted as errors.
*/
package middleware
