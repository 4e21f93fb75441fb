package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/mernshop/shop-backend/pkg/sampler"
	klog "k8s.io/klog/v2"
)

// ResourceSampling samples the resource usage of the process once per
// request and overwrites the resource gauges.
func ResourceSampling(s sampler.Sampler, instruments *Instruments) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := klog.FromContext(c.Request.Context())
		if err := instruments.CPUUsage.Set(s.CPUPercent()); err != nil {
			logger.Error(err, "Cannot update CPU usage gauge")
		}
		if err := instruments.MemoryUsage.Set(float64(s.MemoryBytes())); err != nil {
			logger.Error(err, "Cannot update memory usage gauge")
		}
	}
}
