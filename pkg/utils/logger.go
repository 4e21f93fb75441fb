package utils

import (
	"context"

	"github.com/go-logr/logr"
	"k8s.io/klog/v2"
)

// NewLoggingContextWithValues returns a new Context carrying a logger
// extended by the given name and key-value pairs.
//
// If logger is nil, the logger of ctx is extended. A nil ctx is treated
// as context.Background().
//
// A non-empty loggerName is appended to the name of the logger, so
// "shop" extended by "http" becomes "shop/http".
//
// kvs are key-value pairs for structured logging, for example
// "method", "GET", "route", "/api/v1/products". The key-value pairs
// already attached to the logger are preserved.
func NewLoggingContextWithValues(ctx context.Context, logger *logr.Logger, loggerName string, kvs ...interface{}) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if logger == nil {
		l := klog.FromContext(ctx)
		logger = &l
	}

	if loggerName != "" {
		*logger = klog.LoggerWithName(*logger, loggerName)
	}

	if kvs != nil {
		*logger = klog.LoggerWithValues(*logger, kvs...)
	}

	return klog.NewContext(ctx, *logger)
}
