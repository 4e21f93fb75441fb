package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mernshop/shop-backend/pkg/api"
	"github.com/mernshop/shop-backend/pkg/config"
	"github.com/mernshop/shop-backend/pkg/metrics"
	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"
)

const (
	// MetricsPath is the path of the metrics snapshot endpoint.
	MetricsPath = "/metrics"

	// APIPath is the path prefix of the shop REST routes.
	APIPath = "/api/v1"

	// DevelopmentGreeting is the response to GET / in development mode.
	DevelopmentGreeting = "Server is Running! 🚀"
)

// Server is the shop HTTP server.
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
}

// New creates a server with the given instrumentation handlers installed
// in front of all routes.
func New(cfg *config.Config, registry *metrics.Registry, store *api.Store, instrumentation ...gin.HandlerFunc) *Server {
	engine := gin.New()
	engine.Use(instrumentation...)

	engine.GET(MetricsPath, gin.WrapH(metrics.Handler(registry)))
	api.Register(engine.Group(APIPath), store)

	if cfg.Mode == config.ModeProduction {
		engine.NoRoute(staticFiles(cfg.StaticDir))
	} else {
		engine.GET("/", func(c *gin.Context) {
			c.String(http.StatusOK, DevelopmentGreeting)
		})
	}

	return &Server{
		config: cfg,
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// staticFiles serves files of the frontend build. Paths not matching a
// file are answered with the index page so that client side routing works.
func staticFiles(dir string) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, APIPath+"/") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
			return
		}
		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(index)
	}
}

// Collector is a background job running until its context is done.
type Collector interface {
	Run(ctx context.Context)
}

// Run serves HTTP requests until ctx is cancelled and then shuts the server
// down gracefully. In-flight requests get the configured shutdown timeout
// to complete.
// The returned error is nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.serve(ctx, listener)
}

// RunWithCollector runs the given collector and serves HTTP requests until
// ctx is cancelled. At shutdown the collector is stopped and awaited first.
// Only then the server stops accepting connections and drains in-flight
// requests.
func (s *Server) RunWithCollector(ctx context.Context, collector Collector) error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.serveWithCollector(ctx, listener, collector)
}

func (s *Server) listen() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP server failed")
	}
	return listener, nil
}

func (s *Server) serveWithCollector(ctx context.Context, listener net.Listener, collector Collector) error {
	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		collector.Run(collectorCtx)
	}()

	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()
	go func() {
		select {
		case <-ctx.Done():
		case <-serverCtx.Done():
			return
		}
		klog.InfoS("Stopping collector")
		stopCollector()
		<-collectorDone
		stopServer()
	}()

	err := s.serve(serverCtx, listener)
	stopCollector()
	<-collectorDone
	return err
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		klog.InfoS("Starting HTTP server", "addr", listener.Addr().String(), "mode", s.config.Mode)
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "HTTP server failed")
	case <-ctx.Done():
	}

	klog.InfoS("Shutting down HTTP server", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown failed")
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "HTTP server failed")
	}
	klog.InfoS("HTTP server stopped")
	return nil
}
