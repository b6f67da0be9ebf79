package cmd

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/APanico12/MCMC/mcmc/sampler/metrics"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	metricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

// metricsServer serves the sampler counters of a single run.
type metricsServer struct {
	metrics  *metrics.Metrics
	registry *prom.Registry
	server   *http.Server
	lis      net.Listener
	logger   *zap.Logger
}

// startMetrics starts serving sampler counters on the given address. It returns a nil
// *metricsServer when the address is empty.
func startMetrics(addr string, logger *zap.Logger) (*metricsServer, error) {
	if addr == "" {
		return nil, nil
	}
	ms := &metricsServer{
		metrics:  metrics.New(),
		registry: prom.NewRegistry(),
		logger:   logger,
	}
	if err := ms.metrics.Register(ms.registry); err != nil {
		return nil, err
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "listening for metrics")
	}
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{}))
	ms.lis = lis
	ms.server = &http.Server{Handler: mux, ReadHeaderTimeout: shutdownTimeout}
	go func() {
		if err := ms.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("address", lis.Addr().String()))
	return ms, nil
}

// Recorder returns the sampler recorder of the server, or a no-op one if ms is nil.
func (ms *metricsServer) Recorder() metrics.Recorder {
	if ms == nil {
		return metrics.NewNop()
	}
	return ms.metrics
}

// Addr returns the address the server listens on.
func (ms *metricsServer) Addr() string {
	return ms.lis.Addr().String()
}

// Stop gracefully shuts the server down. It is a no-op if ms is nil.
func (ms *metricsServer) Stop() {
	if ms == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ms.server.Shutdown(ctx); err != nil {
		ms.logger.Error("error shutting down metrics server", zap.Error(err))
	}
	ms.metrics.Unregister(ms.registry)
}
