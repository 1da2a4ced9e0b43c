package mainboilerplate

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Addr string `long:"addr" env:"ADDR" description:"Address serving prometheus metrics at /metrics; disabled when empty"`
	Path string `long:"path" env:"PATH" default:"/metrics" description:"HTTP path of the metrics endpoint"`
}

// ListenMetrics binds the configured metrics address, so that a bad address
// fails at startup. It returns a nil Listener when no address is configured.
func ListenMetrics(cfg MetricsConfig) (net.Listener, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	return net.Listen("tcp", cfg.Addr)
}

// ServeMetrics serves the collectors of |gatherer| on |ln| until |ctx| is
// done. It returns immediately when |ln| is nil.
func ServeMetrics(ctx context.Context, ln net.Listener, cfg MetricsConfig, gatherer prometheus.Gatherer) error {
	if ln == nil {
		return nil
	}
	var mux = http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	var srv = &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.WithFields(log.Fields{"addr": ln.Addr().String(), "path": cfg.Path}).Info("serving metrics")
	if err := srv.Serve(ln); err != http.ErrServerClosed {
		return err
	}
	return nil
}
