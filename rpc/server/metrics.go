package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
)

var (
	dispatchDuration = metrics.NewHistogram(`mqrpc_server_dispatch_duration_seconds`)
)

// observeDispatch records the outcome of a dispatched message
func observeDispatch(start time.Time, resp *common.Response, decision transport.AckDecision) {
	dispatchDuration.Update(time.Since(start).Seconds())
	metrics.GetOrCreateCounter(fmt.Sprintf(`mqrpc_server_messages_total{status=%q,ack=%q}`, resp.Status, decision)).Inc()
}

// --------------------------------------------------------------------------
// Metrics endpoint
// --------------------------------------------------------------------------

// metricsServer exposes the prometheus metrics over http
type metricsServer struct {
	srv      *http.Server
	listener net.Listener
}

// startMetricsServer listens on addr and serves GET /metrics in the background
func startMetricsServer(addr string) (*metricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", loggerMiddleware(func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	}))

	m := &metricsServer{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: listener,
	}

	go func() {
		if err := m.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("Metrics endpoint failed: %v", err)
		}
	}()

	Logger.Infof("Serving metrics on http://%s/metrics", listener.Addr())
	return m, nil
}

// Addr returns the address the endpoint listens on
func (m *metricsServer) Addr() string {
	return m.listener.Addr().String()
}

// Close stops the endpoint
func (m *metricsServer) Close() error {
	return m.srv.Close()
}

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware logs the http requests of the metrics endpoint
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
