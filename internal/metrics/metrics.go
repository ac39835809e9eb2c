// Package metrics exposes Prometheus collectors for a benchmark run.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "audiobench"

// File outcome labels for FilesTotal.
const (
	ResultReported = "reported"
	ResultFailed   = "failed"
)

// Metrics holds the run's collectors on a dedicated registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	filesTotal     *prometheus.CounterVec
	encodeDuration *prometheus.HistogramVec
	outputBytes    *prometheus.CounterVec
	savings        prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		filesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Input files processed, by result",
		}, []string{"result"}),
		encodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Wall time of each ffmpeg encode, by rate-control policy",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms up to ~100s
		}, []string{"policy"}),
		outputBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written by encodes, by rate-control policy",
		}, []string{"policy"}),
		savings: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "savings_percent",
			Help:      "Per-file size reduction of VBR relative to CBR",
			Buckets:   prometheus.LinearBuckets(-50, 10, 16),
		}),
	}
	m.Registry.MustRegister(
		m.filesTotal, m.encodeDuration, m.outputBytes, m.savings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveEncode records one finished encode.
func (m *Metrics) ObserveEncode(policy string, d time.Duration, size int64) {
	if m == nil {
		return
	}
	m.encodeDuration.WithLabelValues(policy).Observe(d.Seconds())
	m.outputBytes.WithLabelValues(policy).Add(float64(size))
}

// IncReported counts a file that produced a report record.
func (m *Metrics) IncReported(savingsPercent float64) {
	if m == nil {
		return
	}
	m.filesTotal.WithLabelValues(ResultReported).Inc()
	m.savings.Observe(savingsPercent)
}

// IncFailed counts a file that was skipped after an error.
func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.filesTotal.WithLabelValues(ResultFailed).Inc()
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Server serves /metrics until Shutdown.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan error
	stop chan struct{}
	once sync.Once
}

// Serve starts an HTTP server for /metrics on addr. It returns once the
// listener is bound; the server stops when ctx is done or Shutdown is called.
func (m *Metrics) Serve(ctx context.Context, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	s := &Server{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		done: make(chan error, 1),
		stop: make(chan struct{}),
	}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	go func() {
		select {
		case <-ctx.Done():
			s.srv.Close()
		case <-s.stop:
		}
	}()
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Shutdown stops the server, waiting for in-flight scrapes up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	err := s.srv.Shutdown(ctx)
	if serveErr := <-s.done; serveErr != nil && err == nil {
		err = serveErr
	}
	return err
}
