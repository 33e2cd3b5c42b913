package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Signal metrics
	SignalCandidates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "examwatch_signal_candidates_total",
			Help: "Raw candidate signals offered to the debounce gate",
		},
		[]string{"category"},
	)

	SignalsDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "examwatch_signals_discarded_total",
			Help: "Candidate signals discarded before reaching the ledger",
		},
		[]string{"category", "reason"},
	)

	// Ledger metrics
	ViolationsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "examwatch_violations_recorded_total",
			Help: "Confirmed violations committed to the ledger",
		},
		[]string{"category"},
	)

	// Escalation metrics
	WarningsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "examwatch_warnings_issued_total",
			Help: "Warning consequences delivered",
		},
	)

	SessionsTerminated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "examwatch_sessions_terminated_total",
			Help: "Terminate consequences delivered",
		},
	)

	// Session metrics
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "examwatch_active_sessions",
			Help: "Number of sessions currently monitoring",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SignalCandidates,
		SignalsDiscarded,
		ViolationsRecorded,
		WarningsIssued,
		SessionsTerminated,
		ActiveSessions,
	)
}

// Server is the metrics HTTP server.
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server.
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
