// Package daemon provides the long-running forecast service and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"
	"github.com/theirongolddev/savecast/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	LedgerDir       string
	Filters         pipeline.FilterOptions
	UseCache        bool
	RefreshSchedule string
	Addr            string

	Params   forecast.Params
	Horizons forecast.Horizons

	ScenarioKind    model.ScenarioKind
	ScenarioPercent float64
	ScenarioMonths  int

	Logger *logrus.Logger
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRefreshAt   time.Time `json:"last_refresh_at"`
	RefreshCount    int64     `json:"refresh_count"`
	RefreshSchedule string    `json:"refresh_schedule"`
	LedgerDir       string    `json:"ledger_dir"`
	CategoryFilter  string    `json:"category_filter,omitempty"`
	Transactions    int       `json:"transactions"`
	Months          int       `json:"months"`
	Files           int       `json:"files"`
	ParseErrors     int       `json:"parse_errors"`
	LastError       string    `json:"last_error,omitempty"`
}

type forecastResponse struct {
	Averages    model.Averages           `json:"averages"`
	SpanMonths  int                      `json:"span_months"`
	Predictions []model.PredictionResult `json:"predictions"`
}

type seasonalityEntry struct {
	Month    string  `json:"month"`
	Strength float64 `json:"strength"`
}

// Service provides the daemon runtime and HTTP API. It holds only the
// loaded transactions; every response is recomputed from them.
type Service struct {
	cfg Config
	fc  forecast.Forecaster
	log *logrus.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	txs           []model.Transaction
	files         int
	parseErrors   int
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = "*/15 * * * *"
	}
	if cfg.Horizons == (forecast.Horizons{}) {
		cfg.Horizons = forecast.DefaultHorizons()
	}
	if cfg.ScenarioKind == "" {
		cfg.ScenarioKind = model.ExpenseReduction
	}
	if cfg.ScenarioMonths < 1 {
		cfg.ScenarioMonths = 12
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Service{
		cfg:       cfg,
		fc:        forecast.New(cfg.Params),
		log:       cfg.Logger,
		startedAt: time.Now(),
	}
}

// Handler returns the HTTP routes served by the daemon.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/v1/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/v1/forecast", s.handleForecast).Methods("GET")
	r.HandleFunc("/v1/predict/{period}", s.handlePredict).Methods("GET")
	r.HandleFunc("/v1/scenario", s.handleScenario).Methods("GET")
	r.HandleFunc("/v1/months", s.handleMonths).Methods("GET")
	r.HandleFunc("/v1/seasonality", s.handleSeasonality).Methods("GET")
	r.HandleFunc("/v1/categories", s.handleCategories).Methods("GET")
	return r
}

// Run serves HTTP and refreshes the ledger on the configured cron schedule
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.RefreshSchedule, s.Refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed the ledger so the first request has data.
	s.Refresh()
	c.Start()
	s.log.Infof("savecast daemon listening on %s (refresh %q)", s.cfg.Addr, s.cfg.RefreshSchedule)

	select {
	case <-ctx.Done():
		<-c.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		<-c.Stop().Done()
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Refresh reloads the ledger. On failure the previous transactions are
// kept and the error is reported through /v1/status.
func (s *Service) Refresh() {
	start := time.Now()
	txs, files, parseErrors, err := s.load()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRefreshAt = time.Now()
		s.refreshCount++
		s.mu.Unlock()
		s.log.WithError(err).Error("ledger refresh failed")
		return
	}

	txs = pipeline.ApplyFilters(txs, s.cfg.Filters)

	s.mu.Lock()
	s.txs = txs
	s.files = files
	s.parseErrors = parseErrors
	s.lastRefreshAt = time.Now()
	s.refreshCount++
	s.lastError = ""
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"transactions": len(txs),
		"files":        files,
		"parse_errors": parseErrors,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	}).Info("ledger refreshed")
}

func (s *Service) load() ([]model.Transaction, int, int, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.LedgerDir, cache, nil)
			if loadErr == nil {
				return cr.Transactions, cr.TotalFiles, cr.ParseErrors, nil
			}
			s.log.WithError(loadErr).Warn("cached load failed, falling back to full parse")
		} else {
			s.log.WithError(err).Warn("opening cache failed, falling back to full parse")
		}
	}

	result, err := pipeline.Load(s.cfg.LedgerDir, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	return result.Transactions, result.TotalFiles, result.ParseErrors, nil
}

func (s *Service) transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRefreshAt:   s.lastRefreshAt,
		RefreshCount:    s.refreshCount,
		RefreshSchedule: s.cfg.RefreshSchedule,
		LedgerDir:       s.cfg.LedgerDir,
		CategoryFilter:  s.cfg.Filters.Category,
		Transactions:    len(s.txs),
		Months:          len(pipeline.AggregateMonths(s.txs)),
		Files:           s.files,
		ParseErrors:     s.parseErrors,
		LastError:       s.lastError,
	}
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Debug("request")
	})
}

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// monthsParam reads a horizon length from the query, falling back to def
// when absent. Values outside 1..config.MaxHorizonMonths are rejected.
func monthsParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > config.MaxHorizonMonths {
		return 0, fmt.Errorf("invalid %s %q: must be an integer between 1 and %d", name, raw, config.MaxHorizonMonths)
	}
	return n, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	h := s.cfg.Horizons
	var err error
	if h.Short, err = monthsParam(r, "short", h.Short); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if h.Medium, err = monthsParam(r, "medium", h.Medium); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if h.Long, err = monthsParam(r, "long", h.Long); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	txs := s.transactions()
	writeJSON(w, http.StatusOK, forecastResponse{
		Averages:    pipeline.MonthlyAverages(txs),
		SpanMonths:  pipeline.DataTimeSpan(txs),
		Predictions: s.fc.Forecast(txs, h),
	})
}

func (s *Service) handlePredict(w http.ResponseWriter, r *http.Request) {
	period, ok := model.ParsePeriod(mux.Vars(r)["period"])
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown period %q: must be one of %v", mux.Vars(r)["period"], model.Periods)
		return
	}

	def := s.cfg.Horizons.Short
	switch period {
	case model.Medium:
		def = s.cfg.Horizons.Medium
	case model.Long:
		def = s.cfg.Horizons.Long
	}
	months, err := monthsParam(r, "months", def)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	res, err := s.fc.Predict(s.transactions(), period, months)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleScenario(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	kind := s.cfg.ScenarioKind
	if raw := q.Get("kind"); raw != "" {
		k, ok := model.ParseScenarioKind(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown scenario kind %q", raw)
			return
		}
		kind = k
	}

	percent := s.cfg.ScenarioPercent
	if raw := q.Get("percent"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 || p > 100 {
			writeError(w, http.StatusBadRequest, "invalid percent %q: must be between 0 and 100", raw)
			return
		}
		percent = p
	}

	months, err := monthsParam(r, "months", s.cfg.ScenarioMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, s.fc.Scenario(s.transactions(), kind, percent, months))
}

func (s *Service) handleMonths(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.AggregateMonths(s.transactions()))
}

func (s *Service) handleSeasonality(w http.ResponseWriter, _ *http.Request) {
	strength := s.fc.Seasonality(s.transactions())
	out := make([]seasonalityEntry, 0, len(strength))
	for i, v := range strength {
		out = append(out, seasonalityEntry{
			Month:    time.Month(i + 1).String(),
			Strength: v,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleCategories(w http.ResponseWriter, _ *http.Request) {
	cats := pipeline.AggregateCategories(s.transactions())
	if cats == nil {
		cats = []model.CategoryStats{}
	}
	writeJSON(w, http.StatusOK, cats)
}
