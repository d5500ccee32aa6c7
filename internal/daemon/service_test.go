package daemon

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
)

const ledger = `{"id":"1","type":"income","amount":350000,"category":"Salary","date":"2024-01-25","isRecurring":true}
{"id":"2","type":"expense","amount":120000,"category":"Housing","date":"2024-01-01","isRecurring":true}
{"id":"3","type":"expense","amount":75000,"category":"Food","date":"2024-01-15"}
`

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "checking"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "checking", "2024.jsonl"), []byte(ledger), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	params := forecast.DefaultParams()
	params.AsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	s := New(Config{
		LedgerDir:       dir,
		Params:          params,
		ScenarioPercent: 10,
		Logger:          logger,
	})
	s.Refresh()

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func getJSON(t *testing.T, url string, wantCode int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantCode {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s = %d, want %d: %s", url, resp.StatusCode, wantCode, body)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{LedgerDir: "."})
	if s.cfg.Addr != "127.0.0.1:8787" {
		t.Errorf("Addr = %q", s.cfg.Addr)
	}
	if s.cfg.RefreshSchedule != "*/15 * * * *" {
		t.Errorf("RefreshSchedule = %q", s.cfg.RefreshSchedule)
	}
	if s.cfg.Horizons != forecast.DefaultHorizons() {
		t.Errorf("Horizons = %+v", s.cfg.Horizons)
	}
	if s.cfg.ScenarioKind != model.ExpenseReduction || s.cfg.ScenarioMonths != 12 {
		t.Errorf("scenario defaults = %s/%d", s.cfg.ScenarioKind, s.cfg.ScenarioMonths)
	}
}

func TestHealthAndStatus(t *testing.T) {
	_, srv := newTestService(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}

	var st Status
	getJSON(t, srv.URL+"/v1/status", http.StatusOK, &st)
	if st.Transactions != 3 || st.Months != 1 || st.Files != 1 {
		t.Errorf("status = %+v", st)
	}
	if st.RefreshCount != 1 || st.LastError != "" {
		t.Errorf("refresh = %d, last error %q", st.RefreshCount, st.LastError)
	}
}

func TestForecastEndpoint(t *testing.T) {
	_, srv := newTestService(t)

	var got forecastResponse
	getJSON(t, srv.URL+"/v1/forecast?short=1&medium=1&long=1", http.StatusOK, &got)
	if len(got.Predictions) != 3 {
		t.Fatalf("predictions = %d, want 3", len(got.Predictions))
	}
	if got.Averages.Savings != 155000 {
		t.Errorf("avg savings = %f, want 155000", got.Averages.Savings)
	}
	for _, p := range got.Predictions {
		if p.Months != 1 {
			t.Errorf("%s months = %d, want 1", p.Period, p.Months)
		}
		if p.PredictedAmount < 0 {
			t.Errorf("%s amount = %f, want >= 0", p.Period, p.PredictedAmount)
		}
	}

	getJSON(t, srv.URL+"/v1/forecast?short=zero", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/v1/forecast?long=-3", http.StatusBadRequest, nil)
}

func TestPredictEndpoint(t *testing.T) {
	_, srv := newTestService(t)

	var res model.PredictionResult
	getJSON(t, srv.URL+"/v1/predict/short?months=12", http.StatusOK, &res)
	if res.Period != model.Short || res.Months != 12 {
		t.Errorf("result = %+v", res)
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		t.Errorf("confidence = %f", res.Confidence)
	}

	var errBody map[string]string
	getJSON(t, srv.URL+"/v1/predict/forever", http.StatusBadRequest, &errBody)
	if errBody["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestScenarioEndpoint(t *testing.T) {
	_, srv := newTestService(t)

	var res model.ScenarioResult
	getJSON(t, srv.URL+"/v1/scenario?kind=expense_reduction&percent=10&months=12", http.StatusOK, &res)
	if res.Improvement != 19500*12 {
		t.Errorf("improvement = %f, want %d", res.Improvement, 19500*12)
	}
	if res.Scenario != model.ExpenseReduction || res.Percentage != 10 {
		t.Errorf("result = %+v", res)
	}

	getJSON(t, srv.URL+"/v1/scenario?kind=lottery", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/v1/scenario?percent=150", http.StatusBadRequest, nil)
}

func TestMonthsSeasonalityCategories(t *testing.T) {
	_, srv := newTestService(t)

	var months []model.MonthlyAggregate
	getJSON(t, srv.URL+"/v1/months", http.StatusOK, &months)
	if len(months) != 1 || months[0].NetSavings != 155000 {
		t.Errorf("months = %+v", months)
	}

	var season []seasonalityEntry
	getJSON(t, srv.URL+"/v1/seasonality", http.StatusOK, &season)
	if len(season) != 12 || season[0].Month != "January" {
		t.Errorf("seasonality = %+v", season)
	}

	var cats []model.CategoryStats
	getJSON(t, srv.URL+"/v1/categories", http.StatusOK, &cats)
	if len(cats) != 3 || cats[0].Category != "Salary" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestRefreshKeepsDataOnError(t *testing.T) {
	s, _ := newTestService(t)
	// A path below a regular file cannot be scanned.
	blocker := filepath.Join(t.TempDir(), "ledger.txt")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s.cfg.LedgerDir = filepath.Join(blocker, "accounts")
	s.Refresh()

	st := s.snapshotStatus()
	if st.LastError == "" {
		t.Error("expected LastError after failed refresh")
	}
	if st.Transactions != 3 {
		t.Errorf("transactions = %d, want previous 3 kept", st.Transactions)
	}
	if st.RefreshCount != 2 {
		t.Errorf("RefreshCount = %d, want 2", st.RefreshCount)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, srv := newTestService(t)
	resp, err := http.Post(srv.URL+"/v1/forecast", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST = %d, want 405", resp.StatusCode)
	}
}

func TestMonthsBounded(t *testing.T) {
	_, srv := newTestService(t)

	tests := []struct {
		path string
		code int
	}{
		{"/v1/predict/long?months=600", http.StatusOK},
		{"/v1/predict/long?months=601", http.StatusBadRequest},
		{"/v1/predict/medium?months=2000000000", http.StatusBadRequest},
		{"/v1/forecast?long=300000000", http.StatusBadRequest},
		{"/v1/scenario?months=99999", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			getJSON(t, srv.URL+tt.path, tt.code, nil)
		})
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"amount": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Errorf("body = %q, err = %v", rec.Body.String(), err)
	}
}
