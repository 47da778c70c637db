package optimizer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sessionplanner/core/logger"
	"github.com/kilianp07/sessionplanner/core/model"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture is the canned data served by Stub.
type Fixture struct {
	Cities   []string              `yaml:"cities"`
	Schedule []model.ScheduleEntry `yaml:"schedule"`
}

// LoadFixture reads a YAML fixture. An empty path loads the built-in one.
func LoadFixture(path string) (Fixture, error) {
	data := defaultFixture
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Fixture{}, err
		}
		data = b
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

// StubConfig configures the development optimizer.
type StubConfig struct {
	Address     string `json:"address" koanf:"address"`
	FixturePath string `json:"fixture_path" koanf:"fixture_path"`
	// FailStatus makes /optimize-schedule answer with this status when set.
	FailStatus int `json:"fail_status" koanf:"fail_status"`
	DelayMS    int `json:"delay_ms" koanf:"delay_ms"`
}

// SetDefaults listens on the optimizer's usual port.
func (c *StubConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
}

// Stub serves fixture data on the optimizer API. It keeps the fixture
// entries whose day the clinician is available and caps them at
// max_clients_per_day per day; it does no scheduling of its own.
type Stub struct {
	cfg      StubConfig
	fixture  Fixture
	log      logger.Logger
	requests *prometheus.CounterVec

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// NewStub creates a stub registering its metrics on reg. A nil reg uses the
// default registerer.
func NewStub(cfg StubConfig, fx Fixture, log logger.Logger, reg prometheus.Registerer) *Stub {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if log == nil {
		log = logger.Nop{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_stub_requests_total",
		Help: "Requests served by the stub optimizer",
	}, []string{"endpoint", "code"})
	if err := reg.Register(requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				requests = exist
			} else {
				log.Errorf("existing collector for planner_stub_requests_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	return &Stub{cfg: cfg, fixture: fx, log: log, requests: requests}
}

// Handler returns the stub routes.
func (s *Stub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, "health", http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("GET /city-list", s.handleCities)
	mux.HandleFunc("POST /optimize-schedule", s.handleOptimize)
	return mux
}

func (s *Stub) handleCities(w http.ResponseWriter, r *http.Request) {
	cities := append([]string{}, s.fixture.Cities...)
	sort.Strings(cities)
	s.writeJSON(w, "city-list", http.StatusOK, map[string][]string{"cities": cities})
}

func (s *Stub) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if s.cfg.DelayMS > 0 {
		select {
		case <-time.After(time.Duration(s.cfg.DelayMS) * time.Millisecond):
		case <-r.Context().Done():
			return
		}
	}
	if s.cfg.FailStatus != 0 {
		s.writeJSON(w, "optimize", s.cfg.FailStatus, map[string]string{"detail": "stub configured to fail"})
		return
	}
	var req model.ClinicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, "optimize", http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	out := Select(s.fixture.Schedule, req)
	s.log.Infof("stub optimizer: %d availabilities -> %d entries", len(req.Availabilities), len(out))
	s.writeJSON(w, "optimize", http.StatusOK, out)
}

// Select keeps the entries on days listed in req, at most
// req.MaxClientsPerDay per day, in fixture order.
func Select(schedule []model.ScheduleEntry, req model.ClinicianRequest) []model.ScheduleEntry {
	days := make(map[int]bool, len(req.Availabilities))
	for _, a := range req.Availabilities {
		days[a.Day] = true
	}
	perDay := map[int]int{}
	out := []model.ScheduleEntry{}
	for _, e := range schedule {
		if !days[e.Day] {
			continue
		}
		if req.MaxClientsPerDay > 0 && perDay[e.Day] >= req.MaxClientsPerDay {
			continue
		}
		perDay[e.Day]++
		out = append(out, e)
	}
	return out
}

func (s *Stub) writeJSON(w http.ResponseWriter, endpoint string, code int, v any) {
	s.requests.WithLabelValues(endpoint, fmt.Sprint(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("write %s response: %v", endpoint, err)
	}
}

// Addr returns the listening address once Start has bound it.
func (s *Stub) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.cfg.Address
}

// Start runs the HTTP server until the context is canceled.
func (s *Stub) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Lock()
	s.ln, s.srv = ln, srv
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown stub: %v", err)
		}
		cancel()
	}()
	s.log.Infof("stub optimizer listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
