package cmd

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sessionplanner/core/session"
	"github.com/kilianp07/sessionplanner/infra/optimizer"
	"github.com/kilianp07/sessionplanner/internal/render"
)

const formYAML = `clinician_address:
  street_name: 12 Lake St
  city: Oakland
  state: CA
  zip_code: "94610"
clinician_availabilities:
  - {day_of_the_week: 1, start_time: "9:00 AM", end_time: "5:00 PM"}
  - {day_of_the_week: 3, start_time: "09:00", end_time: "17:00"}
max_clients_per_day: 4
session_duration_hours: 2
`

func setup(t *testing.T) (configPath, formPath string) {
	t.Helper()
	fx, err := optimizer.LoadFixture("")
	require.NoError(t, err)
	srv := httptest.NewServer(optimizer.NewStub(optimizer.StubConfig{}, fx, nil, prometheus.NewRegistry()).Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level: error\noptimizer:\n  base_url: "+srv.URL+"\n"), 0o644))
	formPath = filepath.Join(dir, "form.yaml")
	require.NoError(t, os.WriteFile(formPath, []byte(formYAML), 0o644))
	return configPath, formPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		for _, f := range []string{"select", "detail", "json", "form"} {
			_ = planCmd.Flags().Lookup(f).Value.Set(planCmd.Flags().Lookup(f).DefValue)
		}
		logLevel = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanText(t *testing.T) {
	cfg, form := setup(t)
	out, err := execute(t, "plan", "--config", cfg, "--form", form, "--select", "3", "--detail")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule Option 1")
	assert.Contains(t, out, "Schedule Option 3:")
	assert.Contains(t, out, "Wednesday")
	assert.Contains(t, out, "No appointments")
}

func TestPlanJSON(t *testing.T) {
	cfg, form := setup(t)
	out, err := execute(t, "plan", "--config", cfg, "--form", form, "--json", "--select", "2")
	require.NoError(t, err)
	var v session.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Len(t, v.Options, 3)
	assert.Equal(t, 1, v.Selected)
	// Monday and Wednesday fixture entries only
	assert.Len(t, v.Canonical, 4)
	assert.False(t, v.DetailOpen)
}

func TestPlanInvalidForm(t *testing.T) {
	cfg, _ := setup(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Replace(formYAML, "max_clients_per_day: 4", "max_clients_per_day: 40", 1)), 0o644))
	_, err := execute(t, "plan", "--config", cfg, "--form", bad)
	assert.ErrorContains(t, err, "max_clients_per_day")
}

func TestPlanEmptySchedule(t *testing.T) {
	cfg, _ := setup(t)
	dir := t.TempDir()
	fixture := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte("cities: [Fresno]\nschedule: []\n"), 0o644))
	fx, err := optimizer.LoadFixture(fixture)
	require.NoError(t, err)
	srv := httptest.NewServer(optimizer.NewStub(optimizer.StubConfig{}, fx, nil, prometheus.NewRegistry()).Handler())
	t.Cleanup(srv.Close)
	t.Setenv("PLANNER_OPTIMIZER__BASE_URL", srv.URL)

	form := filepath.Join(dir, "form.json")
	require.NoError(t, os.WriteFile(form, []byte(`{"clinician_address":{"street_name":"1 A St","city":"Fresno","state":"CA","zip_code":"93701"},
"clinician_availabilities":[{"day_of_the_week":"2","start_time":"09:00","end_time":"12:00"}],
"max_clients_per_day":"2","session_duration_hours":"1.5"}`), 0o644))
	out, err := execute(t, "plan", "--config", cfg, "--form", form)
	require.NoError(t, err)
	assert.Equal(t, render.NoSchedule+"\n", out)
}

func TestCities(t *testing.T) {
	cfg, _ := setup(t)
	out, err := execute(t, "cities", "--config", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Berkeley\n"), out)
}
