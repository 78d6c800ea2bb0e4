package command

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStats(t *testing.T) {
	db := testEnv(t)

	mustRun(t, "--db", db, "set", "a", "1")
	mustRun(t, "--db", db, "set", "b", "2")

	out := mustRun(t, "--db", db, "stats")
	for _, want := range []string{"FIELD", "keys", "METRIC", "nbdb_replayed_records_total", "nbdb_snapshot_bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "--db", db, "-o", "json", "stats")
	var report struct {
		Store struct {
			Keys     int   `json:"keys"`
			Replayed int   `json:"replayed"`
			LogBytes int64 `json:"log_bytes"`
		} `json:"store"`
		Metrics []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("stats json: %v\n%s", err, out)
	}
	if report.Store.Keys != 2 || report.Store.Replayed != 2 || report.Store.LogBytes == 0 {
		t.Errorf("store stats = %+v", report.Store)
	}

	var replayed float64 = -1
	for _, m := range report.Metrics {
		if m.Name == "nbdb_replayed_records_total" {
			replayed = m.Value
		}
	}
	if replayed != 2 {
		t.Errorf("nbdb_replayed_records_total = %v, want 2", replayed)
	}
}

func TestVersion(t *testing.T) {
	testEnv(t)

	out := mustRun(t, "-o", "json", "version")
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version json: %v\n%s", err, out)
	}
	if info["version"] == "" || info["go_version"] == "" {
		t.Errorf("version info = %v", info)
	}
}
