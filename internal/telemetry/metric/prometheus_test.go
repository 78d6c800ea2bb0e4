package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	path string
	keys int
	size int64
	err  error
}

func (f fakeSource) Path() string           { return f.path }
func (f fakeSource) Len() int                { return f.keys }
func (f fakeSource) LogSize() (int64, error) { return f.size, f.err }

func TestNewRegistry_Unregistered(t *testing.T) {
	r, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r.Sets.WithLabelValues(OpSet).Inc()
	if got := testutil.ToFloat64(r.Sets.WithLabelValues(OpSet)); got != 1 {
		t.Fatalf("sets = %v, want 1", got)
	}
	owned, err := r.Register(NewCollector(fakeSource{}))
	if err != nil || owned {
		t.Fatalf("Register without registerer = %v, %v, want false, nil", owned, err)
	}
}

func TestNewRegistry_RegistersAndReusesExisting(t *testing.T) {
	reg := prometheus.NewRegistry()

	r1, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("NewRegistry 1: %v", err)
	}
	r2, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("NewRegistry 2: %v", err)
	}

	r1.Writes.WithLabelValues(ResultOK, TriggerManual).Inc()
	r2.Writes.WithLabelValues(ResultOK, TriggerManual).Inc()

	if got := testutil.ToFloat64(r1.Writes.WithLabelValues(ResultOK, TriggerManual)); got != 2 {
		t.Fatalf("writes = %v, want 2 (shared collector)", got)
	}

	r1.WriteDuration.Observe(0.01)
	n, err := testutil.GatherAndCount(reg, "nbdb_write_duration_seconds")
	if err != nil || n != 1 {
		t.Fatalf("histogram series = %d, %v, want 1", n, err)
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector(fakeSource{path: "db.json", keys: 3, size: 128})

	want := `
# HELP nbdb_keys Keys currently held in memory.
# TYPE nbdb_keys gauge
nbdb_keys{path="db.json"} 3
# HELP nbdb_log_bytes Size of the pending mutation log.
# TYPE nbdb_log_bytes gauge
nbdb_log_bytes{path="db.json"} 128
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Fatalf("CollectAndCompare: %v", err)
	}
}

func TestRegistry_RegisterOwnership(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	a := NewCollector(fakeSource{path: "a.json", keys: 1})
	b := NewCollector(fakeSource{path: "b.json", keys: 2})
	dup := NewCollector(fakeSource{path: "a.json", keys: 9})

	for _, tt := range []struct {
		name string
		c    *Collector
		want bool
	}{
		{"first", a, true},
		{"other path", b, true},
		{"same path", dup, false},
	} {
		owned, err := r.Register(tt.c)
		if err != nil || owned != tt.want {
			t.Fatalf("Register(%s) = %v, %v, want %v, nil", tt.name, owned, err, tt.want)
		}
	}

	r.Unregister(b)
	samples, err := Gather(reg, "nbdb_keys")
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(samples) != 1 || samples[0].Labels["path"] != "a.json" || samples[0].Value != 1 {
		t.Fatalf("nbdb_keys after unregistering b = %+v, want only a.json", samples)
	}
}

func TestCollector_LogSizeError(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(fakeSource{keys: 1, err: errors.New("stat failed")}))

	if _, err := reg.Gather(); err == nil {
		t.Fatalf("Gather should report the invalid metric")
	}
}

func TestGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r.Sets.WithLabelValues(OpDelete).Add(2)
	r.WriteDuration.Observe(0.5)
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "x"}))

	samples, err := Gather(reg, "nbdb_")
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	byName := map[string]Sample{}
	for _, s := range samples {
		if strings.HasPrefix(s.Name, "other") {
			t.Fatalf("prefix filter leaked %s", s.Name)
		}
		byName[s.Name+"{"+s.LabelString()+"}"] = s
	}
	if s, ok := byName["nbdb_sets_total{op=delete}"]; !ok || s.Value != 2 {
		t.Fatalf("sets sample = %+v, %v", s, ok)
	}
	if s, ok := byName["nbdb_write_duration_seconds_count{}"]; !ok || s.Value != 1 {
		t.Fatalf("histogram count sample = %+v, %v", s, ok)
	}
	if s := byName["nbdb_write_duration_seconds_sum{}"]; s.Value != 0.5 {
		t.Fatalf("histogram sum = %v, want 0.5", s.Value)
	}
}

func TestHandler(t *testing.T) {
	reg := NewProcessRegistry()
	r, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r.ReplayedRecords.Add(4)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "nbdb_replayed_records_total 4") {
		t.Fatalf("body missing replayed counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("body missing go collector output")
	}
}
