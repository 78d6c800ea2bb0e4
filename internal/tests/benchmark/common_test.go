package benchmark

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 50000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{100, 1000, 10000}

// newKey generates a unique, time ordered key.
func newKey() string {
	id, _ := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return "user:" + id.String()
}

// sampleValue returns a small nested document, the typical stored value.
func sampleValue(i int) domain.Value {
	profile := domain.NewObject()
	profile.Set("name", domain.String(fmt.Sprintf("user %d", i)))
	profile.Set("age", domain.Int(int64(20+i%50)))
	profile.Set("score", domain.Float(float64(i)/3))
	profile.Set("active", domain.Bool(i%2 == 0))
	profile.Set("tags", domain.List(domain.String("a"), domain.String("b")))
	return domain.ObjectValue(profile)
}

// prefillObject builds a mapping of count keys.
func prefillObject(count int) *domain.Object {
	obj := domain.NewObject()
	for i := 0; i < count; i++ {
		obj.Set(fmt.Sprintf("key-%07d", i), sampleValue(i))
	}
	return obj
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
