package benchmark

import (
	"bytes"
	"testing"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/backup"
)

type objectSource struct{ obj *domain.Object }

func (s objectSource) Snapshot() *domain.Object { return s.obj }
func (s objectSource) Path() string             { return "bench.json" }

// BenchmarkBackupCreate compares archive compressions on the same data.
func BenchmarkBackupCreate(b *testing.B) {
	src := objectSource{obj: prefillObject(5000)}

	for _, c := range backup.Compressions {
		b.Run(string(c), func(b *testing.B) {
			var buf bytes.Buffer
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buf.Reset()
				hdr, err := backup.Create(&buf, src, backup.Options{Compression: c})
				if err != nil {
					b.Fatalf("Create failed: %v", err)
				}
				b.ReportMetric(float64(buf.Len())/float64(hdr.PlainSize), "ratio")
			}
		})
	}
}

// BenchmarkBackupRestoreEncrypted benchmarks key derivation plus decryption.
func BenchmarkBackupRestoreEncrypted(b *testing.B) {
	var buf bytes.Buffer
	passphrase := []byte("bench passphrase")
	if _, err := backup.Create(&buf, objectSource{obj: prefillObject(1000)}, backup.Options{
		Compression: backup.CompressionZstd,
		Passphrase:  passphrase,
	}); err != nil {
		b.Fatalf("Create failed: %v", err)
	}
	archive := buf.Bytes()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		obj, _, err := backup.Restore(bytes.NewReader(archive), passphrase)
		if err != nil {
			b.Fatalf("Restore failed: %v", err)
		}
		if obj.Len() != 1000 {
			b.Fatalf("Expected 1000 keys, got %d", obj.Len())
		}
	}
}
