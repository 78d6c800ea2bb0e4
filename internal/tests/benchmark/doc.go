// Package benchmark provides performance benchmarks for nonbloat-db.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run only the recovery path:
//
//	go test -bench=Replay -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark
