// Package benchmark measures the note table, the snapshot codec and the
// stable media at growing table sizes.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Restart cost only:
//
//	go test -bench='Snapshot|Restart' -benchmem -benchtime=5s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
