package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/internal/core/service"
	"github.com/yndnr/notechain-go/internal/storage/notetable"
)

// NoteCounts defines the table sizes for benchmarking.
var NoteCounts = []int{1000, 10000, 50000, 100000}

// SmallNoteCounts for quick benchmarks.
var SmallNoteCounts = []int{1000, 5000, 10000}

// ownerCount spreads notes over this many callers.
const ownerCount = 100

var noteContent = strings.Repeat("lorem ipsum dolor sit amet ", 8)

func ownerFor(i int) domain.Owner {
	return domain.Owner(fmt.Sprintf("user-%d", i%ownerCount))
}

// prefillTable creates count notes through the service, as the API would.
func prefillTable(b *testing.B, count int) (*notetable.Table, *service.NoteService) {
	b.Helper()

	ctx := context.Background()
	table := notetable.New()
	svc := service.NewNoteService(table)
	for i := 0; i < count; i++ {
		if _, err := svc.Create(ctx, ownerFor(i), fmt.Sprintf("note %d", i), noteContent); err != nil {
			b.Fatalf("Create: %v", err)
		}
	}
	return table, svc
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithNoteCounts runs a benchmark function with various table sizes.
func runWithNoteCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("notes_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

func sizeLabel(size int) string {
	if size >= 1024 {
		return fmt.Sprintf("%dKB", size/1024)
	}
	return fmt.Sprintf("%dB", size)
}
