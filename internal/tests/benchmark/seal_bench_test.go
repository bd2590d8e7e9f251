package benchmark

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/yndnr/notechain-go/internal/storage/snapshot"
	"github.com/yndnr/notechain-go/internal/storage/stable"
	"github.com/yndnr/notechain-go/pkg/crypto/adaptive"
)

// BenchmarkAdaptiveCipherEncrypt benchmarks the AEADs behind the sealed medium.
func BenchmarkAdaptiveCipherEncrypt(b *testing.B) {
	key := make([]byte, 32)
	rand.Read(key)

	for _, cipherType := range []adaptive.CipherType{adaptive.CipherAESGCM, adaptive.CipherChaCha20} {
		for _, size := range []int{1024, 64 * 1024, 1024 * 1024} {
			b.Run(string(cipherType)+"/"+sizeLabel(size), func(b *testing.B) {
				cipher, err := adaptive.NewWithType(key, cipherType)
				if err != nil {
					b.Fatalf("Failed to create cipher: %v", err)
				}
				plaintext := make([]byte, size)
				rand.Read(plaintext)

				b.SetBytes(int64(size))
				b.ResetTimer()
				b.ReportAllocs()

				for i := 0; i < b.N; i++ {
					if _, err := cipher.Encrypt(plaintext, nil); err != nil {
						b.Fatalf("Encrypt: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSealedSnapshot benchmarks saving and restoring a snapshot through
// a sealed in-memory medium, so only codec and sealing are measured.
func BenchmarkSealedSnapshot(b *testing.B) {
	key := make([]byte, 32)
	rand.Read(key)

	runWithNoteCounts(b, SmallNoteCounts, func(b *testing.B, count int) {
		table, _ := prefillTable(b, count)
		state := table.Export()

		sealed, err := stable.NewSealedMedium(stable.NewMemoryMedium(), stable.SealConfig{Key: key})
		if err != nil {
			b.Fatalf("NewSealedMedium: %v", err)
		}
		codec := snapshot.NewCodec()
		ctx := context.Background()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if err := codec.Save(ctx, sealed, state); err != nil {
				b.Fatalf("Save: %v", err)
			}
			if _, _, err := codec.Restore(ctx, sealed); err != nil {
				b.Fatalf("Restore: %v", err)
			}
		}
	})
}
