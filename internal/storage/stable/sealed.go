package stable

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/notechain-go/pkg/crypto/adaptive"
)

// Encryption errors.
var (
	ErrKeyTooShort       = errors.New("stable: encryption key too short (minimum 16 bytes)")
	ErrPassphraseTooWeak = errors.New("stable: passphrase too weak (minimum 8 characters)")
	ErrNoSealKey         = errors.New("stable: no encryption key or passphrase configured")
	ErrDecryptionFailed  = errors.New("stable: decryption failed - wrong key or corrupted data")
)

const (
	// MinKeyLength is the minimum raw key length.
	MinKeyLength = 16

	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the per-write salt stored in every envelope.
	SaltLength = 16

	// Argon2id parameters for passphrase derivation.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4

	derivedKeyLen = 32
	hkdfInfo      = "notechain stable medium v1"
)

// Envelope layout:
//
//	[magic:8 "NCSEALED"][kdf:1][cipher:1][salt:16][nonce||ciphertext||tag]
//
// The first 26 bytes are authenticated as additional data.
var sealMagic = []byte("NCSEALED")

const sealHeaderSize = 8 + 1 + 1 + SaltLength

const (
	kdfHKDF   byte = 1
	kdfArgon2 byte = 2

	cipherAESGCM   byte = 1
	cipherChaCha20 byte = 2
)

// SealConfig configures at-rest encryption of a medium.
type SealConfig struct {
	// Key is the raw master key. Every write derives a fresh subkey
	// from it with HKDF-SHA256 and a random salt.
	Key []byte

	// Passphrase is stretched with Argon2id instead of using Key.
	// If provided, Key is ignored.
	Passphrase []byte

	// Algorithm selects the AEAD. Empty picks one based on hardware.
	Algorithm adaptive.CipherType
}

// ValidateSealConfig validates the encryption configuration.
func ValidateSealConfig(cfg SealConfig) error {
	switch cfg.Algorithm {
	case "", adaptive.CipherAESGCM, adaptive.CipherChaCha20:
	default:
		return fmt.Errorf("stable: unsupported algorithm: %s", cfg.Algorithm)
	}
	if len(cfg.Passphrase) > 0 {
		if len(cfg.Passphrase) < MinPassphraseLength {
			return ErrPassphraseTooWeak
		}
		return nil
	}
	if len(cfg.Key) == 0 {
		return ErrNoSealKey
	}
	if len(cfg.Key) < MinKeyLength {
		return ErrKeyTooShort
	}
	return nil
}

// ParseKey decodes a hex-encoded master key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("stable: decode key: %w", err)
	}
	if len(key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	return key, nil
}

// GenerateKey generates a random master key of the given length.
func GenerateKey(length int) ([]byte, error) {
	if length < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("stable: generate key: %w", err)
	}
	return key, nil
}

// ZeroKey zeros a key in memory.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}

// SealedMedium encrypts everything written to an inner medium.
//
// Bytes read back without the envelope magic were written before
// encryption was enabled and are returned as-is; the next Write seals them.
type SealedMedium struct {
	inner Medium
	cfg   SealConfig
}

// NewSealedMedium wraps inner with authenticated encryption.
func NewSealedMedium(inner Medium, cfg SealConfig) (*SealedMedium, error) {
	if inner == nil {
		return nil, fmt.Errorf("stable: inner medium is required")
	}
	if err := ValidateSealConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Algorithm == "" {
		detected, err := adaptive.New(make([]byte, derivedKeyLen))
		if err != nil {
			return nil, fmt.Errorf("stable: select cipher: %w", err)
		}
		cfg.Algorithm = detected.Type()
	}
	return &SealedMedium{inner: inner, cfg: cfg}, nil
}

// Write implements Medium.
func (m *SealedMedium) Write(ctx context.Context, data []byte) error {
	header := make([]byte, sealHeaderSize)
	copy(header, sealMagic)
	header[8] = m.kdfID()
	header[9] = cipherID(m.cfg.Algorithm)
	salt := header[10:]
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("stable: generate salt: %w", err)
	}

	c, err := m.cipherFor(header[8], header[9], salt)
	if err != nil {
		return err
	}
	sealed, err := c.Encrypt(data, header)
	if err != nil {
		return fmt.Errorf("stable: encrypt: %w", err)
	}

	out := make([]byte, 0, len(header)+len(sealed))
	out = append(out, header...)
	out = append(out, sealed...)
	return m.inner.Write(ctx, out)
}

// Read implements Medium.
func (m *SealedMedium) Read(ctx context.Context) ([]byte, error) {
	raw, err := m.inner.Read(ctx)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, sealMagic) {
		return raw, nil
	}
	if len(raw) < sealHeaderSize {
		return nil, ErrTruncated
	}

	header := raw[:sealHeaderSize]
	c, err := m.cipherFor(header[8], header[9], header[10:])
	if err != nil {
		return nil, err
	}
	plain, err := c.Decrypt(raw[sealHeaderSize:], header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plain, nil
}

// Close implements Medium.
func (m *SealedMedium) Close() error {
	return m.inner.Close()
}

func (m *SealedMedium) kdfID() byte {
	if len(m.cfg.Passphrase) > 0 {
		return kdfArgon2
	}
	return kdfHKDF
}

func (m *SealedMedium) cipherFor(kdf, cipher byte, salt []byte) (adaptive.Cipher, error) {
	var key []byte
	switch kdf {
	case kdfHKDF:
		if len(m.cfg.Key) == 0 {
			return nil, fmt.Errorf("%w: envelope needs a raw key", ErrDecryptionFailed)
		}
		key = make([]byte, derivedKeyLen)
		if _, err := io.ReadFull(hkdf.New(sha256.New, m.cfg.Key, salt, []byte(hkdfInfo)), key); err != nil {
			return nil, fmt.Errorf("stable: derive key: %w", err)
		}
	case kdfArgon2:
		if len(m.cfg.Passphrase) == 0 {
			return nil, fmt.Errorf("%w: envelope needs a passphrase", ErrDecryptionFailed)
		}
		key = argon2.IDKey(m.cfg.Passphrase, salt, argon2Time, argon2Memory, argon2Threads, derivedKeyLen)
	default:
		return nil, fmt.Errorf("%w: unknown kdf %d", ErrDecryptionFailed, kdf)
	}
	defer ZeroKey(key)

	var algorithm adaptive.CipherType
	switch cipher {
	case cipherAESGCM:
		algorithm = adaptive.CipherAESGCM
	case cipherChaCha20:
		algorithm = adaptive.CipherChaCha20
	default:
		return nil, fmt.Errorf("%w: unknown cipher %d", ErrDecryptionFailed, cipher)
	}
	return adaptive.NewWithType(key, algorithm)
}

func cipherID(t adaptive.CipherType) byte {
	if t == adaptive.CipherChaCha20 {
		return cipherChaCha20
	}
	return cipherAESGCM
}
