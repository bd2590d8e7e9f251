package config

import (
	"errors"
	"fmt"

	"github.com/yndnr/notechain-go/internal/storage/stable"
	"github.com/yndnr/notechain-go/pkg/crypto/adaptive"
)

// SealConfig converts the section into a stable.SealConfig.
// enabled is false when neither key nor passphrase is set.
func (s *SecuritySection) SealConfig() (cfg stable.SealConfig, enabled bool, err error) {
	if s.EncryptionKey == "" && s.EncryptionPassphrase == "" {
		return cfg, false, nil
	}
	if s.EncryptionKey != "" && s.EncryptionPassphrase != "" {
		return cfg, false, errors.New("security.encryption_key and security.encryption_passphrase are mutually exclusive")
	}

	cfg.Algorithm, err = adaptive.ParseCipherType(s.EncryptionAlgorithm)
	if err != nil {
		return cfg, false, fmt.Errorf("security.encryption_algorithm: %w", err)
	}

	if s.EncryptionPassphrase != "" {
		cfg.Passphrase = []byte(s.EncryptionPassphrase)
	} else {
		cfg.Key, err = stable.ParseKey(s.EncryptionKey)
		if err != nil {
			return cfg, false, fmt.Errorf("security.encryption_key: %w", err)
		}
	}

	if err := stable.ValidateSealConfig(cfg); err != nil {
		return cfg, false, fmt.Errorf("security: %w", err)
	}
	return cfg, true, nil
}
