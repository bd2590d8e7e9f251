// Package adaptive provides adaptive authenticated encryption for NoteChain.
//
// A Cipher seals the durable snapshot bytes when at-rest encryption is
// enabled. The algorithm is picked from hardware capabilities unless the
// operator names one:
//
//   - AES-256-GCM on amd64 and arm64, where Go uses AES instructions
//   - ChaCha20-Poly1305 everywhere else
//
// Ciphertexts carry their nonce as a prefix, so a Cipher holds no
// per-message state and is safe for concurrent use.
//
// Usage:
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plain, err := c.Decrypt(sealed, aad)
package adaptive
