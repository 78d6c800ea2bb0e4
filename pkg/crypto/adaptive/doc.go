// Package adaptive provides authenticated encryption for backup archives.
//
// Supported Algorithms:
//
//   - AES-256-GCM: preferred on amd64 and arm64, where Go uses hardware AES
//   - ChaCha20-Poly1305: preferred elsewhere
//
// Keys are either supplied directly or derived from a passphrase with
// Argon2id, then narrowed to a purpose-specific subkey with HKDF-SHA256.
//
// Usage:
//
//	salt, _ := adaptive.NewSalt()
//	c, err := adaptive.FromPassphrase(pass, salt, adaptive.CipherAuto, adaptive.DefaultKDFParams(), "backup")
//	sealed, err := c.Encrypt(plaintext, aad)
//	plain, err := c.Decrypt(sealed, aad)
//
// Ciphertext layout is nonce || sealed data.
package adaptive
