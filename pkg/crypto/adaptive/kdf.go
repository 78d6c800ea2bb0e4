package adaptive

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltSize is the salt length generated by NewSalt.
	SaltSize = 16

	// KeySize is the length of derived keys.
	KeySize = 32

	// MinPassphraseLength is the shortest accepted passphrase.
	MinPassphraseLength = 8
)

var (
	ErrPassphraseTooShort = errors.New("adaptive: passphrase too short (minimum 8 characters)")
	ErrSaltTooShort       = errors.New("adaptive: salt too short")
)

// KDFParams tunes Argon2id.
type KDFParams struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory_kib"`
	Threads   uint8  `json:"threads"`
}

// DefaultKDFParams returns the parameters used for new archives.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("adaptive: generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches passphrase into a KeySize master key with Argon2id.
func DeriveKey(passphrase, salt []byte, p KDFParams) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooShort
	}
	if len(salt) < 8 {
		return nil, ErrSaltTooShort
	}
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		p = DefaultKDFParams()
	}
	return argon2.IDKey(passphrase, salt, p.Time, p.MemoryKiB, p.Threads, KeySize), nil
}

// Subkey derives a purpose-bound key of length n from master with HKDF.
func Subkey(master []byte, info string, n int) ([]byte, error) {
	if len(master) < 16 {
		return nil, fmt.Errorf("%w: master key must be at least 16 bytes", ErrInvalidKeySize)
	}
	key := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("adaptive: derive subkey: %w", err)
	}
	return key, nil
}

// FromPassphrase derives a cipher of type t for the given purpose.
func FromPassphrase(passphrase, salt []byte, t CipherType, p KDFParams, purpose string) (Cipher, error) {
	master, err := DeriveKey(passphrase, salt, p)
	if err != nil {
		return nil, err
	}
	defer Zero(master)

	key, err := Subkey(master, purpose, KeySize)
	if err != nil {
		return nil, err
	}
	defer Zero(key)

	return NewWithType(key, t)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
