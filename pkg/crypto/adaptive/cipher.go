package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	// CipherAuto picks the preferred algorithm for this machine.
	CipherAuto     CipherType = ""
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

var (
	ErrUnknownCipher      = errors.New("adaptive: unknown cipher type")
	ErrInvalidKeySize     = errors.New("adaptive: invalid key size")
	ErrCiphertextTooShort = errors.New("adaptive: ciphertext too short")
)

// Cipher provides authenticated encryption.
type Cipher interface {
	// Type returns the cipher type.
	Type() CipherType

	// Encrypt seals plaintext with a fresh random nonce.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt opens data produced by Encrypt.
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)

	// NonceSize returns the nonce size in bytes.
	NonceSize() int

	// Overhead returns the authentication tag size in bytes.
	Overhead() int
}

// ParseType parses a configured algorithm name. "" and "auto" select the
// preferred algorithm.
func ParseType(s string) (CipherType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Preferred(), nil
	case "aes-gcm", "aes", "aes-256-gcm":
		return CipherAESGCM, nil
	case "chacha20-poly1305", "chacha20", "chacha":
		return CipherChaCha20, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCipher, s)
	}
}

// Preferred returns the algorithm New uses on this machine.
func Preferred() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// New creates a cipher of the preferred type.
func New(key []byte) (Cipher, error) {
	return NewWithType(key, Preferred())
}

// NewWithType creates a cipher of the given type. CipherAuto means Preferred.
func NewWithType(key []byte, t CipherType) (Cipher, error) {
	switch t {
	case CipherAuto:
		return New(key)
	case CipherAESGCM:
		return NewAESGCM(key)
	case CipherChaCha20:
		return NewChaCha20(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, string(t))
	}
}

// NewAESGCM creates an AES-GCM cipher. Key must be 16, 24 or 32 bytes.
func NewAESGCM(key []byte) (Cipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: aes-gcm needs 16, 24 or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aeadCipher{typ: CipherAESGCM, aead: aead}, nil
}

// NewChaCha20 creates a ChaCha20-Poly1305 cipher. Key must be 32 bytes.
func NewChaCha20(key []byte) (Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: chacha20-poly1305 needs %d bytes, got %d",
			ErrInvalidKeySize, chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &aeadCipher{typ: CipherChaCha20, aead: aead}, nil
}

type aeadCipher struct {
	typ  CipherType
	aead cipher.AEAD
}

func (c *aeadCipher) Type() CipherType { return c.typ }
func (c *aeadCipher) NonceSize() int   { return c.aead.NonceSize() }
func (c *aeadCipher) Overhead() int    { return c.aead.Overhead() }

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("adaptive: read nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n+c.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	return c.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
}
