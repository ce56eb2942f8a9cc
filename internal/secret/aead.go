package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm names an authenticated cipher.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default.
	AlgorithmAESGCM Algorithm = "aes-gcm"

	// AlgorithmChaCha20Poly1305 is ChaCha20-Poly1305.
	AlgorithmChaCha20Poly1305 Algorithm = "chacha20poly1305"
)

// KeySize is the key length in bytes for every supported algorithm.
const KeySize = 32

// ParseAlgorithm validates name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(name); a {
	case AlgorithmAESGCM, AlgorithmChaCha20Poly1305:
		return a, nil
	case "":
		return AlgorithmAESGCM, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

func newAEAD(alg Algorithm, key []byte) (cipher.AEAD, error) {
	switch alg {
	case AlgorithmAESGCM, "":
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case AlgorithmChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// GenerateKey returns a random key of KeySize bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// FieldCipher seals individual hash values. Each value gets a fresh random
// nonce, stored in front of the ciphertext and tag. It is safe for
// concurrent use.
type FieldCipher struct {
	alg Algorithm

	mu   sync.RWMutex
	key  []byte
	aead cipher.AEAD
}

// NewFieldCipher creates a cipher using a private copy of key. The caller
// may wipe its own copy as soon as this returns.
func NewFieldCipher(alg Algorithm, key []byte) (*FieldCipher, error) {
	own := make([]byte, len(key))
	copy(own, key)

	aead, err := newAEAD(alg, own)
	if err != nil {
		wipe(own)
		return nil, err
	}
	return &FieldCipher{alg: alg, key: own, aead: aead}, nil
}

// Algorithm returns the cipher's algorithm.
func (c *FieldCipher) Algorithm() Algorithm {
	return c.alg
}

// Seal encrypts plaintext and returns nonce || ciphertext || tag.
func (c *FieldCipher) Seal(plaintext []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.aead == nil {
		return nil, ErrWiped
	}
	return seal(c.aead, plaintext)
}

// Open reverses Seal.
func (c *FieldCipher) Open(sealed []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.aead == nil {
		return nil, ErrWiped
	}
	return open(c.aead, sealed)
}

// Wipe zeroes the key and disables the cipher. Later calls to Seal or Open
// return ErrWiped.
func (c *FieldCipher) Wipe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	wipe(c.key)
	c.key = nil
	c.aead = nil
}

// OpenField decrypts one sealed hash value with key.
func OpenField(alg Algorithm, key, sealed []byte) ([]byte, error) {
	aead, err := newAEAD(alg, key)
	if err != nil {
		return nil, err
	}
	return open(aead, sealed)
}

func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func open(aead cipher.AEAD, sealed []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(sealed) < ns+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plain, err := aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plain, nil
}
