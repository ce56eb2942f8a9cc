package secret

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// encryptedFileMode keeps encrypted output and key artifacts private to
// the running user.
const encryptedFileMode = 0o600

// EncryptFile seals the file at src into dst under a fresh session key and
// writes the session key, wrapped with RSA-OAEP for pub, to keyPath. The
// algorithm name is bound to the wrapped key as the OAEP label. Neither dst
// nor keyPath may exist yet.
func EncryptFile(src, dst, keyPath string, pub *rsa.PublicKey, alg Algorithm) error {
	plain, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	out, err := createExclusive(dst)
	if err != nil {
		return err
	}
	keyOut, err := createExclusive(keyPath)
	if err != nil {
		return errors.Join(err, out.Close())
	}

	encErr := Encrypt(plain, out, keyOut, pub, alg)
	return errors.Join(encErr, out.Close(), keyOut.Close())
}

// Encrypt seals plain under a fresh session key. The sealed bytes go to dst
// and the wrapped session key to keyOut.
func Encrypt(plain []byte, dst, keyOut io.Writer, pub *rsa.PublicKey, alg Algorithm) error {
	key, err := GenerateKey()
	if err != nil {
		return err
	}
	defer wipe(key)

	aead, err := newAEAD(alg, key)
	if err != nil {
		return err
	}
	sealed, err := seal(aead, plain)
	if err != nil {
		return err
	}

	wrapped, err := WrapKey(pub, key, alg)
	if err != nil {
		return err
	}

	if _, err := dst.Write(sealed); err != nil {
		return fmt.Errorf("failed to write encrypted data: %w", err)
	}
	if _, err := keyOut.Write(wrapped); err != nil {
		return fmt.Errorf("failed to write wrapped key: %w", err)
	}
	return nil
}

func createExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, encryptedFileMode) //nolint:gosec // Path is derived from the configured output directory
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// DecryptFile reverses EncryptFile and returns the plaintext.
func DecryptFile(src, keyPath string, priv *rsa.PrivateKey, alg Algorithm) ([]byte, error) {
	wrapped, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", keyPath, err)
	}
	key, err := UnwrapKey(priv, wrapped, alg)
	if err != nil {
		return nil, err
	}
	defer wipe(key)

	sealed, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}

	aead, err := newAEAD(alg, key)
	if err != nil {
		return nil, err
	}
	return open(aead, sealed)
}

// WrapKey encrypts a session key for pub.
func WrapKey(pub *rsa.PublicKey, key []byte, alg Algorithm) ([]byte, error) {
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, []byte(alg))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap session key: %w", err)
	}
	return wrapped, nil
}

// UnwrapKey decrypts a session key wrapped by WrapKey or EncryptFile.
func UnwrapKey(priv *rsa.PrivateKey, wrapped []byte, alg Algorithm) ([]byte, error) {
	key, err := rsa.DecryptOAEP(sha256.New(), nil, priv, wrapped, []byte(alg))
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap session key: %w", err)
	}
	return key, nil
}
