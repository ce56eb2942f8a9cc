package secret

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// LoadPrivateKey reads an RSA private key from path. PKCS#1, PKCS#8 and
// OpenSSH encodings are accepted.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return ParsePrivateKey(data)
}

// ParsePrivateKey parses a PEM encoded RSA private key.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	raw, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: passphrase protected keys are not supported", ErrNoPrivateKey)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, err.Error())
	}

	switch k := raw.(type) {
	case *rsa.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedKey, raw)
	}
}

// LoadPublicKey reads an RSA public key from path. PEM "PUBLIC KEY",
// PEM "RSA PUBLIC KEY" and OpenSSH authorized_keys lines are accepted.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return ParsePublicKey(data)
}

// ParsePublicKey parses an RSA public key.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	if block, _ := pem.Decode(data); block != nil {
		switch block.Type {
		case "PUBLIC KEY":
			pub, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrNoPublicKey, err.Error())
			}
			return asRSAPublicKey(pub)
		case "RSA PUBLIC KEY":
			pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrNoPublicKey, err.Error())
			}
			return pub, nil
		default:
			return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrNoPublicKey, block.Type)
		}
	}

	sshKey, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, ErrNoPublicKey
	}
	cryptoKey, ok := sshKey.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, sshKey.Type())
	}
	return asRSAPublicKey(cryptoKey.CryptoPublicKey())
}

func asRSAPublicKey(pub any) (*rsa.PublicKey, error) {
	k, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedKey, pub)
	}
	return k, nil
}
