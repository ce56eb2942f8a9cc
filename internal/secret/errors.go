package secret

import "errors"

var (
	// ErrNoPrivateKey is returned when a key file holds no usable private key.
	ErrNoPrivateKey = errors.New("no private key found")

	// ErrUnsupportedKey is returned for keys that are not RSA.
	ErrUnsupportedKey = errors.New("unsupported key type, RSA is required")

	// ErrNoPublicKey is returned when a key file holds no usable public key.
	ErrNoPublicKey = errors.New("no public key found")

	// ErrDecryptSalt is returned when the salt file cannot be decrypted with
	// the private key.
	ErrDecryptSalt = errors.New("unable to decrypt the salt file")

	// ErrMalformedSecret is returned when the decrypted secret string does
	// not have the expected parts.
	ErrMalformedSecret = errors.New("malformed secret string")

	// ErrUnknownAlgorithm is returned for an unsupported AEAD name.
	ErrUnknownAlgorithm = errors.New("unknown encryption algorithm")

	// ErrCiphertextTooShort is returned when sealed data is shorter than a
	// nonce plus tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrWiped is returned when a cipher is used after Wipe.
	ErrWiped = errors.New("key material has been wiped")
)
