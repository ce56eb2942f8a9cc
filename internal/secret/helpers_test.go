package secret

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
)

var testKey = sync.OnceValues(func() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
})

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := testKey()
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return key
}
