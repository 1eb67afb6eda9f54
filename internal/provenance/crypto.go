package provenance

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KDFSalt       = "static-menu-qr-salt"
	KDFIterations = 100000
	KeySize       = 32
	NonceSize     = 12

	// TimestampLayout matches ISO-8601 UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

var (
	ErrMalformedToken = errors.New("provenance: malformed encrypted token")
	ErrDecrypt        = errors.New("provenance: decrypt failed")
)

// Timestamp formats t the way the key-derivation secret is written into metadata.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DeriveKey stretches secret into an AES-256 key with PBKDF2-HMAC-SHA256.
func DeriveKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(KDFSalt), KDFIterations, KeySize, sha256.New)
}

// Seal encrypts plaintext under the key derived from secret and returns
// base64(nonce || ciphertext || tag). A nil rnd uses crypto/rand.
func Seal(plaintext, secret string, rnd io.Reader) (string, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	gcm, err := newGCM(DeriveKey(secret))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rnd, nonce); err != nil {
		return "", fmt.Errorf("provenance: nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. It exists for out-of-band inspection only; the viewer
// never decrypts.
func Open(token, secret string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	gcm, err := newGCM(DeriveKey(secret))
	if err != nil {
		return "", err
	}
	if len(raw) < NonceSize+gcm.Overhead() {
		return "", ErrMalformedToken
	}
	nonce, sealed := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, NonceSize)
}
