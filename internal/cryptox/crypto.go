// Package cryptox implements the symmetric token cipher used for one-time
// links and stored OTP secrets.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mori-tea/mori/internal/common"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

var tokenEncoding = base64.RawURLEncoding

// TokenCipher seals short strings with AES-256-GCM.
//
// A token is base64url(nonce || ciphertext || tag) without padding, so it can
// be embedded in URLs and stored in text columns as-is. A TokenCipher is safe
// for concurrent use.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher builds a cipher around a 32-byte key.
func NewTokenCipher(key []byte) (*TokenCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher block: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &TokenCipher{aead: aead}, nil
}

// ParseKey decodes a base64 encoded key. Standard and URL alphabets are
// accepted, with or without padding.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("encryption key is required")
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		key, err := enc.DecodeString(s)
		if err == nil {
			if len(key) != KeySize {
				return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
			}
			return key, nil
		}
	}

	return nil, errors.New("encryption key is not valid base64")
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return tokenEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. Any malformed, truncated or
// tampered input yields common.ErrInvalidToken.
func (c *TokenCipher) Decrypt(token string) (string, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", common.ErrInvalidToken
	}

	plaintext, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	return string(plaintext), nil
}
