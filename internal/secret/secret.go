// Package secret seals connection strings so they can sit in a config file.
// Values are encrypted with AES-256-GCM under a key derived from the current
// machine and user, so a sealed value only opens where it was sealed.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"runtime"
	"strings"
)

// SealedPrefix marks a sealed value.
const SealedPrefix = "enc:v1:"

var (
	ErrOpenFailed    = errors.New("failed to open sealed value")
	ErrInvalidFormat = errors.New("invalid sealed format")
)

// Box seals and opens values with a fixed key.
type Box struct {
	aead cipher.AEAD
}

// NewBox returns a Box keyed for this machine and user.
func NewBox() (*Box, error) {
	return NewBoxWithKey(machineKey())
}

// NewBoxWithKey returns a Box for an explicit 32-byte key.
func NewBoxWithKey(key []byte) (*Box, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Seal encrypts plaintext. The empty string stays empty.
func (b *Box) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a sealed value. Values without the prefix are returned
// unchanged, so plain DSNs keep working.
func (b *Box) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrInvalidFormat, err)
	}

	n := b.aead.NonceSize()
	if len(raw) < n {
		return "", ErrInvalidFormat
	}

	plaintext, err := b.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", ErrOpenFailed
	}
	return string(plaintext), nil
}

func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

// MaskDSN hides the password of a connection URL for display. Sealed values
// and strings that do not parse as URLs are masked entirely.
func MaskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if IsSealed(dsn) {
		return SealedPrefix + "****"
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "****"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxx")
	}
	return u.String()
}

// machineKey hashes host and user identifiers into a 32-byte key.
func machineKey() []byte {
	var entropy strings.Builder

	hostname, _ := os.Hostname()
	entropy.WriteString(hostname)

	home, _ := os.UserHomeDir()
	entropy.WriteString(home)

	entropy.WriteString(runtime.GOOS)
	entropy.WriteString(runtime.GOARCH)
	entropy.WriteString("memlog-dsn-seal-v1")

	if uid := os.Getuid(); uid != -1 {
		fmt.Fprintf(&entropy, "uid:%d", uid)
	}
	if username := os.Getenv("USER"); username != "" {
		entropy.WriteString(username)
	}

	sum := sha256.Sum256([]byte(entropy.String()))
	return sum[:]
}
