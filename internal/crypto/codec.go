// ABOUTME: Field-level encryption codec for sensitive health values.
// ABOUTME: AES-256-GCM with a device-bound key stored beside the data directory.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrDecrypt marks ciphertext that cannot be decrypted (corrupt data or a
// foreign key). Callers use it to tell unreadable rows apart from absent
// values, which decode to defaults instead.
var ErrDecrypt = errors.New("decrypt failed")

const keySize = 32

// FieldCodec encrypts and decrypts individual scalar field values.
type FieldCodec struct {
	aead cipher.AEAD
}

// NewFieldCodec creates a codec from a 32-byte key.
func NewFieldCodec(key []byte) (*FieldCodec, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("field codec key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &FieldCodec{aead: aead}, nil
}

// OpenFieldCodec loads the device key from dataDir, generating one on first
// use. The key file is created 0600.
func OpenFieldCodec(dataDir string) (*FieldCodec, error) {
	keyPath := filepath.Join(dataDir, "device.key")

	key, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		key = make([]byte, keySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate device key: %w", err)
		}
		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		if err := os.WriteFile(keyPath, key, 0600); err != nil {
			return nil, fmt.Errorf("write device key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read device key: %w", err)
	}

	return NewFieldCodec(key)
}

// Encrypt encrypts a plaintext field value. Empty input encrypts to empty,
// keeping "value was absent" round-trippable.
func (c *FieldCodec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a field value. An empty ciphertext short-circuits to ""
// without touching the cipher; anything unreadable returns ErrDecrypt.
func (c *FieldCodec) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}

// EncryptFloat encrypts a numeric value's string form. Zero encrypts to
// empty, matching the "zero means absent" field convention.
func (c *FieldCodec) EncryptFloat(v float64) (string, error) {
	if v == 0 {
		return "", nil
	}
	return c.Encrypt(strconv.FormatFloat(v, 'f', -1, 64))
}

// DecryptFloat decrypts and parses a numeric field. A value that decrypts
// but fails to parse defaults to 0; a value that fails to decrypt returns
// ErrDecrypt so the caller can quarantine the row.
func (c *FieldCodec) DecryptFloat(ciphertext string) (float64, error) {
	plaintext, err := c.Decrypt(ciphertext)
	if err != nil {
		return 0, err
	}
	if plaintext == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(plaintext, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}
