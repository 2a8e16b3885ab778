// ABOUTME: Whole-document passphrase encryption for database dumps.
// ABOUTME: scrypt key derivation plus AES-256-GCM; passphrase is optional per call.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	blobSaltSize = 16
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
)

// blobPrefix marks an encrypted dump so restores can tell ciphertext from
// plaintext JSON without guessing.
const blobPrefix = "MLENC1:"

// IsEncryptedBlob reports whether data carries the encrypted-dump envelope.
func IsEncryptedBlob(data []byte) bool {
	return len(data) > len(blobPrefix) && string(data[:len(blobPrefix)]) == blobPrefix
}

// EncryptBlob encrypts a JSON document with a passphrase. An empty
// passphrase returns the document unchanged: blob encryption is opt-in.
func EncryptBlob(doc []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return doc, nil
	}

	salt := make([]byte, blobSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	aead, err := deriveAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, doc, nil)
	payload := append(append(salt, nonce...), sealed...)
	return []byte(blobPrefix + base64.StdEncoding.EncodeToString(payload)), nil
}

// DecryptBlob reverses EncryptBlob. Plaintext input passes through when no
// passphrase is given; an encrypted envelope without a passphrase, or a
// wrong passphrase, returns ErrDecrypt.
func DecryptBlob(data []byte, passphrase string) ([]byte, error) {
	if !IsEncryptedBlob(data) {
		// Plaintext dump; a supplied passphrase is simply ignored.
		return data, nil
	}
	if passphrase == "" {
		return nil, fmt.Errorf("%w: dump is encrypted but no passphrase given", ErrDecrypt)
	}

	raw, err := base64.StdEncoding.DecodeString(string(data[len(blobPrefix):]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	const nonceSize = 12 // standard GCM nonce
	if len(raw) < blobSaltSize+nonceSize {
		return nil, fmt.Errorf("%w: envelope too short", ErrDecrypt)
	}

	salt := raw[:blobSaltSize]
	nonce := raw[blobSaltSize : blobSaltSize+nonceSize]
	sealed := raw[blobSaltSize+nonceSize:]

	aead, err := deriveAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	doc, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return doc, nil
}

func deriveAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return aead, nil
}
