// ABOUTME: Tests for passphrase encryption of database dumps.
// ABOUTME: Covers the envelope marker, passthrough, and wrong-passphrase failures.
package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptBlobRoundTrip(t *testing.T) {
	doc := []byte(`{"exercises": [], "settings": []}`)

	sealed, err := EncryptBlob(doc, "hunter2")
	if err != nil {
		t.Fatalf("EncryptBlob failed: %v", err)
	}
	if !IsEncryptedBlob(sealed) {
		t.Error("Expected envelope marker on encrypted dump")
	}
	if bytes.Contains(sealed, []byte("exercises")) {
		t.Error("Ciphertext should not contain plaintext")
	}

	got, err := DecryptBlob(sealed, "hunter2")
	if err != nil {
		t.Fatalf("DecryptBlob failed: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("Round trip = %s, want %s", got, doc)
	}
}

func TestEncryptBlobEmptyPassphrasePassthrough(t *testing.T) {
	doc := []byte(`{"plain": true}`)

	out, err := EncryptBlob(doc, "")
	if err != nil {
		t.Fatalf("EncryptBlob failed: %v", err)
	}
	if !bytes.Equal(out, doc) {
		t.Error("Empty passphrase should return the document unchanged")
	}
	if IsEncryptedBlob(out) {
		t.Error("Plaintext dump should not carry the envelope marker")
	}
}

func TestDecryptBlobPlaintextPassthrough(t *testing.T) {
	doc := []byte(`{"plain": true}`)

	// A passphrase against a plaintext dump is ignored.
	got, err := DecryptBlob(doc, "whatever")
	if err != nil {
		t.Fatalf("DecryptBlob failed: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Error("Plaintext dump should pass through unchanged")
	}
}

func TestDecryptBlobWrongPassphrase(t *testing.T) {
	sealed, err := EncryptBlob([]byte(`{"secret": 1}`), "right")
	if err != nil {
		t.Fatalf("EncryptBlob failed: %v", err)
	}

	if _, err := DecryptBlob(sealed, "wrong"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for wrong passphrase, got %v", err)
	}
}

func TestDecryptBlobMissingPassphrase(t *testing.T) {
	sealed, err := EncryptBlob([]byte(`{"secret": 1}`), "right")
	if err != nil {
		t.Fatalf("EncryptBlob failed: %v", err)
	}

	if _, err := DecryptBlob(sealed, ""); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for missing passphrase, got %v", err)
	}
}

func TestDecryptBlobTruncatedEnvelope(t *testing.T) {
	if _, err := DecryptBlob([]byte("MLENC1:aGk="), "pw"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for truncated envelope, got %v", err)
	}
}
