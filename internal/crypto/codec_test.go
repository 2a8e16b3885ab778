// ABOUTME: Tests for the field-level encryption codec.
// ABOUTME: Covers round-trips, absent-value conventions, and foreign-key failures.
package crypto

import (
	"crypto/rand"
	"errors"
	"path/filepath"
	"testing"
)

func newTestCodec(t *testing.T) *FieldCodec {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	codec, err := NewFieldCodec(key)
	if err != nil {
		t.Fatalf("NewFieldCodec failed: %v", err)
	}
	return codec
}

func TestNewFieldCodecKeySize(t *testing.T) {
	if _, err := NewFieldCodec(make([]byte, 16)); err == nil {
		t.Error("Expected error for short key")
	}
	if _, err := NewFieldCodec(make([]byte, 32)); err != nil {
		t.Errorf("Unexpected error for 32-byte key: %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, plaintext := range []string{"82.5", "oatmeal with honey", "日本語"} {
		ciphertext, err := codec.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}
		if ciphertext == plaintext {
			t.Errorf("Ciphertext should differ from plaintext %q", plaintext)
		}

		got, err := codec.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if got != plaintext {
			t.Errorf("Round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptEmptyIsEmpty(t *testing.T) {
	codec := newTestCodec(t)

	ciphertext, err := codec.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if ciphertext != "" {
		t.Errorf("Empty plaintext should encrypt to empty, got %q", ciphertext)
	}

	got, err := codec.Decrypt("")
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if got != "" {
		t.Errorf("Empty ciphertext should decrypt to empty, got %q", got)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	a := newTestCodec(t)
	b := newTestCodec(t)

	ciphertext, err := a.Encrypt("82.5")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = b.Decrypt(ciphertext)
	if !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt for foreign key, got %v", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, bad := range []string{"not-base64!!", "aGVsbG8="} {
		if _, err := codec.Decrypt(bad); !errors.Is(err, ErrDecrypt) {
			t.Errorf("Decrypt(%q): expected ErrDecrypt, got %v", bad, err)
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	ciphertext, err := codec.EncryptFloat(82.5)
	if err != nil {
		t.Fatalf("EncryptFloat failed: %v", err)
	}
	got, err := codec.DecryptFloat(ciphertext)
	if err != nil {
		t.Fatalf("DecryptFloat failed: %v", err)
	}
	if got != 82.5 {
		t.Errorf("Round trip = %f, want 82.5", got)
	}
}

func TestFloatZeroMeansAbsent(t *testing.T) {
	codec := newTestCodec(t)

	ciphertext, err := codec.EncryptFloat(0)
	if err != nil {
		t.Fatalf("EncryptFloat failed: %v", err)
	}
	if ciphertext != "" {
		t.Errorf("Zero should encrypt to empty, got %q", ciphertext)
	}

	got, err := codec.DecryptFloat("")
	if err != nil {
		t.Fatalf("DecryptFloat failed: %v", err)
	}
	if got != 0 {
		t.Errorf("Empty should decrypt to 0, got %f", got)
	}
}

func TestDecryptFloatUnparsableDefaultsToZero(t *testing.T) {
	codec := newTestCodec(t)

	ciphertext, err := codec.Encrypt("not a number")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, err := codec.DecryptFloat(ciphertext)
	if err != nil {
		t.Fatalf("DecryptFloat failed: %v", err)
	}
	if got != 0 {
		t.Errorf("Unparsable plaintext should decode to 0, got %f", got)
	}
}

func TestOpenFieldCodecPersistsKey(t *testing.T) {
	dir := t.TempDir()

	first, err := OpenFieldCodec(dir)
	if err != nil {
		t.Fatalf("OpenFieldCodec failed: %v", err)
	}

	ciphertext, err := first.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// A second open in the same directory must load the same key.
	second, err := OpenFieldCodec(dir)
	if err != nil {
		t.Fatalf("Second OpenFieldCodec failed: %v", err)
	}
	got, err := second.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt with reloaded key failed: %v", err)
	}
	if got != "secret" {
		t.Errorf("Round trip across opens = %q, want secret", got)
	}

	// A different directory generates a different key.
	other, err := OpenFieldCodec(filepath.Join(t.TempDir(), "other"))
	if err != nil {
		t.Fatalf("OpenFieldCodec in other dir failed: %v", err)
	}
	if _, err := other.Decrypt(ciphertext); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Expected ErrDecrypt with other device key, got %v", err)
	}
}
