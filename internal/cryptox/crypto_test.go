package cryptox

import (
	"bytes"
	"testing"
)

func TestHashPassword_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	h1 := HashPassword(password, salt)
	h2 := HashPassword(password, salt)

	if !bytes.Equal(h1, h2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(h1) != keySize {
		t.Errorf("expected %d bytes, got %d", keySize, len(h1))
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	if bytes.Equal(HashPassword(password, []byte("salt-1")), HashPassword(password, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestVerifyPassword(t *testing.T) {
	salt := NewSalt()
	if len(salt) != SaltSize {
		t.Fatalf("salt length %d", len(salt))
	}
	stored := HashPassword([]byte("hunter2"), salt)

	if !VerifyPassword(stored, salt, []byte("hunter2")) {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(stored, salt, []byte("hunter3")) {
		t.Fatal("wrong password accepted")
	}
}
