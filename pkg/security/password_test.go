package security

import (
	"strings"
	"testing"

	"github.com/uteshop/uteshop-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("s3cret-pass", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := VerifyPassword("s3cret-pass", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("expected correct password to verify")
	}

	ok, err = VerifyPassword("wrong-pass", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword wrong: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "not-a-hash", "$argon2i$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA"} {
		if _, err := VerifyPassword("pw", encoded); err == nil {
			t.Errorf("expected error for hash %q", encoded)
		}
	}
}

func TestHashesAreSalted(t *testing.T) {
	cfg := testPasswordConfig()
	a, err := HashPassword("same-pass", cfg)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same-pass", cfg)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}
