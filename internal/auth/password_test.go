package auth

import "testing"

func TestVerifyPasswordBcrypt(t *testing.T) {
	digest, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(digest, "correct horse battery"); err != nil {
		t.Fatalf("matching password must verify: %v", err)
	}
	if err := VerifyPassword(digest, "wrong password"); err == nil {
		t.Fatal("non-matching password must not verify")
	}
}

func TestVerifyPasswordLegacyDigest(t *testing.T) {
	digest := LegacyDigest("s3cret-value")
	if err := VerifyPassword(digest, "s3cret-value"); err != nil {
		t.Fatalf("legacy digest must verify against the original password: %v", err)
	}
	if err := VerifyPassword(digest, "other-value"); err == nil {
		t.Fatal("legacy digest must reject a different password")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	if err := VerifyPassword("", "anything"); err == nil {
		t.Fatal("empty digest must never verify")
	}
	if err := VerifyPassword(LegacyDigest("x"), ""); err == nil {
		t.Fatal("empty password must never verify")
	}
}
