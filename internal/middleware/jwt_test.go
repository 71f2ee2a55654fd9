package middleware

import (
	"testing"
)

func TestSetSecretTakesEffect(t *testing.T) {
	orig := secret
	defer func() { secret = orig }()

	SetSecret("configured-key")

	token, err := GenerateToken(42, "driver", 7)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "driver" || claims.OrgID != 7 {
		t.Errorf("claims = %+v", claims)
	}

	// A token minted under the previous key must stop validating.
	SetSecret("rotated-key")
	if _, err := ValidateToken(token); err == nil {
		t.Errorf("token signed with the old key still validates")
	}
}

func TestSetSecretIgnoresEmpty(t *testing.T) {
	orig := secret
	defer func() { secret = orig }()

	SetSecret("known-key")
	token, err := GenerateToken(1, "admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	// Empty configuration keeps the current key instead of wiping it.
	SetSecret("")
	if _, err := ValidateToken(token); err != nil {
		t.Errorf("empty SetSecret invalidated the key: %v", err)
	}
}
