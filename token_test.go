package inventory

import (
	"strings"
	"testing"
)

func TestNewToken(t *testing.T) {
	token, err := NewToken()
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	// 24 bytes of entropy is 32 characters in unpadded base64url.
	if len(token) != 32 {
		t.Errorf("unexpected token length: got %d, want 32", len(token))
	}

	for _, r := range token {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			t.Errorf("token contains non-url-safe character: %q", r)
		}
	}

	other, err := NewToken()
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	if token == other {
		t.Error("two minted tokens collided")
	}
}

func TestTokenDigest(t *testing.T) {
	a := TokenDigest("some-token")
	b := TokenDigest("some-token")
	if a != b {
		t.Error("digest is not deterministic")
	}

	if len(a) != 64 {
		t.Errorf("unexpected digest length: got %d, want 64", len(a))
	}

	if TokenDigest("another-token") == a {
		t.Error("distinct tokens produced the same digest")
	}
}

func TestTokenCacheKey(t *testing.T) {
	token := "super-secret-share-token"
	key := TokenCacheKey("verify", token)

	if !strings.HasPrefix(key, "verify:") {
		t.Errorf("cache key missing prefix: %s", key)
	}
	if strings.Contains(key, token) {
		t.Error("cache key leaks the raw token")
	}
	if key != TokenCacheKey("verify", token) {
		t.Error("cache key is not deterministic")
	}
	if key == TokenCacheKey("resolve", token) {
		t.Error("prefix does not partition the key space")
	}
}

func TestDecodeSignatureData(t *testing.T) {
	// "hello" in base64.
	raw := "aGVsbG8="

	data, err := DecodeSignatureData(raw)
	if err != nil {
		t.Fatalf("failed to decode raw base64: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected payload: %s", data)
	}

	data, err = DecodeSignatureData("data:image/png;base64," + raw)
	if err != nil {
		t.Fatalf("failed to decode data uri: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected payload: %s", data)
	}

	_, err = DecodeSignatureData("!!not base64!!")
	if err == nil {
		t.Error("expected error for malformed base64")
	}
}
