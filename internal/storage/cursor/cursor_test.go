package cursor

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAtMillis: 1760000000000,
		ID:              "hero-42",
		FilterHash:      HashFilter("equipped = true"),
	}

	token, err := Encode(original)
	if err != nil {
		t.Fatalf("encode cursor: %v", err)
	}

	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}

	if decoded != original {
		t.Fatalf("cursor mismatch: %+v != %+v", decoded, original)
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	_, err := Decode("")
	if err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDecodeInvalidBase64(t *testing.T) {
	_, err := Decode("not-base64@@")
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	token := base64.URLEncoding.EncodeToString([]byte("{not json"))
	_, err := Decode(token)
	if err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestHashFilter(t *testing.T) {
	if HashFilter("") != "" {
		t.Fatal("expected empty hash for empty filter")
	}

	hash := HashFilter("foo")
	if len(hash) != 16 {
		t.Fatalf("expected 16-char hash, got %d", len(hash))
	}

	if hash == HashFilter("bar") {
		t.Fatal("expected different hashes for different filters")
	}
}

func TestValidateFilterHash(t *testing.T) {
	raw, err := json.Marshal(Cursor{ID: "a", FilterHash: HashFilter("power > 10")})
	if err != nil {
		t.Fatalf("marshal cursor: %v", err)
	}
	c, err := Decode(base64.URLEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}

	if err := ValidateFilterHash(c, "power > 10"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateFilterHash(c, "power > 99"); err == nil {
		t.Fatal("expected error for mismatched filter")
	}
}
