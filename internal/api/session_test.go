package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

const (
	testAPIKey    = "test-api-key"
	testAPISecret = "test-api-secret"
)

// mintToken builds an HS256 session token the way Shopify does.
func mintToken(t *testing.T, secret string, claims map[string]any) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	signing := base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signing))
	return signing + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validClaims() map[string]any {
	return map[string]any{
		"dest": "https://test.myshopify.com",
		"iss":  "https://test.myshopify.com/admin",
		"aud":  testAPIKey,
		"exp":  time.Now().Add(time.Minute).Unix(),
		"nbf":  time.Now().Add(-time.Minute).Unix(),
	}
}

func TestVerifySessionToken(t *testing.T) {
	t.Run("valid token yields shop domain", func(t *testing.T) {
		token := mintToken(t, testAPISecret, validClaims())
		shop, err := VerifySessionToken(token, testAPIKey, testAPISecret)
		if err != nil {
			t.Fatalf("VerifySessionToken: %v", err)
		}
		if shop != "test.myshopify.com" {
			t.Errorf("shop = %q", shop)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token := mintToken(t, "other-secret", validClaims())
		if _, err := VerifySessionToken(token, testAPIKey, testAPISecret); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		token := mintToken(t, testAPISecret, claims)
		if _, err := VerifySessionToken(token, testAPIKey, testAPISecret); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("not yet valid rejected", func(t *testing.T) {
		claims := validClaims()
		claims["nbf"] = time.Now().Add(time.Minute).Unix()
		token := mintToken(t, testAPISecret, claims)
		if _, err := VerifySessionToken(token, testAPIKey, testAPISecret); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("wrong audience rejected", func(t *testing.T) {
		claims := validClaims()
		claims["aud"] = "another-app"
		token := mintToken(t, testAPISecret, claims)
		if _, err := VerifySessionToken(token, testAPIKey, testAPISecret); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("alg none rejected", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
		payload, _ := json.Marshal(validClaims())
		token := header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
		if _, err := VerifySessionToken(token, testAPIKey, testAPISecret); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		for _, token := range []string{"", "a.b", "a.b.c.d", "not-a-token"} {
			if _, err := VerifySessionToken(token, testAPIKey, testAPISecret); err == nil {
				t.Errorf("token %q accepted", token)
			}
		}
	})
}
