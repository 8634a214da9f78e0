package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
)

// signOAuthQuery reproduces Shopify's redirect signing: every non-hmac
// parameter, sorted, joined with &, hex HMAC-SHA256 under the secret.
func signOAuthQuery(q url.Values, secret string) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k != "hmac" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + q.Get(k)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyOAuthQuery(t *testing.T) {
	q := url.Values{}
	q.Set("shop", "test.myshopify.com")
	q.Set("code", "grant123")
	q.Set("timestamp", "1700000000")
	q.Set("hmac", signOAuthQuery(q, testAPISecret))

	if !verifyOAuthQuery(q, testAPISecret) {
		t.Error("valid signature rejected")
	}

	q.Set("shop", "evil.myshopify.com")
	if verifyOAuthQuery(q, testAPISecret) {
		t.Error("tampered query accepted")
	}

	q.Del("hmac")
	if verifyOAuthQuery(q, testAPISecret) {
		t.Error("missing hmac accepted")
	}
}

func TestAuthBeginRedirectsToShopify(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth?shop=test.myshopify.com", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("status %d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://test.myshopify.com/admin/oauth/authorize") {
		t.Errorf("Location = %q", loc)
	}
}

func TestAuthBeginRejectsBadShop(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth?shop=not_a_domain", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestAuthCallbackRejectsBadSignature(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback?shop=test.myshopify.com&code=abc&hmac=deadbeef", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rr.Code)
	}
}
