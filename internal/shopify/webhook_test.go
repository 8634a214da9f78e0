package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookHMAC(t *testing.T) {
	body := []byte(`{"id":123,"domain":"test.myshopify.com"}`)
	secret := "shpss_test_secret"

	if !VerifyWebhookHMAC(body, sign(body, secret), secret) {
		t.Error("valid signature rejected")
	}
	if VerifyWebhookHMAC(body, sign(body, "other_secret"), secret) {
		t.Error("signature from wrong secret accepted")
	}
	if VerifyWebhookHMAC([]byte(`{"id":124}`), sign(body, secret), secret) {
		t.Error("signature over different body accepted")
	}
	if VerifyWebhookHMAC(body, "", secret) {
		t.Error("empty signature accepted")
	}
	if VerifyWebhookHMAC(body, sign(body, secret), "") {
		t.Error("empty secret accepted")
	}
	if VerifyWebhookHMAC(body, "not-base64!!", secret) {
		t.Error("garbage signature accepted")
	}
}
