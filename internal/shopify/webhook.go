// internal/shopify/webhook.go
//
// Webhook authenticity.  Shopify signs webhook bodies with HMAC-SHA256
// over the raw payload, base64 encoded, delivered in the
// X-Shopify-Hmac-Sha256 header.  Verification must run against the raw
// bytes before any JSON decoding.
package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook topics this app subscribes to.
const (
	TopicAppUninstalled  = "app/uninstalled"
	TopicProductsDelete  = "products/delete"
	TopicShopRedact      = "shop/redact"
	TopicCustomersRedact = "customers/redact"
)

// VerifyWebhookHMAC reports whether headerHMAC is a valid signature for
// body under secret.  Comparison is constant time.
func VerifyWebhookHMAC(body []byte, headerHMAC, secret string) bool {
	if headerHMAC == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(headerHMAC))
}
