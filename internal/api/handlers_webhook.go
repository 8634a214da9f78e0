// internal/api/handlers_webhook.go
//
// Shopify webhook receiver.  Authenticity is the HMAC over the raw
// body; an invalid signature is a 401 before any decoding happens.
// Unknown topics are acknowledged so Shopify does not retry them.

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/preorder/internal/metrics"
	"github.com/yanizio/preorder/internal/shopify"
)

const maxWebhookBody = 1 << 20

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	headerHMAC := r.Header.Get("X-Shopify-Hmac-Sha256")
	if !shopify.VerifyWebhookHMAC(body, headerHMAC, s.cfg.Shopify.WebhookSecret) {
		metrics.WebhookErrorsTotal.Inc()
		writeError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	topic := r.Header.Get("X-Shopify-Topic")
	shopDomain := strings.ToLower(r.Header.Get("X-Shopify-Shop-Domain"))
	metrics.WebhookTotal.WithLabelValues(topic).Inc()
	zap.S().Infow("webhook received", "topic", topic, "shop", shopDomain)

	switch topic {
	case shopify.TopicAppUninstalled:
		if err := s.shops.DeactivateInstallation(r.Context(), shopDomain); err != nil {
			metrics.WebhookErrorsTotal.Inc()
			respondError(w, err)
			return
		}
		s.cache.Invalidate(shopDomain)

	case shopify.TopicProductsDelete:
		var payload struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.ID != 0 {
			// Settings for the deleted product stay in place but
			// become inert; the storefront never matches them again.
			zap.S().Infow("product deleted", "shop", shopDomain, "product_id", payload.ID)
		}

	case shopify.TopicShopRedact, shopify.TopicCustomersRedact:
		// Compliance topics are acknowledged; no customer data is
		// stored beyond the shop's own settings.

	default:
		zap.S().Debugw("webhook topic ignored", "topic", topic)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
