// internal/api/handlers_preorder.go
//
// Pre-order setting handlers: the authenticated save and delete paths
// and the public storefront read path.

package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/preorder/internal/metrics"
	"github.com/yanizio/preorder/internal/preorder"
)

// maxSavePayload bounds the save request body.  A full batch for a
// large catalog stays well under this.
const maxSavePayload = 1 << 20

// handleSave normalizes and upserts a batch of settings for the
// session's shop.  The batch is atomic: any invalid record rejects the
// whole request.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	shopDomain, err := SessionShop(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	payload, err := savePayload(r)
	if err != nil {
		metrics.SettingsSaveErrorsTotal.Inc()
		respondError(w, err)
		return
	}

	raws, err := preorder.DecodePayload(payload)
	if err != nil {
		metrics.SettingsSaveErrorsTotal.Inc()
		respondError(w, err)
		return
	}

	records, err := preorder.Normalize(shopDomain, raws)
	if err != nil {
		metrics.SettingsSaveErrorsTotal.Inc()
		respondError(w, err)
		return
	}

	saved, err := s.settings.Save(r.Context(), records)
	if err != nil {
		metrics.SettingsSaveErrorsTotal.Inc()
		respondError(w, err)
		return
	}

	s.cache.Invalidate(shopDomain)
	metrics.SettingsSaveTotal.Add(float64(len(saved)))
	zap.S().Infow("settings saved", "shop", shopDomain, "count", len(saved))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": saved,
	})
}

// savePayload pulls the raw settings payload from either a JSON body or
// a form's "payload" field.
func savePayload(r *http.Request) ([]byte, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxSavePayload); err != nil {
			if err := r.ParseForm(); err != nil {
				return nil, &preorder.ValidationError{Message: "Invalid payload"}
			}
		}
		return []byte(r.FormValue("payload")), nil
	}
	return io.ReadAll(io.LimitReader(r.Body, maxSavePayload))
}

// handlePublicRead serves settings for a shop domain.  Disabled records
// are excluded unless includeDisabled=true; productId and variantId
// query parameters narrow the result.  Responses are cacheable so the
// storefront script can share a CDN-fresh copy.
func (s *Server) handlePublicRead(w http.ResponseWriter, r *http.Request) {
	identifier := strings.ToLower(chi.URLParam(r, "identifier"))
	if !shopDomainPattern.MatchString(identifier) {
		writeError(w, http.StatusBadRequest, "invalid shop domain")
		return
	}

	records, err := s.cache.Get(r.Context(), identifier)
	if err != nil {
		respondError(w, err)
		return
	}

	q := r.URL.Query()
	includeDisabled := q.Get("includeDisabled") == "true"
	filtered := preorder.Filter(records, q.Get("productId"), q.Get("variantId"), includeDisabled)

	metrics.PublicReadTotal.Inc()
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, map[string]any{
		"shopDomain": identifier,
		"records":    filtered,
	})
}

// handleDelete removes one setting by id.  The record must belong to
// the session's shop.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	shopDomain, err := SessionShop(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	// The delete is scoped to the session's shop, so another shop's
	// record id is indistinguishable from a missing one.
	id := chi.URLParam(r, "identifier")
	deleted, err := s.settings.Delete(r.Context(), shopDomain, id)
	if err != nil {
		respondError(w, err)
		return
	}

	s.cache.Invalidate(shopDomain)
	metrics.SettingsDeleteTotal.Inc()
	zap.S().Infow("setting deleted", "shop", shopDomain, "id", id)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "deleted",
		"id":     id,
		"record": deleted,
	})
}

// handleCartValidate checks cart lines against per-variant quantity
// limits.  Public: the storefront calls it before checkout.
func (s *Server) handleCartValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopDomain string              `json:"shopDomain"`
		Lines      []preorder.CartLine `json:"lines"`
	}
	if err := readJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	shopDomain := strings.ToLower(strings.TrimSpace(req.ShopDomain))
	if !shopDomainPattern.MatchString(shopDomain) {
		writeError(w, http.StatusBadRequest, "invalid shop domain")
		return
	}

	records, err := s.cache.Get(r.Context(), shopDomain)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preorder.ValidateCartLines(records, req.Lines))
}
