// internal/api/storefront.go
//
// Storefront script delivery.  The script is embedded at build time and
// served with a short public cache so every product page shares one
// copy per CDN edge.

package api

import (
	_ "embed"
	"net/http"

	"github.com/yanizio/preorder/internal/metrics"
)

//go:embed storefront.js
var storefrontScript []byte

func (s *Server) handleStorefrontScript(w http.ResponseWriter, _ *http.Request) {
	metrics.ScriptServeTotal.Inc()
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(storefrontScript)
}
