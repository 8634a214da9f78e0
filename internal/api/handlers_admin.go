// internal/api/handlers_admin.go
//
// Session-gated admin handlers: merchant preferences and the dashboard
// aggregate.  The dashboard degrades per section when the Admin API is
// unreachable rather than failing the whole response.

package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/preorder/internal/shop"
	"github.com/yanizio/preorder/internal/shopify"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	shopDomain, err := SessionShop(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	prefs, err := s.shops.Preferences(r.Context(), shopDomain)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	shopDomain, err := SessionShop(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req struct {
		DefaultTag  string `json:"defaultTag"`
		AutoPublish bool   `json:"autoPublish"`
	}
	if err := readJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	prefs, err := s.shops.SavePreferences(r.Context(), shopDomain, strings.TrimSpace(req.DefaultTag), req.AutoPublish)
	if err != nil {
		respondError(w, err)
		return
	}
	zap.S().Infow("preferences saved", "shop", shopDomain)
	writeJSON(w, http.StatusOK, prefs)
}

// dashboardResponse aggregates shop info, recent products, and the
// shop's configured settings count for the admin landing page.
type dashboardResponse struct {
	Shop          *shopify.Shop     `json:"shop"`
	Products      []shopify.Product `json:"products"`
	SettingsCount int               `json:"settingsCount"`
	Warnings      []string          `json:"warnings,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain, err := SessionShop(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	inst, err := s.shops.Installation(ctx, shopDomain)
	if errors.Is(err, shop.ErrNotFound) {
		writeError(w, http.StatusNotFound, "shop is not installed")
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if inst.AccessToken == nil || *inst.AccessToken == "" {
		writeError(w, http.StatusConflict, "shop has no access token")
		return
	}

	client := shopify.NewClient(shopDomain, *inst.AccessToken, s.cfg.Shopify.APIVersion)

	// Each goroutine writes its own field; warnings are collected after
	// Wait so nothing shares state mid-flight.
	var resp dashboardResponse
	var shopWarn, productsWarn bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := client.ShopInfo(gctx)
		if err != nil {
			zap.S().Warnw("dashboard shop info unavailable", "shop", shopDomain, "error", err)
			shopWarn = true
			return nil
		}
		resp.Shop = info
		return nil
	})
	g.Go(func() error {
		products, err := client.RecentProducts(gctx, 10)
		if err != nil {
			zap.S().Warnw("dashboard products unavailable", "shop", shopDomain, "error", err)
			productsWarn = true
			return nil
		}
		resp.Products = products
		return nil
	})
	g.Go(func() error {
		records, err := s.settings.List(gctx, shopDomain)
		if err != nil {
			return err
		}
		resp.SettingsCount = len(records)
		return nil
	})
	if err := g.Wait(); err != nil {
		respondError(w, err)
		return
	}
	if shopWarn {
		resp.Warnings = append(resp.Warnings, "shop info unavailable")
	}
	if productsWarn {
		resp.Warnings = append(resp.Warnings, "recent products unavailable")
	}

	writeJSON(w, http.StatusOK, resp)
}
