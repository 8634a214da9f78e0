// internal/api/handlers_auth.go
//
// OAuth install flow.
//
// Context
// -------
// GET /auth kicks a shop into Shopify's authorize screen; GET
// /auth/callback verifies the signed query, exchanges the grant code for
// a permanent access token, records the installation, and registers the
// storefront script tag.  Query authenticity uses the hex-HMAC scheme
// (distinct from the base64 scheme webhooks use).

package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/preorder/internal/shopify"
)

const oauthScopes = "read_products,write_products,write_script_tags"

func (s *Server) handleAuthBegin(w http.ResponseWriter, r *http.Request) {
	shopDomain := strings.ToLower(r.URL.Query().Get("shop"))
	if !shopDomainPattern.MatchString(shopDomain) {
		writeError(w, http.StatusBadRequest, "invalid shop domain")
		return
	}

	authorize := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s",
		shopDomain,
		url.QueryEscape(s.cfg.Shopify.APIKey),
		url.QueryEscape(oauthScopes),
		url.QueryEscape(strings.TrimSuffix(s.cfg.Shopify.AppURL, "/")+"/auth/callback"),
	)
	http.Redirect(w, r, authorize, http.StatusFound)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !verifyOAuthQuery(query, s.cfg.Shopify.APISecret) {
		writeError(w, http.StatusUnauthorized, "invalid oauth signature")
		return
	}

	shopDomain := strings.ToLower(query.Get("shop"))
	code := query.Get("code")
	if !shopDomainPattern.MatchString(shopDomain) || code == "" {
		writeError(w, http.StatusBadRequest, "missing shop or code")
		return
	}

	token, err := s.exchangeAccessToken(r, shopDomain, code)
	if err != nil {
		zap.S().Errorw("token exchange failed", "shop", shopDomain, "error", err)
		writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	if err := s.shops.UpsertInstallation(r.Context(), shopDomain, &token); err != nil {
		respondError(w, err)
		return
	}
	s.cache.Invalidate(shopDomain)

	// Script tag registration is best-effort; the merchant can reload
	// the admin to retry, and the app stays installed either way.
	client := shopify.NewClient(shopDomain, token, s.cfg.Shopify.APIVersion)
	scriptURL := strings.TrimSuffix(s.cfg.Shopify.AppURL, "/") + "/storefront-script.js"
	if _, err := client.EnsureScriptTag(r.Context(), scriptURL); err != nil {
		zap.S().Warnw("script tag registration failed", "shop", shopDomain, "error", err)
	}

	zap.S().Infow("shop installed", "shop", shopDomain)
	http.Redirect(w, r, fmt.Sprintf("https://%s/admin/apps/%s", shopDomain, s.cfg.Shopify.APIKey), http.StatusFound)
}

// verifyOAuthQuery checks the hex HMAC Shopify appends to OAuth
// redirects: every parameter except hmac, sorted, joined with &, signed
// with the app secret.
func verifyOAuthQuery(query url.Values, secret string) bool {
	provided := query.Get("hmac")
	if provided == "" || secret == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			msg.WriteByte('&')
		}
		msg.WriteString(k)
		msg.WriteByte('=')
		msg.WriteString(strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(msg.Bytes())
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}

func (s *Server) exchangeAccessToken(r *http.Request, shopDomain, code string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"client_id":     s.cfg.Shopify.APIKey,
		"client_secret": s.cfg.Shopify.APISecret,
		"code":          code,
	})

	url := fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return out.AccessToken, nil
}
