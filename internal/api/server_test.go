package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/preorder/internal/config"
	"github.com/yanizio/preorder/internal/preorder"
	"github.com/yanizio/preorder/internal/shop"
)

const testWebhookSecret = "whsec_test"

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sdb := sqlx.NewDb(db, "mysql")
	settings := preorder.NewStore(sdb)
	shops := shop.NewStore(sdb)
	cache := preorder.NewCache(settings.List, time.Minute, 8)

	cfg := &config.Config{
		Shopify: config.Shopify{
			APIKey:        testAPIKey,
			APISecret:     testAPISecret,
			APIVersion:    "2025-07",
			WebhookSecret: testWebhookSecret,
			AppURL:        "https://preorder.example.com",
		},
		Cache: config.Cache{TTLSeconds: 60, MaxShops: 8},
	}
	return NewServer(cfg, settings, cache, shops).Router(), mock
}

func authHeader(t *testing.T) string {
	t.Helper()
	return "Bearer " + mintToken(t, testAPISecret, validClaims())
}

func settingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "shop_domain", "product_id", "variant_id", "enabled",
		"expected_date", "limit_quantity", "custom_text", "created_at", "updated_at",
	})
}

func TestSaveEndToEnd(t *testing.T) {
	handler, mock := newTestServer(t)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO pre_order_setting`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE\s+shop_domain = \? AND variant_id = \?`).
		WithArgs("test.myshopify.com", "10").
		WillReturnRows(settingRows().
			AddRow("a1", "test.myshopify.com", "1", "10", true, nil, 5, nil, now, now))

	body := `{"productId":"1","variantId":"10","enabled":true,"limitQuantity":"5","customText":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/preorder/save", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(t))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status  string `json:"status"`
		Records []struct {
			ID            string  `json:"id"`
			Enabled       bool    `json:"enabled"`
			LimitQuantity *int    `json:"limitQuantity"`
			CustomText    *string `json:"customText"`
		} `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || len(resp.Records) != 1 {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
	rec := resp.Records[0]
	if !rec.Enabled || rec.LimitQuantity == nil || *rec.LimitQuantity != 5 || rec.CustomText != nil {
		t.Errorf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSaveFormEncodedPayload(t *testing.T) {
	handler, mock := newTestServer(t)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO pre_order_setting`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE\s+shop_domain = \? AND variant_id = \?`).
		WillReturnRows(settingRows().
			AddRow("a1", "test.myshopify.com", "1", "10", true, nil, nil, nil, now, now))

	form := "payload=" + `[{"productId":"1","variantId":"10","enabled":"on"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/preorder/save", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", authHeader(t))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSaveValidationFailureIs400(t *testing.T) {
	handler, _ := newTestServer(t)

	body := `{"productId":"1","variantId":"10","limitQuantity":"-5"}`
	req := httptest.NewRequest(http.MethodPost, "/api/preorder/save", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(t))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Quantity limit must be positive") {
		t.Errorf("body: %s", rr.Body.String())
	}
}

func TestSaveRequiresSession(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/preorder/save", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestPublicReadFiltersDisabled(t *testing.T) {
	handler, mock := newTestServer(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+pre_order_setting\s+WHERE\s+shop_domain = \?`).
		WithArgs("test.myshopify.com").
		WillReturnRows(settingRows().
			AddRow("a1", "test.myshopify.com", "1", "10", true, nil, nil, nil, now, now).
			AddRow("a2", "test.myshopify.com", "1", "11", false, nil, nil, nil, now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/preorder/test.myshopify.com", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", cc)
	}

	var resp struct {
		ShopDomain string `json:"shopDomain"`
		Records    []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ShopDomain != "test.myshopify.com" {
		t.Errorf("shopDomain = %q", resp.ShopDomain)
	}
	if len(resp.Records) != 1 || resp.Records[0].ID != "a1" {
		t.Errorf("unexpected records: %s", rr.Body.String())
	}
}

func TestPublicReadRejectsNonDomainIdentifier(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/preorder/not_a_domain", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestDeleteRespondsDeletedWithID(t *testing.T) {
	handler, mock := newTestServer(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE\s+id = \? AND shop_domain = \?`).
		WithArgs("a1", "test.myshopify.com").
		WillReturnRows(settingRows().
			AddRow("a1", "test.myshopify.com", "1", "10", true, nil, nil, nil, now, now))
	mock.ExpectExec(`DELETE FROM pre_order_setting`).
		WithArgs("a1", "test.myshopify.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/preorder/a1", nil)
	req.Header.Set("Authorization", authHeader(t))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "deleted" || resp.ID != "a1" {
		t.Errorf("unexpected envelope: %s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteOtherShopRecordIs404(t *testing.T) {
	handler, mock := newTestServer(t)

	// The lookup is scoped to the session's shop, so another shop's id
	// never matches and nothing is deleted.
	mock.ExpectQuery(`WHERE\s+id = \? AND shop_domain = \?`).
		WithArgs("b1", "test.myshopify.com").
		WillReturnRows(settingRows())

	req := httptest.NewRequest(http.MethodDelete, "/api/preorder/b1", nil)
	req.Header.Set("Authorization", authHeader(t))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/preorder/save", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestStorefrontScriptHeaders(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/storefront-script.js", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if !strings.Contains(rr.Body.String(), "Pre-Order Now") {
		t.Error("script body missing the default label")
	}
	if !strings.Contains(rr.Body.String(), "FORM_POLL_MAX_ATTEMPTS = 300") {
		t.Error("script body missing the named form-poll bound")
	}
	if strings.Contains(rr.Body.String(), "attempts < 300") {
		t.Error("form-poll bound should reference the named constant")
	}
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookAppUninstalled(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectExec(`UPDATE shop_installation SET is_active = FALSE`).
		WithArgs("test.myshopify.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := []byte(`{"id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(string(body)))
	req.Header.Set("X-Shopify-Hmac-Sha256", signWebhook(body))
	req.Header.Set("X-Shopify-Topic", "app/uninstalled")
	req.Header.Set("X-Shopify-Shop-Domain", "test.myshopify.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWebhookBadSignatureIs401(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(`{"id":1}`))
	req.Header.Set("X-Shopify-Hmac-Sha256", "bogus")
	req.Header.Set("X-Shopify-Topic", "app/uninstalled")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestCartValidateOverLimit(t *testing.T) {
	handler, mock := newTestServer(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+pre_order_setting\s+WHERE\s+shop_domain = \?`).
		WithArgs("test.myshopify.com").
		WillReturnRows(settingRows().
			AddRow("a1", "test.myshopify.com", "1", "10", true, nil, 2, nil, now, now))

	body := `{"shopDomain":"test.myshopify.com","lines":[{"merchandiseId":"10","quantity":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var resp preorder.CartValidation
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Allowed || len(resp.Messages) != 1 {
		t.Errorf("unexpected verdict: %+v", resp)
	}
}
