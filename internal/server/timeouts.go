// internal/server/timeouts.go
//
// HTTP server construction with timeouts sized for this service's
// traffic mix.
//
// The surface splits into two profiles:
//
//   • storefront reads and webhook posts – small JSON bodies, answered
//     from cache or a single indexed query, done in milliseconds;
//   • the dashboard – fans out to the Shopify Admin API, whose client
//     allows up to 30 s per call, so the response deadline must sit
//     above that or slow upstreams surface as truncated responses.
//
//   • ReadHeaderTimeout – abort slow-loris headers early (5 s)
//   • ReadTimeout       – save payloads are capped at 1 MiB (10 s)
//   • WriteTimeout      – Shopify upstream budget plus slack (35 s)
//   • IdleTimeout       – storefront keep-alives between page loads (90 s)

package server

import (
	"net/http"
	"time"
)

// New constructs an *http.Server with the service's timeout profile.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       90 * time.Second,
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}
