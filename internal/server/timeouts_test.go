package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNewTimeoutProfile(t *testing.T) {
	srv := New(":8080", http.NotFoundHandler())

	if srv.Addr != ":8080" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 || srv.ReadTimeout == 0 || srv.IdleTimeout == 0 {
		t.Error("every timeout must be set")
	}
	// The dashboard proxies Admin GraphQL calls with a 30 s client
	// timeout; the response deadline has to outlast them.
	if srv.WriteTimeout <= 30*time.Second {
		t.Errorf("WriteTimeout %v must exceed the 30s upstream budget", srv.WriteTimeout)
	}
}
