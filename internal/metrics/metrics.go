// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SettingsSaveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_settings_save_total",
			Help: "Cumulative number of pre-order setting records upserted.",
		})

	SettingsSaveErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_settings_save_errors_total",
			Help: "Cumulative number of failed pre-order save requests.",
		})

	SettingsDeleteTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_settings_delete_total",
			Help: "Cumulative number of pre-order setting records deleted.",
		})

	PublicReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_public_read_total",
			Help: "Cumulative number of public settings reads served.",
		})

	ReadCacheHitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_read_cache_hit_total",
			Help: "Cumulative number of public reads served from cache.",
		})

	ReadCacheMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_read_cache_miss_total",
			Help: "Cumulative number of public reads that hit the database.",
		})

	ScriptServeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_script_serve_total",
			Help: "Cumulative number of storefront script downloads.",
		})

	WebhookTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preorder_webhook_total",
			Help: "Cumulative number of verified webhooks received, by topic.",
		},
		[]string{"topic"})

	WebhookErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preorder_webhook_errors_total",
			Help: "Cumulative number of rejected or failed webhook deliveries.",
		})
)

func init() {
	prometheus.MustRegister(
		SettingsSaveTotal,
		SettingsSaveErrorsTotal,
		SettingsDeleteTotal,
		PublicReadTotal,
		ReadCacheHitTotal,
		ReadCacheMissTotal,
		ScriptServeTotal,
		WebhookTotal,
		WebhookErrorsTotal,
	)
}
