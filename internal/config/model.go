// internal/config/model.go
//
// Typed configuration model for the pre-order service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `PREORDER_`-prefixed environment overrides  – highest precedence.
//
// Any string value of the form `vault:mount/path#key` is resolved through
// the Vault client *before* unmarshalling, so the model never stores Vault
// URIs—only plain strings.  Validation happens immediately after unmarshal;
// the app fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the MySQL DSN.  The DSN template lives in YAML so
// operators can tweak host, port, or flags without touching Vault; the
// password is typically a `vault:` reference resolved at load time.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Shopify section
//

// Shopify holds the app credentials used to verify session tokens and
// webhook signatures, and to call the Admin GraphQL API.  APISecret is
// usually a `vault:` reference.
type Shopify struct {
	APIKey        string `koanf:"api_key"        validate:"required"`
	APISecret     string `koanf:"api_secret"     validate:"required"`
	APIVersion    string `koanf:"api_version"    validate:"required"`
	WebhookSecret string `koanf:"webhook_secret"`
	AppURL        string `koanf:"app_url"        validate:"required,url"`
}

//
// Cache section
//

// Cache tunes the in-process response cache for the public read endpoint.
type Cache struct {
	TTLSeconds int `koanf:"ttl_seconds" validate:"gte=0"`
	MaxShops   int `koanf:"max_shops"   validate:"gte=1"`
}

//
// GeoIP section
//

// GeoIP points at an optional GeoLite2-City database.  Empty path disables
// geolocation in the request-info middleware.
type GeoIP struct {
	Path string `koanf:"path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or PREORDER_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Shopify  Shopify  `koanf:"shopify"`
	Cache    Cache    `koanf:"cache"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"`
}
