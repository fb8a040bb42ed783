package config

type GeneralConfig struct {
	BindAddress      string `yaml:"bindAddress"`
	Port             int    `yaml:"port"`
	LogDirectory     string `yaml:"logDirectory"`
	LogColors        bool   `yaml:"logColors"`
	JsonLogs         bool   `yaml:"jsonLogs"`
	LogLevel         string `yaml:"logLevel"`
	TrustAnyForward  bool   `yaml:"trustAnyForwardedAddress"`
	UseForwardedHost bool   `yaml:"useForwardedHost"`
}

type GatewaysConfig struct {
	// Trusted gateways are only used for ground truth: name resolution and
	// digest/signature lookups. They never serve bulk content.
	Trusted []string `yaml:"trusted,flow"`

	// Routing gateways are the untrusted pool eligible to serve content.
	Routing []string `yaml:"routing,flow"`

	// Preferred, when set, is the only gateway probed for content. An explicit
	// user choice is honored without silent fallback.
	Preferred string `yaml:"preferred"`
}

type VerificationConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Strict              bool   `yaml:"strict"`
	Method              string `yaml:"method"` // "hash" or "signature"
	Concurrency         int    `yaml:"concurrency"`
	ProbeTimeoutSeconds int    `yaml:"probeTimeoutSeconds"`
	FetchTimeoutSeconds int    `yaml:"fetchTimeoutSeconds"`
	StateMaxAgeMinutes  int    `yaml:"stateMaxAgeMinutes"`
}

type CacheConfig struct {
	MaxSizeBytes int64 `yaml:"maxSizeBytes"`
}

type HealthConfig struct {
	BlacklistMinutes int `yaml:"blacklistMinutes"`
	BackoffAt        int `yaml:"backoffAt"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	BurstCount        int     `yaml:"burstCount"`
}

type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bindAddress"`
	Port        int    `yaml:"port"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

type VerifierConfig struct {
	General      GeneralConfig      `yaml:"repo"`
	Gateways     GatewaysConfig     `yaml:"gateways"`
	Verification VerificationConfig `yaml:"verification"`
	Cache        CacheConfig        `yaml:"cache"`
	Health       HealthConfig       `yaml:"health"`
	RateLimit    RateLimitConfig    `yaml:"rateLimit"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Sentry       SentryConfig       `yaml:"sentry"`
}
