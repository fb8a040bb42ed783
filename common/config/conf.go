package config

func NewDefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		General: GeneralConfig{
			BindAddress:      "127.0.0.1",
			Port:             8580,
			LogDirectory:     "logs",
			LogColors:        false,
			JsonLogs:         false,
			LogLevel:         "info",
			TrustAnyForward:  false,
			UseForwardedHost: true,
		},
		Gateways: GatewaysConfig{
			Trusted: []string{
				"https://arweave.net",
				"https://permagate.io",
			},
			Routing: []string{
				"https://arweave.net",
				"https://permagate.io",
				"https://ar-io.dev",
			},
			Preferred: "",
		},
		Verification: VerificationConfig{
			Enabled:             true,
			Strict:              false,
			Method:              "hash",
			Concurrency:         10,
			ProbeTimeoutSeconds: 10,
			FetchTimeoutSeconds: 30,
			StateMaxAgeMinutes:  30,
		},
		Cache: CacheConfig{
			MaxSizeBytes: 104857600, // 100mb
		},
		Health: HealthConfig{
			BlacklistMinutes: 5,
			BackoffAt:        10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			BurstCount:        40,
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "localhost",
			Port:        9000,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Dsn:         "",
			Environment: "",
			Debug:       false,
		},
	}
}
