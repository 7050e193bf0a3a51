package config

type PortalConfig struct {
	// rpc configs
	Port int    `toml:"port" mapstructure:"port"`
	Host string `toml:"host" mapstructure:"host"`

	// CORS configs
	AllowedOrigins []string `toml:"allowed_origins" mapstructure:"allowed_origins"`

	// rate limiting configs
	RatePerMinute         int `toml:"rate_per_minute" mapstructure:"rate_per_minute"`
	MaxConcurrentRequests int `toml:"max_concurrent_requests" mapstructure:"max_concurrent_requests"`

	// OpenTelemetry configs
	ServiceName    string `toml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `toml:"service_version" mapstructure:"service_version"`
	Environment    string `toml:"environment" mapstructure:"environment"` // PROD, DEV, TEST, LOCAL
	EnableTracing  bool   `toml:"enable_tracing" mapstructure:"enable_tracing"`
	UseOTLPTraces  bool   `toml:"use_otlp_traces" mapstructure:"use_otlp_traces"`
	OTLPTracesURL  string `toml:"otlp_traces_url" mapstructure:"otlp_traces_url"`
	EnableMetrics  bool   `toml:"enable_metrics" mapstructure:"enable_metrics"`
	UsePrometheus  bool   `toml:"use_prometheus" mapstructure:"use_prometheus"`
	UseOTLPMetrics bool   `toml:"use_otlp_metrics" mapstructure:"use_otlp_metrics"`
	OTLPMetricsURL string `toml:"otlp_metrics_url" mapstructure:"otlp_metrics_url"`

	InsecureOTLP bool `toml:"insecure_otlp" mapstructure:"insecure_otlp"`

	// Development mode uses stdout exporters
	DevelopmentMode bool `toml:"development_mode" mapstructure:"development_mode"`

	// 1-Click solver config
	SolverURL       string `toml:"solver_url" mapstructure:"solver_url"`
	CatalogTTLHours int    `toml:"catalog_ttl_hours" mapstructure:"catalog_ttl_hours"`

	// balance source config
	NearRPCURL       string `toml:"near_rpc_url" mapstructure:"near_rpc_url"`
	DiscoveryURL     string `toml:"discovery_url" mapstructure:"discovery_url"`
	IndexerURL       string `toml:"indexer_url" mapstructure:"indexer_url"`
	PollIntervalSecs int    `toml:"poll_interval_secs" mapstructure:"poll_interval_secs"`

	// optional chain table overlay, generated by chainsgen
	ChainTablePath string `toml:"chain_table_path" mapstructure:"chain_table_path"`
}
