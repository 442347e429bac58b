package config

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/initia-labs/lightnode/types"
)

var (
	Version    = "dev"
	CommitHash = "unknown"

	// Singleton instance
	configInstance *Config
	configOnce     sync.Once
)

// Default configuration constants
const (
	// Port settings
	DefaultAPIPort     = "7000"
	DefaultMetricsPort = "9090"
	MinPortNumber      = 1
	MaxPortNumber      = 65535

	// Scraper settings
	DefaultPollingInterval = 3 * time.Second

	// Maintenance settings
	DefaultBlockConfidenceThreshold = 92.0 / 100
	DefaultReplicationFactor        = 5
	DefaultQueryTimeout             = 10 // seconds
	DefaultPruningInterval          = 180
	DefaultTelemetryFlushInterval   = 360

	// Metrics settings
	DefaultMetricsPath    = "/metrics"
	DefaultMetricsPushJob = "lightnode"

	// Default environment
	DefaultEnvironment = "local"
)

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
	Port    string `json:"port"`
	PushUrl string `json:"push_url"` // empty disables pushgateway flushing
	PushJob string `json:"push_job"`
}

// SentryConfig contains configuration for Sentry integration
type SentryConfig struct {
	DSN         string  `json:"dsn"`
	SampleRate  float64 `json:"sample_rate"`
	Environment string  `json:"environment"`
}

func SetBuildInfo(v, commit string) {
	Version = v
	CommitHash = commit
}

type Config struct {
	listenPort        string
	logLevel          string
	logFormat         string
	chainConfig       *ChainConfig
	p2pConfig         *P2PConfig
	maintenanceConfig *MaintenanceConfig
	metricsConfig     *MetricsConfig
	sentryConfig      *SentryConfig
}

func setDefaults() {
	viper.SetDefault("PORT", DefaultAPIPort)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("POLLING_INTERVAL", DefaultPollingInterval)
	viper.SetDefault("MAX_SCRAPE_ERR_COUNT", types.MaxScrapeErrCount)

	viper.SetDefault("BLOCK_CONFIDENCE_THRESHOLD", DefaultBlockConfidenceThreshold)
	viper.SetDefault("REPLICATION_FACTOR", DefaultReplicationFactor)
	viper.SetDefault("QUERY_TIMEOUT", DefaultQueryTimeout)
	viper.SetDefault("PRUNING_INTERVAL", DefaultPruningInterval)
	viper.SetDefault("TELEMETRY_FLUSH_INTERVAL", DefaultTelemetryFlushInterval)
	viper.SetDefault("EVENT_CHANNEL_CAPACITY", types.DefaultEventChannelCapacity)

	viper.SetDefault("P2P_MAX_PEERS", types.DefaultMaxPeers)
	viper.SetDefault("P2P_MAX_RECORDS", types.DefaultMaxRecords)
	viper.SetDefault("P2P_PEER_TTL", types.DefaultPeerTTL)
	viper.SetDefault("P2P_RECORD_TTL", types.DefaultRecordTTL)
	viper.SetDefault("P2P_STORE_BACKEND", StoreBackendMemory)
	viper.SetDefault("P2P_STORE_PATH", "")
	viper.SetDefault("P2P_BOOTSTRAP_PEERS", "")

	viper.SetDefault("METRICS_ENABLED", false)
	viper.SetDefault("METRICS_PATH", DefaultMetricsPath)
	viper.SetDefault("METRICS_PORT", DefaultMetricsPort)
	viper.SetDefault("METRICS_PUSH_URL", "")
	viper.SetDefault("METRICS_PUSH_JOB", DefaultMetricsPushJob)
	viper.SetDefault("ENVIRONMENT", DefaultEnvironment)

	// Sentry defaults
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_SAMPLE_RATE", 1.0)

	//  RPC_URL has no default
}

func GetConfig() (*Config, error) {
	var err error

	configOnce.Do(func() {
		configInstance, err = loadConfig()
	})

	return configInstance, err
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// just log without panic, local testing purpose only
		fmt.Fprintln(os.Stderr, "No .env file found")
	}
	viper.AutomaticEnv()
	setDefaults()

	replicationFactor, err := getUint("REPLICATION_FACTOR", math.MaxUint16)
	if err != nil {
		return nil, err
	}
	queryTimeout, err := getUint("QUERY_TIMEOUT", math.MaxUint32)
	if err != nil {
		return nil, err
	}
	pruningInterval, err := getUint("PRUNING_INTERVAL", math.MaxUint32)
	if err != nil {
		return nil, err
	}
	telemetryFlushInterval, err := getUint("TELEMETRY_FLUSH_INTERVAL", math.MaxUint32)
	if err != nil {
		return nil, err
	}

	config := &Config{
		listenPort: viper.GetString("PORT"),
		logLevel:   viper.GetString("LOG_LEVEL"),
		logFormat:  viper.GetString("LOG_FORMAT"),
		chainConfig: &ChainConfig{
			RpcUrl:            viper.GetString("RPC_URL"),
			PollingInterval:   viper.GetDuration("POLLING_INTERVAL"),
			MaxScrapeErrCount: viper.GetInt("MAX_SCRAPE_ERR_COUNT"),
		},
		p2pConfig: &P2PConfig{
			MaxPeers:       viper.GetInt("P2P_MAX_PEERS"),
			MaxRecords:     viper.GetInt("P2P_MAX_RECORDS"),
			PeerTTL:        viper.GetDuration("P2P_PEER_TTL"),
			RecordTTL:      viper.GetDuration("P2P_RECORD_TTL"),
			StoreBackend:   strings.ToLower(viper.GetString("P2P_STORE_BACKEND")),
			StorePath:      viper.GetString("P2P_STORE_PATH"),
			BootstrapPeers: splitList(viper.GetString("P2P_BOOTSTRAP_PEERS")),
		},
		maintenanceConfig: &MaintenanceConfig{
			BlockConfidenceThreshold: viper.GetFloat64("BLOCK_CONFIDENCE_THRESHOLD"),
			ReplicationFactor:        uint16(replicationFactor),
			QueryTimeout:             uint32(queryTimeout),
			PruningInterval:          uint32(pruningInterval),
			TelemetryFlushInterval:   uint32(telemetryFlushInterval),
			EventChannelCapacity:     viper.GetInt("EVENT_CHANNEL_CAPACITY"),
		},
		metricsConfig: &MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
			Port:    viper.GetString("METRICS_PORT"),
			PushUrl: viper.GetString("METRICS_PUSH_URL"),
			PushJob: viper.GetString("METRICS_PUSH_JOB"),
		},
		sentryConfig: &SentryConfig{
			DSN:         viper.GetString("SENTRY_DSN"),
			SampleRate:  viper.GetFloat64("SENTRY_SAMPLE_RATE"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// getUint reads an unsigned setting, rejecting values above limit.
func getUint(key string, limit uint64) (uint64, error) {
	value := viper.GetInt64(key)
	if value < 0 || uint64(value) > limit {
		return 0, types.NewInvalidValueError(key, strconv.FormatInt(value, 10), fmt.Sprintf("must be between 0 and %d", limit))
	}
	return uint64(value), nil
}

// splitList parses a comma separated env value, dropping empty entries.
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c Config) GetListenPort() string {
	return c.listenPort
}

func (c Config) GetChainConfig() *ChainConfig {
	return c.chainConfig
}

// SetChainConfig assigns the chain config for testing purposes.
func (c *Config) SetChainConfig(chainCfg *ChainConfig) {
	c.chainConfig = chainCfg
}

func (c Config) GetP2PConfig() *P2PConfig {
	return c.p2pConfig
}

// SetP2PConfig assigns the p2p config for testing purposes.
func (c *Config) SetP2PConfig(p2pCfg *P2PConfig) {
	c.p2pConfig = p2pCfg
}

func (c Config) GetMaintenanceConfig() *MaintenanceConfig {
	return c.maintenanceConfig
}

// SetMaintenanceConfig assigns the maintenance config for testing purposes.
func (c *Config) SetMaintenanceConfig(maintenanceCfg *MaintenanceConfig) {
	c.maintenanceConfig = maintenanceCfg
}

// GetStaticConfigParams returns the immutable parameters handed to the
// maintenance loop. Pruning is disabled when the record store expires
// records itself.
func (c Config) GetStaticConfigParams() types.StaticConfigParams {
	return c.maintenanceConfig.params(!c.p2pConfig.SelfExpiringStore())
}

func (c Config) GetEventChannelCapacity() int {
	return c.maintenanceConfig.EventChannelCapacity
}

func (c Config) GetPollingInterval() time.Duration {
	return c.chainConfig.PollingInterval
}

func (c Config) GetMetricsConfig() *MetricsConfig {
	return c.metricsConfig
}

func (c Config) GetSentryConfig() *SentryConfig {
	if c.sentryConfig == nil || c.sentryConfig.DSN == "" {
		return nil
	}
	return c.sentryConfig
}

func (c Config) GetLogLevel() slog.Level {
	switch c.logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) GetLogFormat() string {
	if c.logFormat == "json" {
		return "json"
	}
	return "plain"
}

func (c Config) Validate() error {
	if err := c.validatePort(); err != nil {
		return err
	}
	if err := c.validateLogSettings(); err != nil {
		return err
	}
	if err := c.validateMetricsConfig(); err != nil {
		return err
	}
	if err := c.validateSubConfigs(); err != nil {
		return err
	}
	return nil
}

// validatePort validates the listen port configuration
func (c Config) validatePort() error {
	if len(c.listenPort) == 0 {
		return types.NewValidationError("PORT", "required field is missing")
	}
	if port, err := strconv.Atoi(c.listenPort); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	return nil
}

// validateLogSettings validates log format and level configuration
func (c Config) validateLogSettings() error {
	switch c.logFormat {
	case "json", "plain":
		break
	default:
		return types.NewValidationError("LOG_FORMAT", fmt.Sprintf("invalid value '%s', must be 'json' or 'plain'", c.logFormat))
	}

	switch c.logLevel {
	case "debug", "info", "warn", "error":
		break
	default:
		return types.NewValidationError("LOG_LEVEL", fmt.Sprintf("invalid value '%s', must be one of: debug, info, warn, error", c.logLevel))
	}
	return nil
}

// validateMetricsConfig validates metrics configuration
func (c Config) validateMetricsConfig() error {
	if c.metricsConfig == nil {
		return nil
	}
	if c.metricsConfig.Enabled {
		if err := c.validateMetricsPort(); err != nil {
			return err
		}
		if err := c.validateMetricsPath(); err != nil {
			return err
		}
	}
	if c.metricsConfig.PushUrl != "" {
		if u, err := url.Parse(c.metricsConfig.PushUrl); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return types.NewInvalidValueError("METRICS_PUSH_URL", c.metricsConfig.PushUrl, "must be an http or https URL")
		}
		if c.metricsConfig.PushJob == "" {
			return types.NewValidationError("METRICS_PUSH_JOB", "is required when METRICS_PUSH_URL is set")
		}
	}
	return nil
}

// validateMetricsPort validates the metrics port configuration
func (c Config) validateMetricsPort() error {
	if port, err := strconv.Atoi(c.metricsConfig.Port); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("METRICS_PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	if c.metricsConfig.Port == c.listenPort {
		return types.NewValidationError("METRICS_PORT", fmt.Sprintf("metrics port %s conflicts with API port", c.metricsConfig.Port))
	}
	return nil
}

// validateMetricsPath validates the metrics path configuration
func (c Config) validateMetricsPath() error {
	if c.metricsConfig.Path == "" || c.metricsConfig.Path[0] != '/' {
		return types.NewValidationError("METRICS_PATH", "must start with '/'")
	}
	return nil
}

// validateSubConfigs validates nested configuration objects
func (c Config) validateSubConfigs() error {
	if err := c.chainConfig.Validate(); err != nil {
		return err
	}
	if err := c.p2pConfig.Validate(); err != nil {
		return err
	}
	if err := c.maintenanceConfig.Validate(); err != nil {
		return err
	}
	return nil
}
