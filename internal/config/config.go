package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Registry  RegistryConfig
	Proxy     ProxyConfig
	RateLimit RateLimitConfig
	Providers ProvidersConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	Env     string
	Version string
}

// StorageConfig holds shared-store (Redis) configuration. Read and write
// endpoints may differ when fronted by a replica set.
type StorageConfig struct {
	RedisWriteURL string
	RedisReadURL  string
	Password      string
	MaxConns      int
}

// RegistryConfig holds the project registry client configuration.
type RegistryConfig struct {
	APIURL   string
	APIToken string
	CacheTTL time.Duration
}

// ProxyConfig holds the request pipeline configuration.
type ProxyConfig struct {
	MaxRetries       int
	UpstreamTimeout  time.Duration
	TestingProjectID string
}

// RateLimitConfig holds the token bucket parameters for the proxy route.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	RefillTokens   int
	IPWhitelist    []string
}

// AnalyticsConfig holds the event emitter configuration.
type AnalyticsConfig struct {
	BufferSize    int
	FlushInterval time.Duration
}

// ProvidersConfig holds per-adapter secrets and endpoint maps.
type ProvidersConfig struct {
	InfuraProjectID    string
	PoktAppID          string
	SyndicaToken       string
	ToncenterAPIKey    string
	TrongridAPIKey     string
	QuicknodeEndpoints map[string]string // CAIP-2 -> endpoint URL (token embedded)
}

// Load loads configuration from environment variables. All durations are
// given in seconds.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("RPC_PROXY_PORT", "3000"),
			Env:     getEnv("RPC_PROXY_ENV", "development"),
			Version: getEnv("RPC_PROXY_VERSION", "dev"),
		},
		Storage: StorageConfig{
			RedisWriteURL: getEnv("RPC_PROXY_STORAGE_REDIS_WRITE_URL", "redis://localhost:6379"),
			RedisReadURL:  getEnv("RPC_PROXY_STORAGE_REDIS_READ_URL", ""),
			Password:      getEnv("RPC_PROXY_STORAGE_REDIS_PASSWORD", ""),
			MaxConns:      getEnvAsInt("RPC_PROXY_STORAGE_REDIS_MAX_CONNS", 64),
		},
		Registry: RegistryConfig{
			APIURL:   getEnv("RPC_PROXY_REGISTRY_API_URL", "http://localhost:3001"),
			APIToken: getEnv("RPC_PROXY_REGISTRY_API_AUTH_TOKEN", ""),
			CacheTTL: getEnvAsSeconds("RPC_PROXY_REGISTRY_PROJECT_DATA_CACHE_TTL", 300*time.Second),
		},
		Proxy: ProxyConfig{
			MaxRetries:       getEnvAsInt("RPC_PROXY_MAX_RETRIES", 3),
			UpstreamTimeout:  getEnvAsSeconds("RPC_PROXY_PROVIDER_TIMEOUT", 5*time.Second),
			TestingProjectID: getEnv("RPC_PROXY_TESTING_PROJECT_ID", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RPC_PROXY_RATE_LIMIT_ENABLED", true),
			Capacity:       getEnvAsInt("RPC_PROXY_RATE_LIMIT_MAX_TOKENS", 100),
			RefillInterval: getEnvAsSeconds("RPC_PROXY_RATE_LIMIT_REFILL_INTERVAL", 1*time.Second),
			RefillTokens:   getEnvAsInt("RPC_PROXY_RATE_LIMIT_REFILL_TOKENS", 100),
			IPWhitelist:    getEnvAsSlice("RPC_PROXY_RATE_LIMIT_IP_WHITELIST", nil),
		},
		Analytics: AnalyticsConfig{
			BufferSize:    getEnvAsInt("RPC_PROXY_ANALYTICS_BUFFER_SIZE", 4096),
			FlushInterval: getEnvAsSeconds("RPC_PROXY_ANALYTICS_FLUSH_INTERVAL", 5*time.Second),
		},
		Providers: ProvidersConfig{
			InfuraProjectID:    getEnv("RPC_PROXY_INFURA_PROJECT_ID", ""),
			PoktAppID:          getEnv("RPC_PROXY_POKT_PROJECT_ID", ""),
			SyndicaToken:       getEnv("RPC_PROXY_SYNDICA_API_TOKEN", ""),
			ToncenterAPIKey:    getEnv("RPC_PROXY_TONCENTER_API_KEY", ""),
			TrongridAPIKey:     getEnv("RPC_PROXY_TRONGRID_API_KEY", ""),
			QuicknodeEndpoints: getEnvAsMap("RPC_PROXY_QUICKNODE_CHAIN_ENDPOINTS"),
		},
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Proxy.MaxRetries < 1 {
		return fmt.Errorf("RPC_PROXY_MAX_RETRIES must be >= 1, got %d", c.Proxy.MaxRetries)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Capacity < 1 || c.RateLimit.RefillTokens < 1 {
			return fmt.Errorf("rate limit bucket must hold at least one token")
		}
		if c.RateLimit.RefillInterval <= 0 {
			return fmt.Errorf("RPC_PROXY_RATE_LIMIT_REFILL_INTERVAL must be positive")
		}
	}
	if c.Registry.CacheTTL <= 0 {
		return fmt.Errorf("RPC_PROXY_REGISTRY_PROJECT_DATA_CACHE_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsSeconds parses a plain integer number of seconds.
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvAsMap parses "key1=val1,key2=val2" pairs. Values may contain '='
// (URLs with query strings), so only the first '=' splits.
func getEnvAsMap(key string) map[string]string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
