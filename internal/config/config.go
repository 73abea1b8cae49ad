// Package config loads the process bootstrap configuration: the single
// instrument symbol this process serves, the listen address for the
// OrderDispatcher/StatStream server, and the addresses of the external
// collaborators (broker, schema registry). None of these are consumed by
// the core (spec §1, §6); they only wire up cmd/gemmy.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full set of process bootstrap settings.
type Config struct {
	Symbol               string `mapstructure:"symbol"`
	ListenAddress        string `mapstructure:"listen_address"`
	BrokerAddress        string `mapstructure:"broker_address"`
	SchemaRegistryAddr   string `mapstructure:"schema_registry_address"`
	KafkaTopic           string `mapstructure:"kafka_topic"`
	StreamIntervalMillis int    `mapstructure:"stream_interval_millis"`
	WorkerPoolSize       int    `mapstructure:"worker_pool_size"`
}

func defaults() Config {
	return Config{
		Symbol:               "GEMMY",
		ListenAddress:        "0.0.0.0:9001",
		BrokerAddress:        "",
		SchemaRegistryAddr:   "",
		KafkaTopic:           "gemmy.executions",
		StreamIntervalMillis: 1000,
		WorkerPoolSize:       10,
	}
}

// Load reads configuration from an optional file at path (if non-empty),
// environment variables prefixed GEMMY_ (e.g. GEMMY_LISTEN_ADDRESS), and
// falls back to sensible defaults for a single local instrument.
func Load(path string) (Config, error) {
	v := viper.New()
	d := defaults()
	v.SetDefault("symbol", d.Symbol)
	v.SetDefault("listen_address", d.ListenAddress)
	v.SetDefault("broker_address", d.BrokerAddress)
	v.SetDefault("schema_registry_address", d.SchemaRegistryAddr)
	v.SetDefault("kafka_topic", d.KafkaTopic)
	v.SetDefault("stream_interval_millis", d.StreamIntervalMillis)
	v.SetDefault("worker_pool_size", d.WorkerPoolSize)

	v.SetEnvPrefix("GEMMY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// HasBroker reports whether a broker address was configured, i.e.
// whether cmd/gemmy should wire a KafkaPublisher instead of the
// log-only fallback.
func (c Config) HasBroker() bool { return c.BrokerAddress != "" }
