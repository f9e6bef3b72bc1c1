// Package xaxd implements the reference address-translation decision
// daemon: it listens on a unix or TCP socket for wireformat requests from a
// NAT64 translator, asks a mapper for the decision and writes the
// correlated response back.
package xaxd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Debug            bool          `mapstructure:"debug"`
	ListenProto      string        `mapstructure:"listen_proto"`   // "unix" or "tcp"
	ListenAddr       string        `mapstructure:"listen_address"` // socket path or host:port
	ManagementSocket string        `mapstructure:"management_socket"`
	APIListenAddr    string        `mapstructure:"api_listen_address"` // empty disables the HTTP API
	LogDB            string        `mapstructure:"log_db"`
	Mode             string        `mapstructure:"mode"` // "prefix" or "pool"
	NAT64Prefix      string        `mapstructure:"nat64_prefix"`
	TranslatorIPv4   string        `mapstructure:"translator_ipv4"` // translator pair, both or neither
	TranslatorIPv6   string        `mapstructure:"translator_ipv6"`
	AllowPrivate     bool          `mapstructure:"allow_private"`
	PoolCIDR         string        `mapstructure:"pool_cidr"`
	PoolDB           string        `mapstructure:"pool_db"`
	LeaseDuration    time.Duration `mapstructure:"lease_duration"`
	ConfigFile       string        `mapstructure:"config_file"`
}

func DefaultConfig() *Config {
	return &Config{
		ListenProto:      "unix",
		ListenAddr:       "/tmp/xaxd.sock",
		ManagementSocket: "/run/xaxd/ctl.sock",
		APIListenAddr:    "",
		LogDB:            "xaxd-logs.db",
		Mode:             "prefix",
		NAT64Prefix:      "64:ff9b::/96",
		AllowPrivate:     true,
		PoolCIDR:         "192.168.64.0/24",
		PoolDB:           "xaxd-pool.db",
		LeaseDuration:    1 * time.Hour,
		ConfigFile:       "xaxd.yaml",
	}
}

// LoadConfig loads configuration from file and environment. configFile
// overrides the search path when nonempty; otherwise xaxd.yaml is looked up
// in the working directory, /etc/xaxd and $HOME/.xaxd. Environment
// variables use the XAXD_ prefix.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("xaxd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/xaxd/")
		viper.AddConfigPath("$HOME/.xaxd")
	}
	viper.SetEnvPrefix("XAXD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("read config %s: %w", configFile, err)
			}
			return nil, err
		}
		// No config file; defaults and environment apply.
	} else {
		cfg.ConfigFile = viper.ConfigFileUsed()
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	switch c.ListenProto {
	case "unix", "tcp":
	default:
		return fmt.Errorf("listen_proto must be \"unix\" or \"tcp\", got %q", c.ListenProto)
	}
	switch c.Mode {
	case "prefix", "pool":
	default:
		return fmt.Errorf("mode must be \"prefix\" or \"pool\", got %q", c.Mode)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_address must not be empty")
	}
	if (c.TranslatorIPv4 == "") != (c.TranslatorIPv6 == "") {
		return fmt.Errorf("translator_ipv4 and translator_ipv6 must be set together")
	}
	return nil
}
