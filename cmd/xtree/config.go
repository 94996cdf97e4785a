package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/observability"
)

const (
	envPrefix = "XTREE"

	keyConfig          = "config"
	keyPolicy          = "policy"
	keyDesc            = "desc"
	keyPrompt          = "prompt"
	keyLogLevel        = "log-level"
	keyLogEncoder      = "log-encoder"
	keyMetrics         = "metrics"
	keyMetricsAddr     = "metrics-addr"
	keyMetricsInterval = "metrics-interval"
)

type appConfig struct {
	CfgFile         string
	Policy          string
	Desc            bool
	Prompt          string
	LogLevel        string
	LogEncoder      string
	Metrics         string
	MetricsAddr     string
	MetricsInterval time.Duration
}

func (cfg *appConfig) addConfigurationFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&cfg.CfgFile, keyConfig, "", "config file (yaml, json or toml), the flags and XTREE_* env override it")
	flags.StringVar(&cfg.Policy, keyPolicy, "rb", "balancing policy, avl or rb")
	flags.BoolVar(&cfg.Desc, keyDesc, false, "order the keys from the greatest to the least")
	flags.StringVar(&cfg.Prompt, keyPrompt, "", "prompt printed before reading each command")
	flags.StringVar(&cfg.LogLevel, keyLogLevel, "INFO", "log level, DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&cfg.LogEncoder, keyLogEncoder, "json", "log encoder, json or text")
	flags.StringVar(&cfg.Metrics, keyMetrics, observability.MetricsNone, "metrics exporter, none, console or prometheus")
	flags.StringVar(&cfg.MetricsAddr, keyMetricsAddr, "127.0.0.1:9464", "listen address of the prometheus /metrics endpoint")
	flags.DurationVar(&cfg.MetricsInterval, keyMetricsInterval, 10*time.Second, "export interval of the console metrics")
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig(cmd *cobra.Command, cfg *appConfig) error {
	v := viper.New()
	if cfg.CfgFile != "" {
		v.SetConfigFile(cfg.CfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", cfg.CfgFile, err)
		}
	}

	// A flag like --log-level binds to XTREE_LOG_LEVEL.
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return bindFlags(cmd, v)
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyConfig {
			return
		}

		// Environment variables can't have dashes in them, so bind them to their equivalent
		// keys with underscores, e.g. --log-level to XTREE_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				bindFlagErr = multierr.Append(bindFlagErr, fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = multierr.Append(bindFlagErr, fmt.Errorf("setting flag %q value: %w", f.Name, err))
				return
			}
		}
	})
	return bindFlagErr
}

var errUnknownLogEncoder = errors.New("unknown log encoder")
