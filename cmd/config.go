package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConcurrency  = 1
	defaultRateLimit    = 0
	defaultMaxRedirects = 10
	defaultFormat       = string(FormatJSON)
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Defaults DefaultValues
	Probe    ProbeRuntimeConfig
}

// DefaultValues represent operator-level defaults, typically derived from env/config.
type DefaultValues struct {
	TimeoutSecs  int
	Concurrency  int
	RateLimit    int
	MaxRedirects int
	Format       string
}

// ProbeRuntimeConfig consolidates flag-driven settings for probe commands.
type ProbeRuntimeConfig struct {
	Target          string
	Targets         []string
	InputFile       string
	TimeoutSecs     int // 0 keeps each probe's own default
	Concurrency     int
	RateLimit       int
	MaxRedirects    int
	Insecure        bool
	ProgressEnabled bool
	OutputPath      string
	Format          string
}

type defaultOverrides struct {
	TimeoutSecs  *int
	Concurrency  *int
	RateLimit    *int
	MaxRedirects *int
	Format       string
	Progress     *bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Defaults: DefaultValues{
			Concurrency:  defaultConcurrency,
			RateLimit:    defaultRateLimit,
			MaxRedirects: defaultMaxRedirects,
			Format:       defaultFormat,
		},
		Probe: ProbeRuntimeConfig{
			Targets:      []string{},
			Concurrency:  defaultConcurrency,
			RateLimit:    defaultRateLimit,
			MaxRedirects: defaultMaxRedirects,
			Format:       defaultFormat,
		},
	}
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("defaults.timeout_secs") {
		val := viper.GetInt("defaults.timeout_secs")
		overrides.TimeoutSecs = &val
	}

	if viper.IsSet("defaults.concurrency") {
		val := viper.GetInt("defaults.concurrency")
		overrides.Concurrency = &val
	}

	if viper.IsSet("defaults.rate") {
		val := viper.GetInt("defaults.rate")
		overrides.RateLimit = &val
	}

	if viper.IsSet("defaults.max_redirects") {
		val := viper.GetInt("defaults.max_redirects")
		overrides.MaxRedirects = &val
	}

	if viper.IsSet("defaults.format") {
		overrides.Format = viper.GetString("defaults.format")
	}

	if viper.IsSet("defaults.progress") {
		val := viper.GetBool("defaults.progress")
		overrides.Progress = &val
	}

	return overrides
}

// applyConfigDefaults merges config file defaults into the runtime config when the user
// did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadDefaultOverrides()
	flags := cmd.Flags()

	if overrides.TimeoutSecs != nil {
		applyIntDefault(flags, "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.Defaults.TimeoutSecs = v
			cliConfig.Probe.TimeoutSecs = v
		})
	}

	if overrides.Concurrency != nil {
		applyIntDefault(flags, "concurrency", *overrides.Concurrency, func(v int) {
			cliConfig.Defaults.Concurrency = v
			cliConfig.Probe.Concurrency = v
		})
	}

	if overrides.RateLimit != nil {
		applyIntDefault(flags, "rate", *overrides.RateLimit, func(v int) {
			cliConfig.Defaults.RateLimit = v
			cliConfig.Probe.RateLimit = v
		})
	}

	if overrides.MaxRedirects != nil {
		applyIntDefault(flags, "max-redirects", *overrides.MaxRedirects, func(v int) {
			cliConfig.Defaults.MaxRedirects = v
			cliConfig.Probe.MaxRedirects = v
		})
	}

	if overrides.Format != "" {
		if format, err := ParseOutputFormat(overrides.Format); err == nil {
			cliConfig.Defaults.Format = string(format)
			setStringFlagIfUnset(flags, "format", string(format))
		}
	}

	if overrides.Progress != nil {
		applyBoolDefault(flags, "progress", *overrides.Progress, func(v bool) {
			cliConfig.Probe.ProgressEnabled = v
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
