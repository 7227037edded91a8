package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envDefaults = map[string]string{
	"OPENROUTER_API_KEY": "",

	"LISTEN_ADDR": ":3000",

	"UPSTREAM_BASE_URL": "https://openrouter.ai/api/v1",
	"UPSTREAM_MODEL":    "gpt-4o-mini",
	"UPSTREAM_REFERER":  "http://localhost:3000/",
	"UPSTREAM_TITLE":    "NameofAI_BOT",

	"CORS_ALLOW_ORIGINS": "*",
	"TRUSTED_PROXIES":    "10.0.0.0/8",

	"LOG_FILE":        "",
	"TRACING_ENABLED": "false",
}

// Flags that may override an environment variable
var flagKeys = map[string]string{
	"listen":         "LISTEN_ADDR",
	"baseUrl":        "UPSTREAM_BASE_URL",
	"model":          "UPSTREAM_MODEL",
	"referer":        "UPSTREAM_REFERER",
	"title":          "UPSTREAM_TITLE",
	"corsOrigins":    "CORS_ALLOW_ORIGINS",
	"trustedProxies": "TRUSTED_PROXIES",
	"logFile":        "LOG_FILE",
	"tracing":        "TRACING_ENABLED",
}

type Config struct {
	APIKey     string
	ListenAddr string

	BaseURL string
	Model   string
	Referer string
	Title   string

	AllowOrigins   []string
	TrustedProxies []string

	LogFile        string
	TracingEnabled bool
}

// RegisterFlags adds the override flags to flags
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("listen", "", "Address to listen on")
	flags.String("baseUrl", "", "Base URL of the upstream completion API")
	flags.String("model", "", "Upstream model name")
	flags.String("referer", "", "HTTP-Referer sent to the upstream")
	flags.String("title", "", "X-Title sent to the upstream")
	flags.String("corsOrigins", "", "Comma separated allowed CORS origins")
	flags.String("trustedProxies", "", "Comma separated trusted proxy CIDRs")
	flags.String("logFile", "", "Additionally write logs to this rotating file")
	flags.Bool("tracing", false, "Enable OpenTelemetry tracing")
}

// Load resolves the configuration from changed flags, then the environment, then defaults
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range envDefaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}

	config := &Config{
		APIKey:         v.GetString("OPENROUTER_API_KEY"),
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		BaseURL:        v.GetString("UPSTREAM_BASE_URL"),
		Model:          v.GetString("UPSTREAM_MODEL"),
		Referer:        v.GetString("UPSTREAM_REFERER"),
		Title:          v.GetString("UPSTREAM_TITLE"),
		AllowOrigins:   splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		LogFile:        v.GetString("LOG_FILE"),
	}

	var err error
	// GetBool would turn an invalid value into false
	config.TracingEnabled, err = cast.ToBoolE(v.Get("TRACING_ENABLED"))
	if err != nil {
		return nil, fmt.Errorf("error parsing TRACING_ENABLED: %w", err)
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL must not be empty")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("UPSTREAM_MODEL must not be empty")
	}

	return config, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
